// package testing contains shared testing utilities
package testing

import (
	"context"
	"net/http"

	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/services"
)

// MockService is a configurable test double for [services.Service]. Every
// operation returns Result/Stream and Err as configured, recording the
// arguments it was called with.
type MockService struct {
	Result *services.Result
	Stream *services.StreamResult
	Err    error

	Calls []string
}

func (m *MockService) record(op string) {
	m.Calls = append(m.Calls, op)
}

func (m *MockService) Search(ctx context.Context, query string) (*services.Result, error) {
	m.record("search:" + query)
	return m.Result, m.Err
}

func (m *MockService) Video(ctx context.Context, id string) (*services.Result, error) {
	m.record("video:" + id)
	return m.Result, m.Err
}

func (m *MockService) Comments(ctx context.Context, id string) (*services.Result, error) {
	m.record("comments:" + id)
	return m.Result, m.Err
}

func (m *MockService) ChannelVideos(ctx context.Context, id string) (*services.Result, error) {
	m.record("channel:" + id)
	return m.Result, m.Err
}

func (m *MockService) Playlist(ctx context.Context, id string) (*services.Result, error) {
	m.record("playlist:" + id)
	return m.Result, m.Err
}

func (m *MockService) ResolveStream(ctx context.Context, id, quality string) (*services.StreamResult, error) {
	m.record("stream:" + id + ":" + quality)
	return m.Stream, m.Err
}

func (m *MockService) Name() string { return "mock" }

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
