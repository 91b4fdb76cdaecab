package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
)

func newTestAggregator(t *testing.T, opts AggregatorOpts) *Aggregator {
	t.Helper()
	opts.Logger = shared.NewLogger(io.Discard)
	if opts.AttemptTimeout == 0 {
		opts.AttemptTimeout = 2 * time.Second
	}
	if opts.GlobalDeadline == 0 {
		opts.GlobalDeadline = 5 * time.Second
	}
	if opts.PrimaryTimeout == 0 {
		opts.PrimaryTimeout = time.Second
	}
	return NewAggregator(opts)
}

func serveJSON(t *testing.T, body string, wantPath func(*testing.T, *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPath != nil {
			wantPath(t, r)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func hostOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url %q: %v", raw, err)
	}
	return u.Host
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	t.Run("Search", func(t *testing.T) {
		mirror := serveJSON(t, `[{"type":"video","title":"x"}]`, func(t *testing.T, r *http.Request) {
			if r.URL.Path != "/api/v1/search" {
				t.Errorf("expected path /api/v1/search, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("q"); got != "cat videos" {
				t.Errorf("expected query 'cat videos', got %q", got)
			}
			if got := r.URL.Query().Get("hl"); got != "ja" {
				t.Errorf("expected hl=ja, got %q", got)
			}
		})

		agg := newTestAggregator(t, AggregatorOpts{
			Pools: upstream.NewPools(map[upstream.Capability][]string{
				upstream.CapSearch: {mirror.URL},
			}),
		})

		res, err := agg.Search(ctx, "cat videos")
		if err != nil {
			t.Fatalf("expected search to succeed, got %v", err)
		}
		if res.Source != upstream.FamilyMirror {
			t.Errorf("expected mirror source, got %s", res.Source)
		}
		if string(res.Payload) != `[{"type":"video","title":"x"}]` {
			t.Errorf("unexpected payload: %s", res.Payload)
		}
	})

	t.Run("Search rejects empty query", func(t *testing.T) {
		agg := newTestAggregator(t, AggregatorOpts{})
		if _, err := agg.Search(ctx, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Video prefers dedicated primary", func(t *testing.T) {
		primary := serveJSON(t, `{"title":"native"}`, func(t *testing.T, r *http.Request) {
			if r.URL.Path != "/api/video2/abc123" {
				t.Errorf("expected primary path /api/video2/abc123, got %s", r.URL.Path)
			}
		})
		mirror := serveJSON(t, `{"title":"mirror"}`, nil)

		agg := newTestAggregator(t, AggregatorOpts{
			Pools: upstream.NewPools(map[upstream.Capability][]string{
				upstream.CapVideo: {mirror.URL},
			}),
			VideoPrimary: primary.URL + "/api/video2",
		})

		res, err := agg.Video(ctx, "abc123")
		if err != nil {
			t.Fatalf("expected video lookup to succeed, got %v", err)
		}
		if res.Source != upstream.FamilyDedicated {
			t.Errorf("expected dedicated source, got %s", res.Source)
		}
		if string(res.Payload) != `{"title":"native"}` {
			t.Errorf("unexpected payload: %s", res.Payload)
		}
	})

	t.Run("Video falls back to mirror when primary is down", func(t *testing.T) {
		dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		deadURL := dead.URL
		dead.Close()

		mirror := serveJSON(t, `{"title":"mirror"}`, func(t *testing.T, r *http.Request) {
			if r.URL.Path != "/api/v1/videos/abc123" {
				t.Errorf("expected mirror path /api/v1/videos/abc123, got %s", r.URL.Path)
			}
		})

		agg := newTestAggregator(t, AggregatorOpts{
			Pools: upstream.NewPools(map[upstream.Capability][]string{
				upstream.CapVideo: {mirror.URL},
			}),
			VideoPrimary: deadURL,
		})

		res, err := agg.Video(ctx, "abc123")
		if err != nil {
			t.Fatalf("expected fallback to succeed, got %v", err)
		}
		if res.Source != upstream.FamilyMirror {
			t.Errorf("expected mirror source, got %s", res.Source)
		}
	})

	t.Run("Comments and ChannelVideos and Playlist race their pools", func(t *testing.T) {
		paths := map[string]string{}
		mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths[r.URL.Path] = r.URL.Path
			io.WriteString(w, `{"ok":true}`)
		}))
		t.Cleanup(mirror.Close)

		pools := upstream.NewPools(map[upstream.Capability][]string{
			upstream.CapComments: {mirror.URL},
			upstream.CapChannel:  {mirror.URL},
			upstream.CapPlaylist: {mirror.URL},
		})
		agg := newTestAggregator(t, AggregatorOpts{Pools: pools})

		if _, err := agg.Comments(ctx, "vid1"); err != nil {
			t.Fatalf("comments failed: %v", err)
		}
		if _, err := agg.ChannelVideos(ctx, "UC123"); err != nil {
			t.Fatalf("channel failed: %v", err)
		}
		if _, err := agg.Playlist(ctx, "PL456"); err != nil {
			t.Fatalf("playlist failed: %v", err)
		}

		for _, want := range []string{"/api/v1/comments/vid1", "/api/v1/channels/UC123", "/api/v1/playlists/PL456"} {
			if _, ok := paths[want]; !ok {
				t.Errorf("expected upstream path %s to be requested, saw %v", want, paths)
			}
		}
	})

	t.Run("empty pool surfaces a configuration error", func(t *testing.T) {
		agg := newTestAggregator(t, AggregatorOpts{})
		if _, err := agg.Comments(ctx, "vid1"); !errors.Is(err, shared.ErrNoEndpoints) {
			t.Errorf("expected ErrNoEndpoints, got %v", err)
		}
	})

	t.Run("ResolveStream walks the resolver chain", func(t *testing.T) {
		noFormat := serveJSON(t, `{"formats":[{"itag":"18","url":"https://a.example/18"}]}`, nil)
		withFormat := serveJSON(t, `{"formats":[{"itag":"22","url":"https://b.example/22"}]}`, nil)

		agg := newTestAggregator(t, AggregatorOpts{
			StreamBases: []string{noFormat.URL, withFormat.URL},
		})

		res, err := agg.ResolveStream(ctx, "abc123", "22")
		if err != nil {
			t.Fatalf("expected resolution, got %v", err)
		}
		if res.URL != "https://b.example/22" {
			t.Errorf("unexpected stream url: %s", res.URL)
		}
		if res.Source != upstream.FamilyDedicated {
			t.Errorf("expected dedicated family tag, got %q", res.Source)
		}
	})

	t.Run("ResolveStream exposes only the provider family", func(t *testing.T) {
		resolver := serveJSON(t, `{"formats":[{"itag":"18","url":"https://cdn.example/v"}]}`, nil)

		agg := newTestAggregator(t, AggregatorOpts{
			StreamBases: []string{resolver.URL},
		})

		res, err := agg.ResolveStream(ctx, "abc123", "18")
		if err != nil {
			t.Fatalf("expected resolution, got %v", err)
		}
		if res.Source != upstream.FamilyDedicated {
			t.Errorf("expected dedicated family tag, got %q", res.Source)
		}
		if host := hostOf(t, resolver.URL); strings.Contains(string(res.Source), host) {
			t.Errorf("resolver identity leaked through the result: %q", res.Source)
		}
	})

	t.Run("ResolveStream with no resolvers is a configuration error", func(t *testing.T) {
		agg := newTestAggregator(t, AggregatorOpts{})
		if _, err := agg.ResolveStream(ctx, "abc123", ""); !errors.Is(err, shared.ErrNoEndpoints) {
			t.Errorf("expected ErrNoEndpoints, got %v", err)
		}
	})

	t.Run("Name", func(t *testing.T) {
		agg := newTestAggregator(t, AggregatorOpts{})
		if agg.Name() != "mirror-aggregator" {
			t.Errorf("unexpected name %s", agg.Name())
		}
	})

	t.Run("NewAggregatorFromConfig wires defaults", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		agg := NewAggregatorFromConfig(cfg, shared.NewLogger(io.Discard))
		if agg.videoPrimary != cfg.Resolvers.VideoPrimary {
			t.Errorf("expected video primary %s, got %s", cfg.Resolvers.VideoPrimary, agg.videoPrimary)
		}
		if agg.lang != "ja" {
			t.Errorf("expected lang ja, got %s", agg.lang)
		}
	})
}
