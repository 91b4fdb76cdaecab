package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/services"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	mocks "github.com/xianrendesu-max/senninyoutubeviewerver3/internal/testing"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
)

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAPIHandler(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("status", func(t *testing.T) {
		h := NewAPIHandler(&mocks.MockService{}, logger)
		rec := doGet(t, h, "/status")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["status"] != "ok" {
			t.Errorf("expected status ok, got %v", body)
		}
	})

	t.Run("search passes payload through with family tag", func(t *testing.T) {
		svc := &mocks.MockService{Result: &services.Result{
			Payload: json.RawMessage(`[{"title":"x"}]`),
			Source:  upstream.FamilyMirror,
		}}
		h := NewAPIHandler(svc, logger)
		rec := doGet(t, h, "/api/search?q=cats")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != `[{"title":"x"}]` {
			t.Errorf("payload was not passed through untouched: %s", rec.Body.String())
		}
		if got := rec.Header().Get("X-Upstream-Family"); got != "mirror" {
			t.Errorf("expected family header mirror, got %q", got)
		}
		if len(svc.Calls) != 1 || svc.Calls[0] != "search:cats" {
			t.Errorf("unexpected façade calls: %v", svc.Calls)
		}
	})

	t.Run("video tagged dedicated", func(t *testing.T) {
		svc := &mocks.MockService{Result: &services.Result{
			Payload: json.RawMessage(`{"title":"native"}`),
			Source:  upstream.FamilyDedicated,
		}}
		rec := doGet(t, NewAPIHandler(svc, logger), "/api/video?video_id=abc")

		if got := rec.Header().Get("X-Upstream-Family"); got != "dedicated" {
			t.Errorf("expected family header dedicated, got %q", got)
		}
	})

	t.Run("comments are reshaped", func(t *testing.T) {
		svc := &mocks.MockService{Result: &services.Result{
			Payload: json.RawMessage(`{"comments":[{"author":"alice","content":"hi","likeCount":4}]}`),
			Source:  upstream.FamilyMirror,
		}}
		rec := doGet(t, NewAPIHandler(svc, logger), "/api/comments?video_id=abc")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var page struct {
			Comments []map[string]string `json:"comments"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(page.Comments) != 1 {
			t.Fatalf("expected 1 comment, got %d", len(page.Comments))
		}
		if page.Comments[0]["author"] != "alice" || page.Comments[0]["content"] != "hi" {
			t.Errorf("unexpected comment: %v", page.Comments[0])
		}
		if _, ok := page.Comments[0]["likeCount"]; ok {
			t.Error("upstream-only fields must not leak through")
		}
	})

	t.Run("aggregation failures map to 503", func(t *testing.T) {
		for name, err := range map[string]error{
			"all failed":        shared.ErrAllFailed,
			"deadline exceeded": shared.ErrDeadlineExceeded,
			"no endpoints":      shared.ErrNoEndpoints,
		} {
			t.Run(name, func(t *testing.T) {
				svc := &mocks.MockService{Err: err}
				rec := doGet(t, NewAPIHandler(svc, logger), "/api/channel?channel_id=UC1")
				if rec.Code != http.StatusServiceUnavailable {
					t.Errorf("expected 503, got %d", rec.Code)
				}
			})
		}
	})

	t.Run("missing argument maps to 400", func(t *testing.T) {
		svc := &mocks.MockService{Err: shared.ErrMissingArgument}
		rec := doGet(t, NewAPIHandler(svc, logger), "/api/search")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("streamurl redirects to the resolved URL", func(t *testing.T) {
		svc := &mocks.MockService{Stream: &services.StreamResult{
			URL:    "https://cdn.example/play.mp4",
			Source: upstream.FamilyDedicated,
		}}
		rec := doGet(t, NewAPIHandler(svc, logger), "/api/streamurl?video_id=abc&quality=22")

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if got := rec.Header().Get("Location"); got != "https://cdn.example/play.mp4" {
			t.Errorf("unexpected redirect target: %s", got)
		}
		if len(svc.Calls) != 1 || svc.Calls[0] != "stream:abc:22" {
			t.Errorf("unexpected façade calls: %v", svc.Calls)
		}
	})

	t.Run("streamurl defaults quality to best", func(t *testing.T) {
		svc := &mocks.MockService{Stream: &services.StreamResult{URL: "https://cdn.example/x"}}
		doGet(t, NewAPIHandler(svc, logger), "/api/streamurl?video_id=abc")
		if len(svc.Calls) != 1 || svc.Calls[0] != "stream:abc:best" {
			t.Errorf("unexpected façade calls: %v", svc.Calls)
		}
	})

	t.Run("streamurl exhaustion answers stream unavailable", func(t *testing.T) {
		svc := &mocks.MockService{Err: shared.ErrAllFailed}
		rec := doGet(t, NewAPIHandler(svc, logger), "/api/streamurl?video_id=abc")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["error"] != "stream unavailable" {
			t.Errorf("unexpected error body: %v", body)
		}
	})

	t.Run("non-GET methods are rejected", func(t *testing.T) {
		h := NewAPIHandler(&mocks.MockService{}, logger)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search?q=x", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestServerAssembly(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("request logger sets X-Request-ID", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(RequestLogger(logger))
		router.Handler(NewAPIHandler(&mocks.MockService{}, logger))

		rec := doGet(t, router, "/status")
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header to be set")
		}
	})

	t.Run("pages are served", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewPageHandler(logger))

		for _, path := range []string{"/", "/watch", "/channel"} {
			rec := doGet(t, router, path)
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200 for %s, got %d", path, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("unexpected content type for %s: %s", path, ct)
			}
		}

		rec := doGet(t, router, "/static/style.css")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for stylesheet, got %d", rec.Code)
		}
	})

	t.Run("New wires routes end to end", func(t *testing.T) {
		svc := &mocks.MockService{Result: &services.Result{
			Payload: json.RawMessage(`{"ok":true}`),
			Source:  upstream.FamilyMirror,
		}}
		srv := New(shared.ServerConfig{Host: "127.0.0.1", Port: 0}, svc, logger)

		rec := doGet(t, srv.Handler, "/api/video?video_id=abc")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		rec = doGet(t, srv.Handler, "/status")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for /status, got %d", rec.Code)
		}
	})
}
