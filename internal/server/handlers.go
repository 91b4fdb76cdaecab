package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/models"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/services"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
)

// familyHeader tags API responses with the provider family that answered so
// the page JavaScript can render "native" vs "mirror" affordances. The
// individual provider is never exposed.
const familyHeader = "X-Upstream-Family"

// APIHandler serves the JSON API backed by the aggregation façade.
type APIHandler struct {
	svc    services.Service
	logger *log.Logger
}

// NewAPIHandler creates an APIHandler for the given façade.
func NewAPIHandler(svc services.Service, logger *log.Logger) *APIHandler {
	return &APIHandler{svc: svc, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *APIHandler) Routes() []string {
	return []string{
		"/status",
		"/api/search",
		"/api/video",
		"/api/comments",
		"/api/channel",
		"/api/playlist",
		"/api/streamurl",
	}
}

// ServeHTTP dispatches to the façade operation matching the request path.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/status":
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case "/api/search":
		h.search(w, r)
	case "/api/video":
		h.video(w, r)
	case "/api/comments":
		h.comments(w, r)
	case "/api/channel":
		h.channel(w, r)
	case "/api/playlist":
		h.playlist(w, r)
	case "/api/streamurl":
		h.streamURL(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *APIHandler) search(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResult(w, res)
}

func (h *APIHandler) video(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Video(r.Context(), r.URL.Query().Get("video_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResult(w, res)
}

func (h *APIHandler) comments(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Comments(r.Context(), r.URL.Query().Get("video_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	page, err := models.MapComments(res.Payload)
	if err != nil {
		h.logger.Warn("accepted comments payload failed to map", "err", err)
		h.writeError(w, shared.ErrAllFailed)
		return
	}

	w.Header().Set(familyHeader, string(res.Source))
	h.writeJSON(w, http.StatusOK, page)
}

func (h *APIHandler) channel(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ChannelVideos(r.Context(), r.URL.Query().Get("channel_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResult(w, res)
}

func (h *APIHandler) playlist(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Playlist(r.Context(), r.URL.Query().Get("playlist_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResult(w, res)
}

func (h *APIHandler) streamURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quality := q.Get("quality")
	if quality == "" {
		quality = upstream.QualityBest
	}

	res, err := h.svc.ResolveStream(r.Context(), q.Get("video_id"), quality)
	if err != nil {
		if errors.Is(err, shared.ErrMissingArgument) {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "stream unavailable"})
		return
	}

	http.Redirect(w, r, res.URL, http.StatusFound)
}

// writeResult passes a validated upstream payload through untouched, tagged
// with the answering provider family.
func (h *APIHandler) writeResult(w http.ResponseWriter, res *services.Result) {
	w.Header().Set(familyHeader, string(res.Source))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(res.Payload)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "err", err)
	}
}

// writeError maps façade errors onto HTTP statuses. Exhaustion and deadline
// elapse both read as "service unavailable" to clients; the distinction
// stays in the logs.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, shared.ErrNoEndpoints):
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "capability not configured"})
	case errors.Is(err, shared.ErrAllFailed), errors.Is(err, shared.ErrDeadlineExceeded):
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "service unavailable"})
	default:
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
