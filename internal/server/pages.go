package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/charmbracelet/log"
)

//go:embed static
var staticFS embed.FS

// PageHandler serves the HTML pages and static assets. Pages carry no data
// of their own; their JavaScript talks to the /api routes.
type PageHandler struct {
	pages  map[string]string
	files  http.Handler
	logger *log.Logger
}

// NewPageHandler creates a PageHandler over the embedded static assets.
func NewPageHandler(logger *log.Logger) *PageHandler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The subtree is embedded at build time; a failure here is a
		// packaging bug, not a runtime condition.
		panic(err)
	}

	return &PageHandler{
		pages: map[string]string{
			"/":        "index.html",
			"/watch":   "watch.html",
			"/channel": "channel.html",
		},
		files:  http.StripPrefix("/static/", http.FileServer(http.FS(sub))),
		logger: logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *PageHandler) Routes() []string {
	return []string{"/", "/watch", "/channel", "/static/"}
}

// ServeHTTP serves a page or a static asset.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if page, ok := h.pages[r.URL.Path]; ok {
		body, err := staticFS.ReadFile("static/" + page)
		if err != nil {
			h.logger.Error("missing embedded page", "page", page, "err", err)
			http.Error(w, "page not found", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
		return
	}

	h.files.ServeHTTP(w, r)
}
