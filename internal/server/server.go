// package server contains the router, middleware & handlers for the video
// front-end web service. It owns all HTTP concerns: the aggregation façade
// it wraps knows nothing about status codes or headers.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/services"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the video front-end.
// Implementations handle specific endpoint groups (API, static pages).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// New assembles the full HTTP server: request logging middleware, the API
// handler backed by the aggregation façade, and the static page handler.
func New(cfg shared.ServerConfig, svc services.Service, logger *log.Logger) *http.Server {
	router := NewBasicRouter()
	router.Use(RequestLogger(logger))
	router.Handler(NewAPIHandler(svc, logger))
	router.Handler(NewPageHandler(logger))

	return &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Stream redirects and page loads are quick, but comment payloads
		// from slow mirrors can take the whole upstream deadline.
		WriteTimeout: 30 * time.Second,
	}
}
