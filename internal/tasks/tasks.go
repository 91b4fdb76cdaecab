// package tasks implements endpoint maintenance operations for the
// aggregation pools.
//
// The core abstraction is ProbeEngine, which checks every configured
// upstream endpoint concurrently and reports per-endpoint health.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
)

// ProbeTarget identifies a single endpoint/capability pair to check.
type ProbeTarget struct {
	Capability upstream.Capability // Capability the endpoint is pooled under
	BaseURL    string              // Endpoint base URL, trailing slash included
	Path       string              // Request path used for the check
}

// ProbeResult is the outcome of checking one target.
type ProbeResult struct {
	Target     ProbeTarget
	Healthy    bool          // Status 200 and payload accepted by the capability validator
	StatusCode int           // HTTP status, 0 when the request never completed
	Latency    time.Duration // Wall time of the request
	Err        error         // Transport error, nil on rejection-only failures
}

// ProbeReport aggregates the results of a full pool sweep.
type ProbeReport struct {
	Results   []ProbeResult
	Healthy   int
	Unhealthy int
	Started   time.Time
	Elapsed   time.Duration
}

// ProbeEngine checks configured endpoints for liveness and payload shape.
// Each probe issues the capability's cheapest real request and runs the
// response through the same validator the race dispatcher uses, so a
// "healthy" verdict here means the endpoint would win a race.
type ProbeEngine struct {
	pools       *upstream.Pools
	streamBases []string
	logger      *log.Logger
}

// NewProbeEngine creates a ProbeEngine over the given pools and stream
// resolver bases.
func NewProbeEngine(pools *upstream.Pools, streamBases []string, logger *log.Logger) *ProbeEngine {
	return &ProbeEngine{pools: pools, streamBases: streamBases, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ProbeEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// targets enumerates every endpoint to probe, mirror pools first, stream
// resolvers last.
func (e *ProbeEngine) targets() []ProbeTarget {
	var out []ProbeTarget
	for _, cap := range e.pools.Capabilities() {
		path := probePath(cap)
		for _, ep := range e.pools.Endpoints(cap) {
			out = append(out, ProbeTarget{Capability: cap, BaseURL: ep.BaseURL, Path: path})
		}
	}
	for _, base := range e.streamBases {
		if base == "" {
			continue
		}
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		out = append(out, ProbeTarget{Capability: upstream.CapStream, BaseURL: base, Path: sampleVideoID})
	}
	return out
}

// Sample identifiers for probe requests. Stable public YouTube IDs so a
// working endpoint always has something to answer with.
const (
	sampleVideoID    = "jNQXAC9IVRw"
	sampleChannelID  = "UC_x5XG1OV2P6uZZ5FSM9Ttw"
	samplePlaylistID = "PLbpi6ZahtOH5jeTT1vT5GYMPza7kYm3FY"
)

func probePath(cap upstream.Capability) string {
	switch cap {
	case upstream.CapSearch:
		return "api/v1/search?q=test"
	case upstream.CapVideo:
		return "api/v1/videos/" + sampleVideoID
	case upstream.CapComments:
		return "api/v1/comments/" + sampleVideoID
	case upstream.CapChannel:
		return "api/v1/channels/" + sampleChannelID
	case upstream.CapPlaylist:
		return "api/v1/playlists/" + samplePlaylistID
	default:
		return ""
	}
}

// probeClient builds the HTTP client used for checks. Same transport
// characteristics as race attempts so latency numbers are comparable.
func probeClient(timeout time.Duration) *http.Client {
	return upstream.NewAttemptClient(timeout)
}
