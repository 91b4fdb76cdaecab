package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
)

// AllFailedError reports that every candidate in a race or fallback chain
// was tried and none produced an acceptable response. It matches
// [shared.ErrAllFailed] under [errors.Is].
type AllFailedError struct {
	Capability Capability
	Attempts   int
	Errs       []error
}

func (e *AllFailedError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s: %s (%d attempts): %s",
		shared.ErrAllFailed, e.Capability, e.Attempts, strings.Join(msgs, "; "))
}

func (e *AllFailedError) Is(target error) bool {
	return target == shared.ErrAllFailed
}

// Dispatcher races a capability's whole mirror pool and keeps the first
// response the validator accepts. Losing attempts are abandoned
// cooperatively: their completions land in a buffered channel nobody reads
// again and are discarded.
type Dispatcher struct {
	pools    *Pools
	client   *http.Client
	deadline time.Duration
	logger   *log.Logger
}

// NewDispatcher creates a Dispatcher. attemptTimeout bounds connection setup
// and time-to-first-header per endpoint; deadline bounds the whole race so a
// pool of slow-but-alive mirrors cannot stall the caller indefinitely.
func NewDispatcher(pools *Pools, attemptTimeout, deadline time.Duration, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		pools:    pools,
		client:   NewAttemptClient(attemptTimeout),
		deadline: deadline,
		logger:   logger,
	}
}

type attemptResult struct {
	endpoint Endpoint
	payload  []byte
	err      error
}

// Race dispatches one request per endpoint in the capability's pool
// concurrently and returns the first validator-accepted body together with
// the endpoint that produced it.
//
// An empty pool is a configuration error ([shared.ErrNoEndpoints]) and makes
// no network calls. If every attempt errors or is rejected the race fails
// with [AllFailedError]; if the global deadline elapses first it fails with
// [shared.ErrDeadlineExceeded]. Individual network errors never abort the
// race early; they only count toward exhaustion.
func (d *Dispatcher) Race(ctx context.Context, cap Capability, path string) ([]byte, Endpoint, error) {
	pool := d.pools.Endpoints(cap)
	if len(pool) == 0 {
		return nil, Endpoint{}, fmt.Errorf("%w for capability %q", shared.ErrNoEndpoints, cap)
	}

	ctx, cancel := context.WithTimeout(ctx, d.deadline)
	defer cancel()

	accept := ForCapability(cap)

	// Buffered so late losers can always deliver and exit; their results
	// are simply never read once the race resolves.
	results := make(chan attemptResult, len(pool))
	for _, endpoint := range pool {
		go d.attempt(ctx, endpoint, path, accept, results)
	}

	started := time.Now()
	var errs []error
	for pending := len(pool); pending > 0; pending-- {
		select {
		case res := <-results:
			if res.err != nil {
				errs = append(errs, res.err)
				continue
			}
			d.logger.Debug("race won",
				"capability", cap,
				"endpoint", res.endpoint.BaseURL,
				"elapsed", shared.FormatLatency(time.Since(started)),
				"losers", len(pool)-1)
			return res.payload, res.endpoint, nil
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				d.logger.Warn("race deadline exceeded",
					"capability", cap, "deadline", d.deadline, "pool", len(pool))
				return nil, Endpoint{}, fmt.Errorf("%w: %s after %s",
					shared.ErrDeadlineExceeded, cap, d.deadline)
			}
			return nil, Endpoint{}, ctx.Err()
		}
	}

	d.logger.Warn("race exhausted", "capability", cap, "attempts", len(pool))
	return nil, Endpoint{}, &AllFailedError{Capability: cap, Attempts: len(pool), Errs: errs}
}

func (d *Dispatcher) attempt(ctx context.Context, endpoint Endpoint, path string, accept Validator, results chan<- attemptResult) {
	status, body, err := fetch(ctx, d.client, endpoint.BaseURL+path)
	if err != nil {
		results <- attemptResult{endpoint: endpoint, err: fmt.Errorf("%s: %w", endpoint.BaseURL, err)}
		return
	}
	if !accept(status, body) {
		results <- attemptResult{
			endpoint: endpoint,
			err:      fmt.Errorf("%s: %w (status %d)", endpoint.BaseURL, shared.ErrBadPayload, status),
		}
		return
	}
	results <- attemptResult{endpoint: endpoint, payload: body}
}
