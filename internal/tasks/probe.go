package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
	"golang.org/x/time/rate"
)

// ProbeOpts contains configuration for a pool sweep.
type ProbeOpts struct {
	NumWorkers int           // Concurrent workers (default: 5, max: 10)
	RateLimit  float64       // Requests per second across all workers (default: 5)
	Timeout    time.Duration // Per-request connect/header timeout (default: 10s)
}

// Probe checks every configured endpoint concurrently with rate limiting
// and progress tracking.
//
// This method implements a worker pool pattern so wide pools finish quickly
// while the shared limiter keeps the sweep polite to the mirrors it is
// checking. Individual failures never abort the sweep; they land in the
// report as unhealthy entries.
func (e *ProbeEngine) Probe(ctx context.Context, prog chan<- ProgressUpdate, opts ProbeOpts) (*ProbeReport, error) {
	targets := e.targets()
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: nothing configured to probe", shared.ErrNoEndpoints)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	report := &ProbeReport{
		Results: make([]ProbeResult, 0, len(targets)),
		Started: time.Now(),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	client := probeClient(opts.Timeout)

	jobs := make(chan ProbeTarget, len(targets))
	results := make(chan ProbeResult, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.probeWorker(ctx, &wg, client, jobs, results)
	}

	go func() {
		e.sendProgress(prog, probeStartUpdate(len(targets)))
		for _, target := range targets {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
			jobs <- target
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		report.Results = append(report.Results, res)
		if res.Healthy {
			report.Healthy++
		} else {
			report.Unhealthy++
		}
		e.sendProgress(prog, probeResultUpdate(completed, len(targets), res))
	}

	// Workers race each other, so results arrive out of order. Sort back
	// into pool order for stable output.
	sort.Slice(report.Results, func(i, j int) bool {
		a, b := report.Results[i].Target, report.Results[j].Target
		if a.Capability != b.Capability {
			return a.Capability < b.Capability
		}
		return a.BaseURL < b.BaseURL
	})

	report.Elapsed = time.Since(report.Started)
	e.sendProgress(prog, probeDoneUpdate(report))

	if ctx.Err() != nil {
		return report, fmt.Errorf("probe interrupted: %w", ctx.Err())
	}
	return report, nil
}

// probeWorker is a worker goroutine that checks targets from the jobs channel.
func (e *ProbeEngine) probeWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	client *http.Client,
	jobs <-chan ProbeTarget,
	results chan<- ProbeResult,
) {
	defer wg.Done()

	for target := range jobs {
		select {
		case <-ctx.Done():
			results <- ProbeResult{Target: target, Err: ctx.Err()}
			continue
		default:
		}
		results <- e.checkTarget(ctx, client, target)
	}
}

// checkTarget performs a single probe request and validates the payload the
// same way the race dispatcher would.
func (e *ProbeEngine) checkTarget(ctx context.Context, client *http.Client, target ProbeTarget) ProbeResult {
	res := ProbeResult{Target: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.BaseURL+target.Path, nil)
	if err != nil {
		res.Err = fmt.Errorf("failed to create request: %w", err)
		return res
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := client.Do(req)
	res.Latency = time.Since(started)
	if err != nil {
		res.Err = fmt.Errorf("request failed: %w", err)
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		res.Err = fmt.Errorf("failed to read response: %w", err)
		return res
	}

	validate := upstream.ForCapability(target.Capability)
	if target.Capability == upstream.CapStream {
		// Resolvers answer with a format document, same shape rule as
		// the dedicated video service.
		validate = upstream.JSONObject
	}
	res.Healthy = validate(resp.StatusCode, body)
	return res
}
