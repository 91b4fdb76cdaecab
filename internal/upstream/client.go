package upstream

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of an upstream body is read. Mirrors
// occasionally return multi-megabyte HTML dumps; nothing legitimate in the
// Invidious API exceeds this.
const maxBodyBytes = 8 << 20

// NewAttemptClient builds an [http.Client] whose timeouts bound connection
// setup and time-to-first-header rather than the whole call, so a healthy
// mirror that streams a large body slowly is not mistaken for a dead one.
// The race's global deadline bounds total time via request contexts.
func NewAttemptClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: timeout,
			}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConnsPerHost:   4,
		},
	}
}

// fetch performs a single GET and returns the status code and body. Network
// failures (refused connections, DNS errors, TLS failures) surface as errors;
// non-200 statuses are returned to the caller's validator, not treated as
// errors here.
func fetch(ctx context.Context, client *http.Client, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}
