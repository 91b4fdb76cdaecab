package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
)

// QualityBest selects whichever playable format a resolver lists first.
const QualityBest = "best"

// FallbackChain implements the primary/secondary shape: a single attempt
// against a dedicated (non-mirror) service, falling through to a race on the
// capability's mirror pool when the primary times out, errors, or returns an
// unusable body. The primary is tried exactly once per logical request.
type FallbackChain struct {
	dispatcher *Dispatcher
	primary    *http.Client
	logger     *log.Logger
}

// NewFallbackChain creates a FallbackChain. The dedicated primary gets a
// plain total-call timeout; mirror attempts inherit the dispatcher's
// connect/read timeouts and global deadline.
func NewFallbackChain(dispatcher *Dispatcher, primaryTimeout time.Duration, logger *log.Logger) *FallbackChain {
	return &FallbackChain{
		dispatcher: dispatcher,
		primary:    &http.Client{Timeout: primaryTimeout},
		logger:     logger,
	}
}

// Fetch returns the primary's payload when it answers acceptably, tagged
// [FamilyDedicated]; otherwise the mirror race's payload tagged
// [FamilyMirror]. An empty primaryURL skips straight to the race.
func (c *FallbackChain) Fetch(ctx context.Context, cap Capability, primaryURL, mirrorPath string) ([]byte, Family, error) {
	if primaryURL != "" {
		status, body, err := fetch(ctx, c.primary, primaryURL)
		if err == nil && JSONObject(status, body) {
			return body, FamilyDedicated, nil
		}
		if err != nil {
			c.logger.Debug("primary failed, falling back to mirror pool",
				"capability", cap, "err", err)
		} else {
			c.logger.Debug("primary rejected, falling back to mirror pool",
				"capability", cap, "status", status)
		}
	}

	payload, _, err := c.dispatcher.Race(ctx, cap, mirrorPath)
	if err != nil {
		return nil, "", err
	}
	return payload, FamilyMirror, nil
}

// StreamCandidate is one dedicated stream-resolution service. Candidates are
// distinct implementations, not interchangeable mirrors, so they are tried
// strictly in configuration order rather than raced.
type StreamCandidate struct {
	Name    string
	BaseURL string
}

// StreamResolver walks an ordered candidate list and accepts the first 200
// response carrying a playable URL for the requested quality.
type StreamResolver struct {
	candidates []StreamCandidate
	client     *http.Client
	logger     *log.Logger
}

// NewStreamResolver builds a StreamResolver from resolver base URLs.
// Candidate names are derived from the URL host for logging and result tags.
func NewStreamResolver(bases []string, timeout time.Duration, logger *log.Logger) *StreamResolver {
	candidates := make([]StreamCandidate, 0, len(bases))
	for _, base := range bases {
		if base == "" {
			continue
		}
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		name := base
		if u, err := url.Parse(base); err == nil && u.Host != "" {
			name = u.Host
		}
		candidates = append(candidates, StreamCandidate{Name: name, BaseURL: base})
	}
	return &StreamResolver{
		candidates: candidates,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Resolve tries each candidate in order with GET {base}{videoID} and returns
// the first playable URL plus the name of the candidate that produced it.
// A 200 response missing the required format for the requested quality
// counts as a failure and the chain proceeds to the next candidate.
func (r *StreamResolver) Resolve(ctx context.Context, videoID, quality string) (string, string, error) {
	if len(r.candidates) == 0 {
		return "", "", fmt.Errorf("%w for capability %q", shared.ErrNoEndpoints, CapStream)
	}
	if quality == "" {
		quality = QualityBest
	}

	var errs []error
	for _, cand := range r.candidates {
		status, body, err := fetch(ctx, r.client, cand.BaseURL+url.PathEscape(videoID))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cand.Name, err))
			continue
		}
		if status != http.StatusOK {
			errs = append(errs, fmt.Errorf("%s: %w (status %d)", cand.Name, shared.ErrBadPayload, status))
			continue
		}
		playable, err := playableURL(body, quality)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cand.Name, err))
			continue
		}
		r.logger.Debug("stream resolved", "resolver", cand.Name, "quality", quality)
		return playable, cand.Name, nil
	}

	return "", "", &AllFailedError{Capability: CapStream, Attempts: len(r.candidates), Errs: errs}
}

// playableURL extracts a stream URL from a resolver payload. Resolvers answer
// either with a format list (entries identified by itag/quality tags) or with
// a single top-level url field.
func playableURL(body []byte, quality string) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrBadPayload, err)
	}

	if formats, ok := doc["formats"].([]any); ok {
		for _, f := range formats {
			entry, ok := f.(map[string]any)
			if !ok {
				continue
			}
			u, _ := entry["url"].(string)
			if u == "" {
				continue
			}
			if quality == QualityBest || matchesQuality(entry, quality) {
				return u, nil
			}
		}
		return "", fmt.Errorf("%w: no format matching quality %q", shared.ErrBadPayload, quality)
	}

	if u, ok := doc["url"].(string); ok && u != "" && quality == QualityBest {
		return u, nil
	}

	return "", fmt.Errorf("%w: no playable url for quality %q", shared.ErrBadPayload, quality)
}

// matchesQuality reports whether a format entry is identified by the
// requested quality tag. Resolvers disagree on the field name and on whether
// itags are numbers or strings, so all known spellings are checked.
func matchesQuality(entry map[string]any, quality string) bool {
	for _, key := range []string{"itag", "quality", "qualityLabel", "format_id"} {
		if v, ok := entry[key]; ok && fmt.Sprint(v) == quality {
			return true
		}
	}
	return false
}
