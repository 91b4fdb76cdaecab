// package services exposes the aggregation façade consumed by the HTTP
// routing layer and the CLI.
//
// Every operation returns either a validated upstream payload tagged with
// the provider family that answered, or one of the shared aggregation
// errors (ErrNoEndpoints, ErrAllFailed, ErrDeadlineExceeded). Individual
// attempt failures never cross this boundary, and neither does the identity
// of the specific mirror that answered.
package services

import (
	"context"
	"encoding/json"

	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
)

// Result is an accepted payload plus the provider family that produced it.
// Callers render different affordances for "fast native" vs "mirror"
// answers but never learn which individual provider replied.
type Result struct {
	Payload json.RawMessage
	Source  upstream.Family
}

// StreamResult is a resolved playable stream URL plus the provider family
// that produced it. Like [Result], it never identifies the individual
// resolver service; that stays in the logs.
type StreamResult struct {
	URL    string
	Source upstream.Family
}

// Service defines the façade operations over the volatile upstream pools.
type Service interface {
	// Search runs a video search across the search pool.
	Search(ctx context.Context, query string) (*Result, error)

	// Video fetches video metadata, preferring the dedicated metadata
	// service and falling back to the video mirror pool.
	Video(ctx context.Context, id string) (*Result, error)

	// Comments fetches the comment thread for a video.
	Comments(ctx context.Context, id string) (*Result, error)

	// ChannelVideos fetches a channel document including its video listing.
	ChannelVideos(ctx context.Context, id string) (*Result, error)

	// Playlist fetches a playlist document.
	Playlist(ctx context.Context, id string) (*Result, error)

	// ResolveStream resolves a playable stream URL for a video at the
	// requested quality, walking the ordered resolver chain.
	ResolveStream(ctx context.Context, id, quality string) (*StreamResult, error)

	// Name returns the façade implementation name.
	Name() string
}
