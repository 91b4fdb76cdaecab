// Aggregator [Service] implementation backed by the upstream race/fallback layer.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
)

// AggregatorOpts contains configuration options for creating an Aggregator.
type AggregatorOpts struct {
	Pools          *upstream.Pools
	VideoPrimary   string        // dedicated metadata service base URL, "" disables the primary
	StreamBases    []string      // ordered stream resolver base URLs
	Lang           string        // interface language forwarded on searches
	AttemptTimeout time.Duration // per-attempt connect/read timeout
	GlobalDeadline time.Duration // whole-race budget
	PrimaryTimeout time.Duration // dedicated primary total-call timeout
	Logger         *log.Logger
}

// Aggregator implements [Service] by composing the endpoint pool registry,
// the race dispatcher, and the fallback chains.
type Aggregator struct {
	dispatcher   *upstream.Dispatcher
	chain        *upstream.FallbackChain
	resolver     *upstream.StreamResolver
	videoPrimary string
	lang         string
	logger       *log.Logger
}

// NewAggregator creates an Aggregator. Zero-valued timeouts fall back to the
// defaults the embedded example config ships with.
func NewAggregator(opts AggregatorOpts) *Aggregator {
	if opts.Pools == nil {
		opts.Pools = upstream.NewPools(nil)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Lang == "" {
		opts.Lang = "ja"
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 10 * time.Second
	}
	if opts.GlobalDeadline <= 0 {
		opts.GlobalDeadline = 15 * time.Second
	}
	if opts.PrimaryTimeout <= 0 {
		opts.PrimaryTimeout = 10 * time.Second
	}

	videoPrimary := opts.VideoPrimary
	if videoPrimary != "" && !strings.HasSuffix(videoPrimary, "/") {
		videoPrimary += "/"
	}

	dispatcher := upstream.NewDispatcher(opts.Pools, opts.AttemptTimeout, opts.GlobalDeadline, opts.Logger)

	return &Aggregator{
		dispatcher:   dispatcher,
		chain:        upstream.NewFallbackChain(dispatcher, opts.PrimaryTimeout, opts.Logger),
		resolver:     upstream.NewStreamResolver(opts.StreamBases, opts.PrimaryTimeout, opts.Logger),
		videoPrimary: videoPrimary,
		lang:         opts.Lang,
		logger:       opts.Logger,
	}
}

// NewAggregatorFromConfig wires an Aggregator from the application config.
func NewAggregatorFromConfig(cfg *shared.Config, logger *log.Logger) *Aggregator {
	return NewAggregator(AggregatorOpts{
		Pools:          upstream.NewPoolsFromConfig(cfg.Pools),
		VideoPrimary:   cfg.Resolvers.VideoPrimary,
		StreamBases:    cfg.Resolvers.Stream,
		Lang:           cfg.Upstream.Lang,
		AttemptTimeout: cfg.Upstream.AttemptTimeout(),
		GlobalDeadline: cfg.Upstream.GlobalDeadline(),
		PrimaryTimeout: cfg.Upstream.PrimaryTimeout(),
		Logger:         logger,
	})
}

// Name returns the façade implementation name.
func (a *Aggregator) Name() string {
	return "mirror-aggregator"
}

// Search runs GET api/v1/search across the search pool.
func (a *Aggregator) Search(ctx context.Context, query string) (*Result, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	path := fmt.Sprintf("api/v1/search?q=%s&hl=%s", url.QueryEscape(query), url.QueryEscape(a.lang))
	return a.race(ctx, "search", upstream.CapSearch, path)
}

// Video fetches metadata from the dedicated service, falling back to the
// video mirror pool on any primary failure.
func (a *Aggregator) Video(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	run := shared.GenerateID()
	primaryURL := ""
	if a.videoPrimary != "" {
		primaryURL = a.videoPrimary + url.PathEscape(id)
	}

	payload, family, err := a.chain.Fetch(ctx, upstream.CapVideo, primaryURL, "api/v1/videos/"+url.PathEscape(id))
	if err != nil {
		a.logger.Warn("video lookup failed", "run", run, "id", id, "err", err)
		return nil, err
	}
	a.logger.Debug("video lookup answered", "run", run, "id", id, "source", family)
	return &Result{Payload: payload, Source: family}, nil
}

// Comments races the comments pool.
func (a *Aggregator) Comments(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}
	return a.race(ctx, "comments", upstream.CapComments, "api/v1/comments/"+url.PathEscape(id))
}

// ChannelVideos races the channel pool.
func (a *Aggregator) ChannelVideos(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: channel id", shared.ErrMissingArgument)
	}
	return a.race(ctx, "channel", upstream.CapChannel, "api/v1/channels/"+url.PathEscape(id))
}

// Playlist races the playlist pool.
func (a *Aggregator) Playlist(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	return a.race(ctx, "playlist", upstream.CapPlaylist, "api/v1/playlists/"+url.PathEscape(id))
}

// ResolveStream walks the ordered resolver chain for a playable URL.
func (a *Aggregator) ResolveStream(ctx context.Context, id, quality string) (*StreamResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	run := shared.GenerateID()
	streamURL, resolver, err := a.resolver.Resolve(ctx, id, quality)
	if err != nil {
		a.logger.Warn("stream resolution failed", "run", run, "id", id, "quality", quality, "err", err)
		return nil, err
	}
	a.logger.Debug("stream resolved", "run", run, "id", id, "resolver", resolver)
	return &StreamResult{URL: streamURL, Source: upstream.FamilyDedicated}, nil
}

func (a *Aggregator) race(ctx context.Context, op string, cap upstream.Capability, path string) (*Result, error) {
	run := shared.GenerateID()
	payload, endpoint, err := a.dispatcher.Race(ctx, cap, path)
	if err != nil {
		a.logger.Warn("aggregation failed", "run", run, "op", op, "err", err)
		return nil, err
	}
	a.logger.Debug("aggregation answered", "run", run, "op", op, "source", endpoint.Family)
	return &Result{Payload: payload, Source: endpoint.Family}, nil
}
