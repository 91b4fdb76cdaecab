// Package upstream implements the resilient multi-source fetch layer.
//
// Every logical operation (search, video metadata, comments, channel,
// playlist, stream resolution) is served by a pool of interchangeable
// mirror endpoints and/or a handful of dedicated resolver services, any of
// which may be slow, down, rate-limited, or returning garbage at any time.
// The package provides the three mechanisms the rest of the application
// composes: read-only endpoint pools, concurrent races across a pool, and
// ordered fallback chains across heterogeneous provider families.
package upstream

import (
	"sort"
	"strings"

	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
)

// Capability is a logical operation category routed to its own endpoint pool.
type Capability string

const (
	CapSearch   Capability = "search"
	CapVideo    Capability = "video"
	CapComments Capability = "comments"
	CapChannel  Capability = "channel"
	CapPlaylist Capability = "playlist"
	CapStream   Capability = "stream"
)

// Family tags which kind of provider produced a payload. Callers render
// different UI affordances for dedicated-service answers vs mirror answers,
// but never see the individual provider.
type Family string

const (
	FamilyMirror    Family = "mirror"
	FamilyDedicated Family = "dedicated"
)

// Endpoint is an upstream base URL plus its provider family. Immutable once
// configured.
type Endpoint struct {
	BaseURL string
	Family  Family
}

// Pools maps capabilities to their ordered endpoint lists. Built once at
// startup and never mutated afterwards, so concurrent reads need no locking.
type Pools struct {
	m map[Capability][]Endpoint
}

// NewPools builds the registry from per-capability base URL lists. Base URLs
// are normalized to carry a trailing slash so request paths can be appended
// directly. Empty lists are kept: an empty pool is a valid configuration
// whose operations fail fast.
func NewPools(byCapability map[Capability][]string) *Pools {
	m := make(map[Capability][]Endpoint, len(byCapability))
	for cap, bases := range byCapability {
		endpoints := make([]Endpoint, 0, len(bases))
		for _, base := range bases {
			if base == "" {
				continue
			}
			if !strings.HasSuffix(base, "/") {
				base += "/"
			}
			endpoints = append(endpoints, Endpoint{BaseURL: base, Family: FamilyMirror})
		}
		m[cap] = endpoints
	}
	return &Pools{m: m}
}

// NewPoolsFromConfig builds the registry from the application configuration.
func NewPoolsFromConfig(cfg shared.PoolsConfig) *Pools {
	return NewPools(map[Capability][]string{
		CapVideo:    cfg.Video,
		CapSearch:   cfg.Search,
		CapComments: cfg.Comments,
		CapChannel:  cfg.Channel,
		CapPlaylist: cfg.Playlist,
	})
}

// Endpoints returns the configured pool for a capability. Pure lookup; a
// missing or empty pool yields a nil/empty slice.
func (p *Pools) Endpoints(cap Capability) []Endpoint {
	return p.m[cap]
}

// Capabilities returns every configured capability in stable order.
func (p *Pools) Capabilities() []Capability {
	caps := make([]Capability, 0, len(p.m))
	for cap := range p.m {
		caps = append(caps, cap)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// Size returns the total number of configured endpoints across all pools.
func (p *Pools) Size() int {
	n := 0
	for _, endpoints := range p.m {
		n += len(endpoints)
	}
	return n
}
