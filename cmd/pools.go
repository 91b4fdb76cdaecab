package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// poolsCommand prints the configured endpoint pools
func poolsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pools",
		Usage: "Show the configured endpoint pools and resolvers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Pools,
	}
}

// Pools lists every configured mirror and dedicated service.
func (r *Runner) Pools(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") {
		out := map[string]any{
			"pools":         map[string][]string{},
			"video_primary": r.config.Resolvers.VideoPrimary,
			"stream":        r.config.Resolvers.Stream,
		}
		pools := out["pools"].(map[string][]string)
		for _, cap := range r.pools.Capabilities() {
			urls := []string{}
			for _, ep := range r.pools.Endpoints(cap) {
				urls = append(urls, ep.BaseURL)
			}
			pools[string(cap)] = urls
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader("Endpoint pools")
	for _, cap := range r.pools.Capabilities() {
		endpoints := r.pools.Endpoints(cap)
		r.writePlain("%s (%d)\n", cap, len(endpoints))
		for _, ep := range endpoints {
			r.writePlain("  %s\n", ep.BaseURL)
		}
	}

	r.writePlainln("Dedicated services")
	if r.config.Resolvers.VideoPrimary != "" {
		r.writePlain("  video: %s\n", r.config.Resolvers.VideoPrimary)
	}
	for _, base := range r.config.Resolvers.Stream {
		r.writePlain("  stream: %s\n", base)
	}

	return nil
}
