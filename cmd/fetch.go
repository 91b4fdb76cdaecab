// submodule fetch contains one-shot aggregation commands for scripting and debugging
package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/services"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
)

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "pretty",
		Usage: "Pretty-print output",
	}
}

// fetchCommand runs a single aggregation operation and prints the payload
func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Run one aggregation operation and print the result",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search videos across the mirror pool",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  []cli.Flag{prettyFlag()},
				Action: r.FetchSearch,
			},
			{
				Name:  "video",
				Usage: "Fetch video metadata (dedicated primary, then mirrors)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{prettyFlag()},
				Action: r.FetchVideo,
			},
			{
				Name:  "comments",
				Usage: "Fetch the comment thread for a video",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{prettyFlag()},
				Action: r.FetchComments,
			},
			{
				Name:  "channel",
				Usage: "Fetch a channel document",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{prettyFlag()},
				Action: r.FetchChannel,
			},
			{
				Name:  "playlist",
				Usage: "Fetch a playlist document",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{prettyFlag()},
				Action: r.FetchPlaylist,
			},
			{
				Name:  "streamurl",
				Usage: "Resolve a playable stream URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "quality",
						Aliases: []string{"q"},
						Usage:   "Requested quality (itag or label)",
						Value:   upstream.QualityBest,
					},
				},
				Action: r.FetchStreamURL,
			},
		},
	}
}

func (r *Runner) fetchOne(op func() (*services.Result, error), pretty bool) error {
	if r.svc == nil {
		return fmt.Errorf("%w: aggregation service not initialized", shared.ErrMissingConfig)
	}

	res, err := op()
	if err != nil {
		return err
	}

	r.logger.Info("fetched", "source", res.Source, "bytes", len(res.Payload))
	return r.writeRawJSON(res.Payload, pretty)
}

// FetchSearch searches across the mirror pool and prints the raw result list.
func (r *Runner) FetchSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	return r.fetchOne(func() (*services.Result, error) {
		return r.svc.Search(ctx, query)
	}, cmd.Bool("pretty"))
}

// FetchVideo fetches video metadata and prints the raw document.
func (r *Runner) FetchVideo(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	return r.fetchOne(func() (*services.Result, error) {
		return r.svc.Video(ctx, id)
	}, cmd.Bool("pretty"))
}

// FetchComments fetches a comment thread and prints the raw document.
func (r *Runner) FetchComments(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	return r.fetchOne(func() (*services.Result, error) {
		return r.svc.Comments(ctx, id)
	}, cmd.Bool("pretty"))
}

// FetchChannel fetches a channel document and prints it.
func (r *Runner) FetchChannel(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	return r.fetchOne(func() (*services.Result, error) {
		return r.svc.ChannelVideos(ctx, id)
	}, cmd.Bool("pretty"))
}

// FetchPlaylist fetches a playlist document and prints it.
func (r *Runner) FetchPlaylist(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	return r.fetchOne(func() (*services.Result, error) {
		return r.svc.Playlist(ctx, id)
	}, cmd.Bool("pretty"))
}

// FetchStreamURL resolves a playable stream URL and prints it.
func (r *Runner) FetchStreamURL(ctx context.Context, cmd *cli.Command) error {
	if r.svc == nil {
		return fmt.Errorf("%w: aggregation service not initialized", shared.ErrMissingConfig)
	}

	res, err := r.svc.ResolveStream(ctx, cmd.StringArg("id"), cmd.String("quality"))
	if err != nil {
		return err
	}

	r.logger.Info("resolved", "source", res.Source)
	return r.writePlain("%s\n", res.URL)
}
