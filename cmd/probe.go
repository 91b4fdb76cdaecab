package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/formatter"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/tasks"
)

// probeCommand sweeps every configured endpoint and reports health
func probeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Check every configured endpoint and report health",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv",
				Value:   formatter.FormatText,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file instead of stdout",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent probe workers",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Requests per second across all workers",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress per-endpoint progress logging",
			},
		},
		Action: r.Probe,
	}
}

// Probe runs a pool sweep and renders the report.
func (r *Runner) Probe(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.ProbeOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Timeout:    r.config.Probe.Timeout(),
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Probe.Workers
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = r.config.Probe.RateLimit
	}

	var prog chan tasks.ProgressUpdate
	var wg sync.WaitGroup
	if !cmd.Bool("quiet") {
		prog = make(chan tasks.ProgressUpdate, 50)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for update := range prog {
				r.logger.Info(update.Message, "phase", update.Phase)
			}
		}()
	}

	started := time.Now()
	report, err := r.engine.Probe(ctx, prog, opts)
	if prog != nil {
		close(prog)
		wg.Wait()
	}
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	r.logger.Info("probe finished",
		"endpoints", len(report.Results),
		"healthy", report.Healthy,
		"unhealthy", report.Unhealthy,
		"elapsed", time.Since(started).Round(time.Millisecond))

	format := cmd.String("format")
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteReport(report, format, path); err != nil {
			return err
		}
		return r.writePlain("Report written to %s\n", path)
	}

	data, err := formatter.Render(report, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}
