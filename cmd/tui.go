package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/tasks"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/ui"
)

// tuiCommand launches the endpoint health dashboard
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive endpoint health dashboard",
		Action: r.TUI,
	}
}

// TUI launches the interactive terminal dashboard over the probe engine.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: probe engine not initialized", shared.ErrMissingConfig)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/sennin-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts := tasks.ProbeOpts{
		NumWorkers: r.config.Probe.Workers,
		RateLimit:  r.config.Probe.RateLimit,
		Timeout:    r.config.Probe.Timeout(),
	}

	model := ui.NewModel(ctx, r.engine, opts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
