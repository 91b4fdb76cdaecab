package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/services"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/upstream"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	pools := upstream.NewPoolsFromConfig(config.Pools)
	svc := services.NewAggregatorFromConfig(config, logger)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Svc:    svc,
		Pools:  pools,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "sennin",
		Usage:    "Resilient multi-source video viewer front-end",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
