package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
)

// setupCommand writes a starter configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a starter config.toml with the default pools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// Setup creates a config file from the embedded template and validates it loads.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("created config does not parse: %w", err)
	}

	r.logger.Info("config file created", "path", configPath)

	pools := config.Pools
	total := len(pools.Video) + len(pools.Search) + len(pools.Comments) + len(pools.Channel) + len(pools.Playlist)
	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlain("Mirror endpoints: %d, stream resolvers: %d\n", total, len(config.Resolvers.Stream))
	r.writePlainln("Next steps:")
	r.writePlain("1. Adjust the pools in %s for your deployment\n", configPath)
	r.writePlain("2. Run 'sennin probe' to check endpoint health\n")
	r.writePlain("3. Run 'sennin serve' to start the front-end\n")

	return nil
}
