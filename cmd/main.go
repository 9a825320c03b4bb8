package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/igsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "igsync",
		Usage:    "Link Instagram business accounts and sync their profile & media",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrAccountNotFound) {
			logger.Warn("no linked account", "err", err)
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
