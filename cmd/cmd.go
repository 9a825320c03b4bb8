package main

import (
	"github.com/urfave/cli/v3"
)

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		r.setupCommand(),
		r.linkCommand(),
		r.syncCommand(),
		r.accountCommand(),
		r.exportCommand(),
		r.serveCommand(),
	}
}

func (r *Runner) setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the database and configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path for the generated configuration file",
				Value: "config.toml",
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead of migrating up",
			},
		},
		Action: r.Setup,
	}
}

func (r *Runner) linkCommand() *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Link an Instagram business account via the OAuth flow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "Application user ID to link the account to",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: defaultCallbackTimeout,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
		},
		Action: r.Link,
	}
}

func (r *Runner) syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Fetch the linked account's profile and recent media",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "Application user ID",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of media items to fetch",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the sync result as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent JSON output",
			},
		},
		Action: r.Sync,
	}
}

func (r *Runner) accountCommand() *cli.Command {
	userFlag := &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Application user ID",
		Required: true,
	}

	return &cli.Command{
		Name:  "account",
		Usage: "Inspect and manage a linked account",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show whether the user has an active linked account",
				Flags:  []cli.Flag{userFlag},
				Action: r.Status,
			},
			{
				Name:   "refresh",
				Usage:  "Refresh the account's long-lived access token",
				Flags:  []cli.Flag{userFlag},
				Action: r.Refresh,
			},
			{
				Name:  "unlink",
				Usage: "Unlink the account, optionally deleting stored data",
				Flags: []cli.Flag{
					userFlag,
					&cli.BoolFlag{
						Name:  "delete",
						Usage: "Delete the account row and its media instead of deactivating",
					},
				},
				Action: r.Unlink,
			},
		},
	}
}

func (r *Runner) serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API server",
		Action: r.Serve,
	}
}
