// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// runCommand handles the full setlist-to-playlist pipeline
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Build playlists from the configured concert list",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Path to concerts CSV (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Match songs but do not create or modify playlists",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Create playlists as public",
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Minimum title similarity for a match (0-1)",
			},
			&cli.IntFlag{
				Name:  "top-tracks",
				Usage: "Top tracks per opener with no recorded songs (0 disables)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the local match cache and run history",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write a run report to this path",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: txt, csv, or md",
				Value: "txt",
			},
		},
		Action: r.Run,
	}
}

// eventsCommand handles concert list operations
func eventsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Concert list operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Read and print the configured concert list",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Path to concerts CSV (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.EventsList,
			},
			{
				Name:  "validate",
				Usage: "Check the concert list for malformed rows",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Path to concerts CSV (overrides config)",
					},
				},
				Action: r.EventsValidate,
			},
		},
	}
}

// setlistCommand handles setlist database lookups
func setlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setlist",
		Usage: "Setlist database operations",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search setlists for an artist and date",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "artist",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "date",
						Aliases:  []string{"d"},
						Usage:    "Concert date (YYYY-MM-DD)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SetlistSearch,
			},
		},
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify authentication and playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "playlists",
				Usage: "List Spotify playlists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyPlaylists,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a config.toml from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand handles run history operations
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past pipeline runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist building.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist building",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Path to concerts CSV (overrides config)",
			},
		},
		Action: r.TUI,
	}
}
