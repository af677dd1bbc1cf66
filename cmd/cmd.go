// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, catalogCommand, refreshCommand, dedupeCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configFlag is shared by every command that reads config.toml
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func artistFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "artist",
		Aliases:  []string{"a"},
		Usage:    "Artist name to reconcile",
		Required: true,
	}
}

// setupCommand initializes config and the metadata cache database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize config and metadata cache, run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// catalogCommand handles reconciled catalog operations
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Build and export the reconciled catalog view",
		Commands: []*cli.Command{
			{
				Name:  "view",
				Usage: "Build the reconciled catalog and print it",
				Flags: []cli.Flag{
					configFlag(),
					artistFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.CatalogView,
			},
			{
				Name:  "export",
				Usage: "Build the catalog and write the Label Copy CSV",
				Flags: []cli.Flag{
					configFlag(),
					artistFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: label_copy_<artist>_<date>.csv)",
					},
				},
				Action: r.CatalogExport,
			},
		},
	}
}

// refreshCommand handles metadata cache refreshes
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Refresh cached external metadata",
		Commands: []*cli.Command{
			{
				Name:  "one",
				Usage: "Refresh a single release by UPC",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "upc"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "direct",
						Usage: "Fall back to a direct uncached lookup when the refresh fails",
					},
				},
				Action: r.RefreshOne,
			},
			{
				Name:  "all",
				Usage: "Refresh every release in an artist's import history",
				Flags: []cli.Flag{
					configFlag(),
					artistFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent refresh workers",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "External requests per second",
					},
				},
				Action: r.RefreshAll,
			},
		},
	}
}

// dedupeCommand handles duplicate detection and confirmed merges
func dedupeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dedupe",
		Usage: "Detect and merge duplicate track entries",
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "Detect duplicate track groups without merging",
				Flags: []cli.Flag{
					configFlag(),
					artistFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.DedupeScan,
			},
			{
				Name:  "merge",
				Usage: "Merge confirmed duplicate groups",
				Flags: []cli.Flag{
					configFlag(),
					artistFlag(),
					&cli.StringFlag{
						Name:    "groups",
						Aliases: []string{"g"},
						Usage:   "Comma-separated group IDs to merge (from 'dedupe scan')",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Merge every detected group",
					},
				},
				Action: r.DedupeMerge,
			},
		},
	}
}
