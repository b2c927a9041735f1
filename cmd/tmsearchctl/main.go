package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/DavidZachariahWC/trademarks-public/internal/version"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tmsearchctl: %+v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "tmsearchctl",
		Usage:   "Operate a tmsearch deployment: migrations, ad hoc queries, catalogue listings",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "Postgres connection string; defaults to database.dsn from the env config",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Config environment to read when --dsn is not set",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Manage the record store schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "Apply all pending migrations", Action: migrateUpCommand},
					{Name: "down", Usage: "Roll back every migration", Action: migrateDownCommand},
					{Name: "version", Usage: "Print the applied schema version", Action: migrateVersionCommand},
				},
			},
			{
				Name:   "query",
				Usage:  "Run a filter tree against the record store and print the page as JSON",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tree",
						Aliases:  []string{"t"},
						Usage:    "Path to a filter tree JSON file, or - for stdin",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number, starting at 1",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "per-page",
						Usage: "Records per page",
						Value: 20,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Deadline for the whole query",
						Value: defaultQueryTimeout,
					},
				},
			},
			{
				Name:   "strategies",
				Usage:  "List registered strategies",
				Action: strategiesCommand,
			},
			{
				Name:   "classes",
				Usage:  "List coordinated class groups",
				Action: classesCommand,
			},
		},
	}
}
