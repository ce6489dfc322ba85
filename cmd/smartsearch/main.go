// Command smartsearch serves smart search sessions: typed, spoken and
// photographed queries submitted to a search backend.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/smartsearch/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    serviceName,
		Usage:   "Smart search input service: typing, voice and image queries",
		Version: version.GetShortVersion(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP session host",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to config.yml (default: search ./config.yml, ./cmd/smartsearch/config.yml, ...)",
						EnvVars: []string{"SMARTSEARCH_CONFIG"},
					},
					&cli.StringFlag{
						Name:    "env-file",
						Aliases: []string{"e"},
						Usage:   "Path to a .env file with provider credentials",
						EnvVars: []string{"SMARTSEARCH_ENV_FILE"},
					},
					&cli.StringFlag{
						Name:    "log-level",
						Aliases: []string{"l"},
						Usage:   "Override logging.level (debug, info, warn, error)",
					},
				},
			},
			{
				Name:   "check-config",
				Usage:  "Load and validate the configuration, then report provider credentials",
				Action: checkConfigCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config.yml"},
					&cli.StringFlag{Name: "env-file", Aliases: []string{"e"}, Usage: "Path to a .env file"},
				},
			},
		},
	}
}
