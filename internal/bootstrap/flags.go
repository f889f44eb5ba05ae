// Package bootstrap wires flags, configuration and logging around the release command.
package bootstrap

import (
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via Command.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Run from this directory instead of the current one (the repository root is found from it)",
		},
		&urfavecli.BoolFlag{
			Name:  "dry-run",
			Usage: "Check preconditions and print the release plan without running it",
		},
		&urfavecli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Echo the output of every delegated command",
		},
		&urfavecli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable coloured output",
		},
		&urfavecli.BoolFlag{
			Name:  "git-config",
			Usage: "Also read release.* keys from the repository git config (runs git config before the release)",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=release.key=value",
		},
	}
}
