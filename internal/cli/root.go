// Package cli wires the loadwatch commands together. Each subcommand
// lives in its own file; this file owns the root command and process
// exit handling.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loadwatch/loadwatch/internal/config"
	"github.com/loadwatch/loadwatch/internal/errors"
)

// configFlag is the --config persistent flag shared by all commands.
var configFlag string

var rootCmd = &cobra.Command{
	Use:   "loadwatch",
	Short: "Collect load averages from a roster of hosts",
	Long: `loadwatch polls a fixed roster of hosts for their load averages and
writes the results to a single cache file for other tooling to read.

Hosts are polled over SSH, except the machine loadwatch runs on, which
is polled with a local subprocess. One unreachable host never blocks
the rest: its entry is recorded with an empty value and the run
continues. The cache file is replaced atomically, so readers always
see a complete snapshot.

Run 'loadwatch collect' from cron or a systemd timer; read the results
with 'loadwatch show' or 'loadwatch watch'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
}

// Execute runs the root command and maps errors to process exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		os.Exit(1)
	}
}

// loadConfig finds and loads the config file, honoring --config.
func loadConfig() (*config.Config, error) {
	path, err := config.Find(configFlag)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'loadwatch init' to create one, or pass --config")
	}
	return config.Load(path)
}
