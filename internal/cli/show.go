package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loadwatch/loadwatch/internal/cache"
	"github.com/loadwatch/loadwatch/internal/config"
	"github.com/loadwatch/loadwatch/internal/errors"
	"github.com/loadwatch/loadwatch/internal/ui"
)

var (
	showCacheFlag string
	showHostFlag  string
)

// showCmd prints the current snapshot. The cache file is re-read on
// every invocation; nothing is held in memory between calls.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the latest snapshot from the cache file",
	Long: `Read the cache file and print the latest load averages.

With --host, only that host's value is looked up, streaming the file
instead of loading the whole mapping.

Examples:
  loadwatch show
  loadwatch show --host vm-host-1
  loadwatch show --cache /tmp/loadavg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath, err := resolveCachePath(showCacheFlag)
		if err != nil {
			return err
		}

		if showHostFlag != "" {
			return showOne(cachePath, showHostFlag)
		}
		return showAll(cachePath)
	},
}

// resolveCachePath picks the cache path from the flag or the config.
func resolveCachePath(flag string) (string, error) {
	if flag != "" {
		return config.ExpandPath(flag), nil
	}
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return "", err
	}
	return cfg.CacheFile, nil
}

// showOne looks up a single host without materializing the mapping.
func showOne(cachePath, host string) error {
	value, found, err := cache.Lookup(cachePath, host)
	if err != nil {
		return err
	}
	if !found {
		return errors.New(errors.ErrCache,
			fmt.Sprintf("Host '%s' not in the snapshot", host),
			"Check the roster in your config; the cache only holds configured hosts")
	}
	if value == "" {
		fmt.Printf("%s: unreachable last run\n", host)
		return nil
	}
	fmt.Printf("%s: %s\n", host, value)
	return nil
}

// showAll renders the whole snapshot as a table.
func showAll(cachePath string) error {
	entries, err := cache.ReadFile(cachePath)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		value := e.Value
		if e.Failed() {
			value = "unreachable"
			if ui.ColorEnabled() {
				value = ui.StatusStyle(true).Render(value)
			}
		} else if ui.ColorEnabled() {
			value = ui.StatusStyle(false).Render(value)
		}
		rows = append(rows, []string{e.Host, value})
	}

	fmt.Print(ui.RenderSimpleTable(
		[]ui.TableColumn{
			{Title: "HOST", Width: 12},
			{Title: "LOAD AVERAGE (1m, 5m, 15m)", Width: 20},
		},
		rows,
	))

	if info, err := os.Stat(cachePath); err == nil {
		fmt.Printf("\nSnapshot written %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func init() {
	showCmd.Flags().StringVar(&showCacheFlag, "cache", "", "override the cache file path")
	showCmd.Flags().StringVar(&showHostFlag, "host", "", "look up a single host")

	rootCmd.AddCommand(showCmd)
}
