package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/loadwatch/loadwatch/internal/cache"
	"github.com/loadwatch/loadwatch/internal/config"
	"github.com/loadwatch/loadwatch/internal/errors"
	"github.com/loadwatch/loadwatch/internal/logger"
	"github.com/loadwatch/loadwatch/internal/poll"
)

var (
	collectCacheFlag    string
	collectParallelFlag bool
	collectTimeoutFlag  string
	collectQuietFlag    bool
)

// collectCmd runs one collection pass over the roster.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Poll the roster and write a fresh snapshot",
	Long: `Poll every configured host once and atomically replace the cache file
with the new snapshot.

Hosts that can't be reached are recorded with an empty value; they
don't fail the run. The exit status is non-zero only when the cache
file itself can't be written (exit code 2), since that means no
snapshot was produced at all. There are no retries within a run: the
next scheduled invocation is the retry.

Examples:
  loadwatch collect
  loadwatch collect --parallel
  loadwatch collect --cache /tmp/loadavg --timeout 5s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if collectCacheFlag != "" {
			cfg.CacheFile = config.ExpandPath(collectCacheFlag)
		}
		if collectParallelFlag {
			cfg.Parallel = true
		}
		if collectTimeoutFlag != "" {
			timeout, err := time.ParseDuration(collectTimeoutFlag)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					fmt.Sprintf("'%s' doesn't look like a valid timeout", collectTimeoutFlag),
					"Try something like 5s, 2m, or 500ms.")
			}
			cfg.Timeout = timeout
		}

		out := io.Writer(os.Stdout)
		if collectQuietFlag {
			out = io.Discard
		}
		return runCollect(cfg, nil, out)
	},
}

// runCollect performs one full collection pass: poll every host, then
// atomically replace the cache file. Split from the cobra handler so
// tests can substitute an executor.
func runCollect(cfg *config.Config, exec poll.Executor, out io.Writer) error {
	poller := poll.New(cfg, exec, logger.NewEnvLogger("[poll]"))
	snap := poller.Poll(context.Background())

	// An unwritable cache is the one fatal outcome of a run; give it a
	// distinct exit code so schedulers can tell it from config errors.
	if err := cache.Write(cfg.CacheFile, snap); err != nil {
		return errors.ExitWith(err, 2)
	}

	failed := snap.FailedCount()
	if failed > 0 {
		fmt.Fprintf(out, "Collected %d hosts (%d unreachable) -> %s\n",
			snap.Len(), failed, cfg.CacheFile)
	} else {
		fmt.Fprintf(out, "Collected %d hosts -> %s\n", snap.Len(), cfg.CacheFile)
	}
	return nil
}

func init() {
	collectCmd.Flags().StringVar(&collectCacheFlag, "cache", "", "override the cache file path")
	collectCmd.Flags().BoolVar(&collectParallelFlag, "parallel", false, "poll hosts concurrently")
	collectCmd.Flags().StringVar(&collectTimeoutFlag, "timeout", "", "per-host timeout (e.g., 5s, 2m)")
	collectCmd.Flags().BoolVarP(&collectQuietFlag, "quiet", "q", false, "suppress the summary line")

	rootCmd.AddCommand(collectCmd)
}
