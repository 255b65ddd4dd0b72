package config

import (
	"fmt"
	"strings"

	"github.com/loadwatch/loadwatch/internal/errors"
)

// Validate checks the config for problems that would make a collection
// run meaningless or ambiguous.
func (c *Config) Validate() error {
	if len(c.Hosts) == 0 {
		return errors.New(errors.ErrConfig,
			"No hosts configured",
			"Add at least one host under 'hosts:' in your config, or run 'loadwatch init'")
	}

	seen := make(map[string]bool, len(c.Hosts))
	for _, h := range c.Hosts {
		if strings.TrimSpace(h) == "" {
			return errors.New(errors.ErrConfig,
				"Empty host entry in roster",
				"Remove the blank entry from 'hosts:'")
		}
		if seen[h] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Duplicate host '%s' in roster", h),
				"Cache entries are keyed by host, so each host can appear only once")
		}
		seen[h] = true
	}

	if strings.TrimSpace(c.Command) == "" {
		return errors.New(errors.ErrConfig,
			"No status command configured",
			"Set 'command:' (the default is 'uptime')")
	}

	if strings.TrimSpace(c.CacheFile) == "" {
		return errors.New(errors.ErrConfig,
			"No cache file path configured",
			"Set 'cache_file:' to where the snapshot should be written")
	}

	if c.Timeout <= 0 || c.SSHTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"Timeouts must be positive",
			"Use durations like '10s' for 'timeout:' and '5s' for 'ssh_timeout:'")
	}

	return nil
}
