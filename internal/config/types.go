package config

import (
	"os"
	"path/filepath"
	"time"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .loadwatch.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Hosts is the ordered roster of hosts to poll. Entries can be
	// hostnames, FQDNs, user@host, or SSH config aliases. Order is
	// preserved in the cache file.
	Hosts []string `yaml:"hosts" mapstructure:"hosts"`

	// Command is the status command run on every host.
	Command string `yaml:"command" mapstructure:"command"`

	// CacheFile is where the snapshot is written. Supports ~ expansion.
	CacheFile string `yaml:"cache_file" mapstructure:"cache_file"`

	// Timeout bounds one host's collection attempt, local or remote.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// SSHTimeout bounds the TCP dial when connecting to a remote host.
	SSHTimeout time.Duration `yaml:"ssh_timeout" mapstructure:"ssh_timeout"`

	// Parallel polls hosts concurrently (one goroutine per host)
	// instead of in roster order. The snapshot still waits for every
	// host before it is written.
	Parallel bool `yaml:"parallel" mapstructure:"parallel"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:    CurrentConfigVersion,
		Hosts:      []string{},
		Command:    "uptime",
		CacheFile:  DefaultCachePath(),
		Timeout:    10 * time.Second,
		SSHTimeout: 5 * time.Second,
	}
}

// DefaultCachePath returns the default location of the cache file.
func DefaultCachePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "loadwatch", "loadavg")
	}
	return filepath.Join(os.TempDir(), "loadwatch-loadavg")
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
