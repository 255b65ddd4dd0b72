package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loadwatch/loadwatch/internal/config"
	"github.com/loadwatch/loadwatch/internal/errors"
)

var (
	initHostsFlag string
	initCacheFlag string
	initForceFlag bool
)

// initCmd creates a starter .loadwatch.yaml.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .loadwatch.yaml configuration",
	Long: `Initialize a new loadwatch configuration file in the current directory.

Prompts for the host roster and cache path; pass --hosts to skip the
prompts (useful for scripted setup).

Examples:
  loadwatch init
  loadwatch init --hosts vm-host-1,vm-host-2
  loadwatch init --hosts vm-host-1 --cache /var/cache/loadwatch/loadavg --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initHostsFlag, initCacheFlag, initForceFlag)
	},
}

// initFile mirrors config.Config with string durations so the written
// YAML reads as '10s' rather than nanosecond integers.
type initFile struct {
	Version    int      `yaml:"version"`
	Hosts      []string `yaml:"hosts"`
	Command    string   `yaml:"command"`
	CacheFile  string   `yaml:"cache_file"`
	Timeout    string   `yaml:"timeout"`
	SSHTimeout string   `yaml:"ssh_timeout"`
	Parallel   bool     `yaml:"parallel"`
}

func initCommand(hostsFlag, cacheFlag string, force bool) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		if hostsFlag != "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	hostsInput := hostsFlag
	cacheInput := cacheFlag
	if cacheInput == "" {
		cacheInput = config.DefaultCachePath()
	}

	// Prompt only when the roster wasn't given on the command line.
	if hostsInput == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Hosts to poll").
					Description("Comma-separated hostnames or SSH aliases, in the order they should appear in the cache").
					Placeholder("vm-host-1, vm-host-2, workstation").
					Value(&hostsInput),
				huh.NewInput().
					Title("Cache file").
					Description("Where snapshots are written").
					Value(&cacheInput),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --hosts and --cache to skip the prompts")
		}
	}

	hosts := splitHosts(hostsInput)

	defaults := config.DefaultConfig()
	content := &initFile{
		Version:    config.CurrentConfigVersion,
		Hosts:      hosts,
		Command:    defaults.Command,
		CacheFile:  cacheInput,
		Timeout:    defaults.Timeout.String(),
		SSHTimeout: defaults.SSHTimeout.String(),
		Parallel:   false,
	}

	// Validate before writing so a bad roster fails here, not on the
	// first collect.
	check := *defaults
	check.Hosts = hosts
	check.CacheFile = cacheInput
	if err := check.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(content)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config YAML", "")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+configPath,
			"Check permissions on the current directory")
	}

	fmt.Printf("Wrote %s with %d host(s). Run 'loadwatch collect' to take the first snapshot.\n",
		configPath, len(hosts))
	return nil
}

// splitHosts parses a comma-separated roster, dropping blanks.
func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func init() {
	initCmd.Flags().StringVar(&initHostsFlag, "hosts", "", "comma-separated host roster (skips prompts)")
	initCmd.Flags().StringVar(&initCacheFlag, "cache", "", "cache file path")
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "overwrite existing config")

	rootCmd.AddCommand(initCmd)
}
