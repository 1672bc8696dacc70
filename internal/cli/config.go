package cli

import (
	"os"
	"path/filepath"

	"github.com/toyz/scopegen/internal/config"
)

// Config holds the configuration for one CLI run
type Config struct {
	// Patterns are the package patterns to load, ./... when empty
	Patterns []string

	// Dir is the directory patterns are resolved in, the working directory when empty
	Dir string

	// ConfigFile is an optional scopegen.yaml; flag options are merged over it
	ConfigFile string

	// Options carries the options set on the command line
	Options *config.Options

	// DryRun resolves and renders without writing files
	DryRun bool

	// BuildTags are passed to the go command while loading
	BuildTags []string

	// Env overrides the environment of the go command
	Env []string
}

// patterns returns the configured patterns or the default
func (c Config) patterns() []string {
	if len(c.Patterns) == 0 {
		return []string{"./..."}
	}
	return c.Patterns
}

// options loads the config file and merges the command line options over it
func (c Config) options() (*config.Options, error) {
	path := c.ConfigFile
	if path == "" && c.Dir != "" {
		if candidate := filepath.Join(c.Dir, config.DefaultFileName); fileExists(candidate) {
			path = candidate
		}
	}
	opts, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	opts.Merge(c.Options)
	if err := opts.Compile(); err != nil {
		return nil, err
	}
	return opts, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
