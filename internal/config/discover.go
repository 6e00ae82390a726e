package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the environment variable that pins the config file.
const EnvConfig = "REQARR_CONFIG"

// ErrNotFound is returned by Discover when no candidate file exists.
var ErrNotFound = errors.New("no config file found")

// Location is a discovered config file and where the path came from.
type Location struct {
	Path   string
	Source string // "env", "cwd", "user" or "system"
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%s)", l.Path, l.Source)
}

// DefaultPath is the per-user config file, under $XDG_CONFIG_HOME or
// ~/.config.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "reqarr.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "reqarr", "config.toml")
}

// Candidates lists the places Discover looks, most specific first.
// $REQARR_CONFIG is not included; when set it is the only place looked.
func Candidates() []Location {
	return []Location{
		{Path: "reqarr.toml", Source: "cwd"},
		{Path: DefaultPath(), Source: "user"},
		{Path: filepath.Join("/etc", "reqarr", "config.toml"), Source: "system"},
	}
}

// Discover returns the config file to load. A set $REQARR_CONFIG must name
// an existing file; otherwise the first existing candidate wins.
func Discover() (Location, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err != nil {
			return Location{}, fmt.Errorf("%s=%s: %w", EnvConfig, p, err)
		}
		return Location{Path: p, Source: "env"}, nil
	}

	candidates := Candidates()
	for _, c := range candidates {
		if info, err := os.Stat(c.Path); err == nil && !info.IsDir() {
			return c, nil
		}
	}

	searched := make([]string, len(candidates))
	for i, c := range candidates {
		searched[i] = c.Path
	}
	return Location{}, fmt.Errorf("%w (searched %s; set %s to override)", ErrNotFound, strings.Join(searched, ", "), EnvConfig)
}
