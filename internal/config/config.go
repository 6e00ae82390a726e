// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Admin         AdminConfig         `toml:"admin"`
	TMDB          TMDBConfig          `toml:"tmdb"`
	Radarr        []RadarrConfig      `toml:"radarr"`
	Sonarr        []SonarrConfig      `toml:"sonarr"`
	Dispatch      DispatchConfig      `toml:"dispatch"`
	Notifications NotificationsConfig `toml:"notifications"`
	Events        EventsConfig        `toml:"events"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AdminConfig seeds the first administrator when the database has no users.
type AdminConfig struct {
	Email  string `toml:"email"`
	APIKey string `toml:"api_key"`
}

type TMDBConfig struct {
	APIKey        string        `toml:"api_key"`
	BaseURL       string        `toml:"base_url"`
	CacheTTL      time.Duration `toml:"cache_ttl"`
	RetryAttempts uint          `toml:"retry_attempts"`
	RetryDelay    time.Duration `toml:"retry_delay"`
}

// ServiceConfig is the connection part shared by Radarr and Sonarr instances.
// URL wins over host/port/ssl/base_url when both are set.
type ServiceConfig struct {
	ID        int64  `toml:"id"`
	Name      string `toml:"name"`
	URL       string `toml:"url"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	SSL       bool   `toml:"ssl"`
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	IsDefault bool   `toml:"is_default"`
	Is4K      bool   `toml:"is_4k"`
}

// Address returns the instance's base URL.
func (s ServiceConfig) Address() string {
	if s.URL != "" {
		return s.URL
	}
	scheme := "http"
	if s.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, s.Host, s.Port, s.BaseURL)
}

type RadarrConfig struct {
	ServiceConfig
	ActiveProfileID     int64  `toml:"active_profile_id"`
	ActiveDirectory     string `toml:"active_directory"`
	MinimumAvailability string `toml:"minimum_availability"`
	PreventSearch       bool   `toml:"prevent_search"`
}

type SonarrConfig struct {
	ServiceConfig
	ActiveProfileID              int64  `toml:"active_profile_id"`
	ActiveDirectory              string `toml:"active_directory"`
	ActiveLanguageProfileID      int64  `toml:"active_language_profile_id"`
	ActiveAnimeProfileID         int64  `toml:"active_anime_profile_id"`
	ActiveAnimeDirectory         string `toml:"active_anime_directory"`
	ActiveAnimeLanguageProfileID int64  `toml:"active_anime_language_profile_id"`
	EnableSeasonFolders          bool   `toml:"enable_season_folders"`
	PreventSearch                bool   `toml:"prevent_search"`
}

type DispatchConfig struct {
	Workers        int           `toml:"workers"`
	QueueSize      int           `toml:"queue_size"`
	BackendTimeout time.Duration `toml:"backend_timeout"`
	Breaker        BreakerConfig `toml:"breaker"`
}

type BreakerConfig struct {
	FailureThreshold uint32        `toml:"failure_threshold"`
	MaxRequests      uint32        `toml:"max_requests"`
	Interval         time.Duration `toml:"interval"`
	Timeout          time.Duration `toml:"timeout"`
}

type NotificationsConfig struct {
	// Types lists the notification kinds to deliver; empty means all.
	Types   []string       `toml:"types"`
	Log     bool           `toml:"log"`
	Webhook *WebhookConfig `toml:"webhook"`
}

type WebhookConfig struct {
	URL        string   `toml:"url"`
	AuthHeader string   `toml:"auth_header"`
	Types      []string `toml:"types"`
}

type EventsConfig struct {
	Retention     time.Duration `toml:"retention"`
	PruneInterval time.Duration `toml:"prune_interval"`
}

// Load reads, parses and validates the configuration file.
// Unresolved environment variables and validation failures are returned
// as a *ConfigError.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if probs := cfg.Validate(); len(probs) > 0 {
		return nil, &ConfigError{Path: path, Problems: probs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file and applies
// defaults. Environment variables must still resolve.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5055
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/reqarr.db"
	}
	if c.TMDB.CacheTTL == 0 {
		c.TMDB.CacheTTL = time.Hour
	}
	if c.TMDB.RetryAttempts == 0 {
		c.TMDB.RetryAttempts = 3
	}
	if c.TMDB.RetryDelay == 0 {
		c.TMDB.RetryDelay = 500 * time.Millisecond
	}
	if c.Dispatch.Workers == 0 {
		c.Dispatch.Workers = 4
	}
	if c.Dispatch.QueueSize == 0 {
		c.Dispatch.QueueSize = 256
	}
	if c.Dispatch.BackendTimeout == 0 {
		c.Dispatch.BackendTimeout = 30 * time.Second
	}
	if c.Events.Retention == 0 {
		c.Events.Retention = 30 * 24 * time.Hour
	}
	if c.Events.PruneInterval == 0 {
		c.Events.PruneInterval = time.Hour
	}
	for i := range c.Radarr {
		if c.Radarr[i].MinimumAvailability == "" {
			c.Radarr[i].MinimumAvailability = "released"
		}
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces environment references and returns the names
// of those that could not be resolved. Unresolved references are left as is.
// Empty values count as unset for the :- and :? forms.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, name+": "+arg)
				return match
			}
			return value
		}
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
