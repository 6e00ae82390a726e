// internal/config/load_test.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalConfig = `
[tmdb]
api_key = "tmdb-key"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoad_Valid(t *testing.T) {
	cfgPath := writeConfig(t, minimalConfig+`
[server]
port = 8080
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("REQARR_MISSING_KEY")
	cfgPath := writeConfig(t, minimalConfig+`
[[radarr]]
id = 1
url = "http://localhost:7878"
api_key = "${REQARR_MISSING_KEY}"
active_profile_id = 1
active_directory = "/movies"
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if !strings.Contains(err.Error(), "REQARR_MISSING_KEY") {
		t.Errorf("expected REQARR_MISSING_KEY in error, got %v", err)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	cfgPath := writeConfig(t, minimalConfig+`
[server]
port = 99999
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("expected server.port in error, got %v", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	cfgPath := writeConfig(t, "[server\nport = 1")

	_, err := Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfgPath := writeConfig(t, minimalConfig+`
[[radarr]]
id = 1
url = "http://localhost:7878"
api_key = "k"
active_profile_id = 1
active_directory = "/movies"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 5055 {
		t.Errorf("expected default port 5055, got %d", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Server.LogLevel)
	}
	if cfg.Database.Path != "./data/reqarr.db" {
		t.Errorf("expected default database path, got %q", cfg.Database.Path)
	}
	if cfg.Dispatch.Workers != 4 || cfg.Dispatch.QueueSize != 256 {
		t.Errorf("expected dispatch defaults 4/256, got %d/%d", cfg.Dispatch.Workers, cfg.Dispatch.QueueSize)
	}
	if cfg.Events.Retention != 720*time.Hour {
		t.Errorf("expected 30 day event retention, got %v", cfg.Events.Retention)
	}
	if cfg.Radarr[0].MinimumAvailability != "released" {
		t.Errorf("expected minimum availability released, got %q", cfg.Radarr[0].MinimumAvailability)
	}
}

func TestLoad_Durations(t *testing.T) {
	cfgPath := writeConfig(t, minimalConfig+`
cache_ttl = "15m"

[dispatch]
backend_timeout = "5s"

[dispatch.breaker]
failure_threshold = 2
timeout = "1m"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TMDB.CacheTTL != 15*time.Minute {
		t.Errorf("expected cache ttl 15m, got %v", cfg.TMDB.CacheTTL)
	}
	if cfg.Dispatch.BackendTimeout != 5*time.Second {
		t.Errorf("expected backend timeout 5s, got %v", cfg.Dispatch.BackendTimeout)
	}
	b := cfg.BreakerSettings()
	if b.FailureThreshold != 2 || b.Timeout != time.Minute {
		t.Errorf("expected breaker 2/1m, got %d/%v", b.FailureThreshold, b.Timeout)
	}
	if b.MaxRequests != 1 {
		t.Errorf("expected default max requests 1, got %d", b.MaxRequests)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
