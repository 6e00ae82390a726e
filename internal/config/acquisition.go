package config

import (
	"github.com/vmunix/reqarr/internal/acquisition"
)

// AcquisitionSettings converts the configured instances for the dispatch engine.
func (c *Config) AcquisitionSettings() acquisition.Settings {
	var s acquisition.Settings
	for _, r := range c.Radarr {
		s.Radarr = append(s.Radarr, acquisition.RadarrInstance{
			ID:                  r.ID,
			Name:                r.Name,
			URL:                 r.Address(),
			APIKey:              r.APIKey,
			IsDefault:           r.IsDefault,
			Is4K:                r.Is4K,
			ActiveProfileID:     r.ActiveProfileID,
			ActiveDirectory:     r.ActiveDirectory,
			MinimumAvailability: r.MinimumAvailability,
			PreventSearch:       r.PreventSearch,
		})
	}
	for _, so := range c.Sonarr {
		s.Sonarr = append(s.Sonarr, acquisition.SonarrInstance{
			ID:                           so.ID,
			Name:                         so.Name,
			URL:                          so.Address(),
			APIKey:                       so.APIKey,
			IsDefault:                    so.IsDefault,
			Is4K:                         so.Is4K,
			ActiveProfileID:              so.ActiveProfileID,
			ActiveDirectory:              so.ActiveDirectory,
			ActiveLanguageProfileID:      so.ActiveLanguageProfileID,
			ActiveAnimeProfileID:         so.ActiveAnimeProfileID,
			ActiveAnimeDirectory:         so.ActiveAnimeDirectory,
			ActiveAnimeLanguageProfileID: so.ActiveAnimeLanguageProfileID,
			EnableSeasonFolders:          so.EnableSeasonFolders,
			PreventSearch:                so.PreventSearch,
		})
	}
	return s
}

// BreakerSettings returns the backend circuit breaker tuning, with defaults
// for anything left unset.
func (c *Config) BreakerSettings() acquisition.BreakerConfig {
	b := acquisition.DefaultBreakerConfig()
	cfg := c.Dispatch.Breaker
	if cfg.FailureThreshold > 0 {
		b.FailureThreshold = cfg.FailureThreshold
	}
	if cfg.MaxRequests > 0 {
		b.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		b.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		b.Timeout = cfg.Timeout
	}
	return b
}
