package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vmunix/reqarr/internal/notify"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validAvailability = map[string]bool{
	"announced": true, "inCinemas": true, "released": true, "preDB": true,
}

// Validate checks the configuration and returns every problem found, in
// file order. An empty result means the configuration is usable.
func (c *Config) Validate() []Problem {
	var probs []Problem

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		probs = append(probs, newProblem("server", "port", "must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		probs = append(probs, newProblem("server", "log_level", "must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Admin.APIKey != "" && c.Admin.Email == "" {
		probs = append(probs, newProblem("admin", "email", "required when admin.api_key is set"))
	}

	if c.TMDB.APIKey == "" {
		probs = append(probs, newProblem("tmdb", "api_key", "required"))
	}

	radarrIDs := map[int64]bool{}
	for i, r := range c.Radarr {
		at := instance("radarr", i, r.ServiceConfig)
		probs = append(probs, validateService(at, r.ServiceConfig, radarrIDs)...)
		if r.ActiveProfileID == 0 {
			probs = append(probs, at("active_profile_id", "required"))
		}
		if r.ActiveDirectory == "" {
			probs = append(probs, at("active_directory", "required"))
		}
		if r.MinimumAvailability != "" && !validAvailability[r.MinimumAvailability] {
			probs = append(probs, at("minimum_availability", "unknown value %q", r.MinimumAvailability))
		}
	}
	probs = append(probs, validateDefaults("radarr", services(c.Radarr, func(r RadarrConfig) ServiceConfig { return r.ServiceConfig }))...)

	sonarrIDs := map[int64]bool{}
	for i, s := range c.Sonarr {
		at := instance("sonarr", i, s.ServiceConfig)
		probs = append(probs, validateService(at, s.ServiceConfig, sonarrIDs)...)
		if s.ActiveProfileID == 0 {
			probs = append(probs, at("active_profile_id", "required"))
		}
		if s.ActiveDirectory == "" {
			probs = append(probs, at("active_directory", "required"))
		}
	}
	probs = append(probs, validateDefaults("sonarr", services(c.Sonarr, func(s SonarrConfig) ServiceConfig { return s.ServiceConfig }))...)

	if c.Dispatch.Workers < 0 {
		probs = append(probs, newProblem("dispatch", "workers", "must not be negative, got %d", c.Dispatch.Workers))
	}
	if c.Dispatch.QueueSize < 0 {
		probs = append(probs, newProblem("dispatch", "queue_size", "must not be negative, got %d", c.Dispatch.QueueSize))
	}

	if _, err := notify.ParseKinds(c.Notifications.Types); err != nil {
		probs = append(probs, newProblem("notifications", "types", "%v", err))
	}
	if w := c.Notifications.Webhook; w != nil {
		if w.URL == "" {
			probs = append(probs, newProblem("notifications", "webhook.url", "required when webhook is configured"))
		} else if _, err := url.ParseRequestURI(w.URL); err != nil {
			probs = append(probs, newProblem("notifications", "webhook.url", "invalid URL %q", w.URL))
		}
		if _, err := notify.ParseKinds(w.Types); err != nil {
			probs = append(probs, newProblem("notifications", "webhook.types", "%v", err))
		}
	}

	return probs
}

// instance returns a constructor for problems on entry i of an array table.
func instance(section string, i int, s ServiceConfig) func(field, format string, args ...any) Problem {
	return func(field, format string, args ...any) Problem {
		return Problem{Section: section, Index: i, Name: s.Name, Field: field, Message: fmt.Sprintf(format, args...)}
	}
}

func validateService(at func(field, format string, args ...any) Problem, s ServiceConfig, seen map[int64]bool) []Problem {
	var probs []Problem
	if seen[s.ID] {
		probs = append(probs, at("id", "duplicate id %d", s.ID))
	}
	seen[s.ID] = true
	if s.URL == "" && s.Host == "" {
		probs = append(probs, at("", "url or host required"))
	}
	if s.URL == "" && s.Host != "" && (s.Port < 1 || s.Port > 65535) {
		probs = append(probs, at("port", "must be between 1 and 65535, got %d", s.Port))
	}
	if s.URL != "" {
		if _, err := url.ParseRequestURI(s.URL); err != nil {
			probs = append(probs, at("url", "invalid URL %q", s.URL))
		}
	}
	if s.APIKey == "" {
		probs = append(probs, at("api_key", "required"))
	}
	return probs
}

func services[T any](instances []T, svc func(T) ServiceConfig) []ServiceConfig {
	out := make([]ServiceConfig, 0, len(instances))
	for _, inst := range instances {
		out = append(out, svc(inst))
	}
	return out
}

// validateDefaults allows at most one default instance per variant.
func validateDefaults(section string, services []ServiceConfig) []Problem {
	var probs []Problem
	var std, fourK []string
	for _, s := range services {
		if !s.IsDefault {
			continue
		}
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("id %d", s.ID)
		}
		if s.Is4K {
			fourK = append(fourK, label)
		} else {
			std = append(std, label)
		}
	}
	if len(std) > 1 {
		probs = append(probs, newProblem(section, "", "more than one default non-4k instance: %s", strings.Join(std, ", ")))
	}
	if len(fourK) > 1 {
		probs = append(probs, newProblem(section, "", "more than one default 4k instance: %s", strings.Join(fourK, ", ")))
	}
	return probs
}
