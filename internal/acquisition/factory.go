package acquisition

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golift.io/starr"
	"golift.io/starr/radarr"
	"golift.io/starr/sonarr"
)

// StarrFactory builds starr-backed clients and reuses them per instance, so
// each instance keeps one breaker across dispatches. A client is rebuilt when
// the instance's URL or key changes.
type StarrFactory struct {
	timeout time.Duration
	breaker BreakerConfig
	logger  *slog.Logger

	mu     sync.Mutex
	movies map[clientKey]MovieBackend
	series map[clientKey]SeriesBackend
}

type clientKey struct {
	id     int64
	url    string
	apiKey string
}

// NewStarrFactory creates a factory whose clients time out after timeout.
func NewStarrFactory(timeout time.Duration, breaker BreakerConfig, logger *slog.Logger) *StarrFactory {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StarrFactory{
		timeout: timeout,
		breaker: breaker,
		logger:  logger,
		movies:  make(map[clientKey]MovieBackend),
		series:  make(map[clientKey]SeriesBackend),
	}
}

// Movie returns the backend for a Radarr instance.
func (f *StarrFactory) Movie(inst RadarrInstance) (MovieBackend, error) {
	if inst.URL == "" || inst.APIKey == "" {
		return nil, fmt.Errorf("radarr %q: %w", inst.Name, ErrUnsupported)
	}
	key := clientKey{id: inst.ID, url: inst.URL, apiKey: inst.APIKey}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.movies[key]; ok {
		return b, nil
	}
	client := radarr.New(starr.New(inst.APIKey, inst.URL, f.timeout))
	b := WithMovieBreaker(NewRadarrBackend(client), "radarr:"+inst.Name, f.breaker, f.logger)
	f.movies[key] = b
	return b, nil
}

// Series returns the backend for a Sonarr instance.
func (f *StarrFactory) Series(inst SonarrInstance) (SeriesBackend, error) {
	if inst.URL == "" || inst.APIKey == "" {
		return nil, fmt.Errorf("sonarr %q: %w", inst.Name, ErrUnsupported)
	}
	key := clientKey{id: inst.ID, url: inst.URL, apiKey: inst.APIKey}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.series[key]; ok {
		return b, nil
	}
	client := sonarr.New(starr.New(inst.APIKey, inst.URL, f.timeout))
	b := WithSeriesBreaker(NewSonarrBackend(client, f.logger), "sonarr:"+inst.Name, f.breaker, f.logger)
	f.series[key] = b
	return b, nil
}
