// Package acquisition talks to the movie and series acquisition services.
// Instances come from an injected SettingsProvider; requests are routed to an
// instance by variant and optional server override.
package acquisition

//go:generate mockgen -destination=mocks/mock_acquisition.go -package=mocks github.com/vmunix/reqarr/internal/acquisition MovieBackend,SeriesBackend,Factory

import (
	"context"
	"errors"
)

// ErrUnsupported is returned for instances with no usable connection settings.
var ErrUnsupported = errors.New("acquisition instance not usable")

// MovieParams describes a movie to add to a movie service.
type MovieParams struct {
	Title               string
	TMDBID              int64
	Year                int
	ProfileID           int64
	RootFolder          string
	MinimumAvailability string
	Monitored           bool
	Search              bool
}

// SeriesParams describes a series to add to a series service.
type SeriesParams struct {
	Title             string
	TMDBID            int64
	TVDBID            int64
	ProfileID         int64
	LanguageProfileID int64
	RootFolder        string
	SeriesType        string // "anime" or "standard"
	Seasons           []int
	SeasonFolder      bool
	Monitored         bool
	Search            bool
}

// Added identifies the record a service created (or already had) for a title.
type Added struct {
	ID        int64
	TitleSlug string
}

// MovieBackend adds movies to one movie service instance.
type MovieBackend interface {
	AddMovie(ctx context.Context, p MovieParams) (*Added, error)
}

// SeriesBackend adds series to one series service instance.
type SeriesBackend interface {
	AddSeries(ctx context.Context, p SeriesParams) (*Added, error)
}

// Factory builds backends for configured instances.
type Factory interface {
	Movie(inst RadarrInstance) (MovieBackend, error)
	Series(inst SonarrInstance) (SeriesBackend, error)
}
