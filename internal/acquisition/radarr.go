package acquisition

import (
	"context"
	"fmt"

	"golift.io/starr/radarr"
)

// radarrAPI is the subset of the starr Radarr client used here.
type radarrAPI interface {
	GetMovieContext(ctx context.Context, params *radarr.GetMovie) ([]*radarr.Movie, error)
	AddMovieContext(ctx context.Context, movie *radarr.AddMovieInput) (*radarr.Movie, error)
}

// RadarrBackend adds movies to a Radarr instance.
type RadarrBackend struct {
	api radarrAPI
}

// NewRadarrBackend wraps a starr Radarr client.
func NewRadarrBackend(client *radarr.Radarr) *RadarrBackend {
	return &RadarrBackend{api: client}
}

// AddMovie adds the movie unless Radarr already tracks it, in which case the
// existing record is returned so repeated dispatches are harmless.
func (b *RadarrBackend) AddMovie(ctx context.Context, p MovieParams) (*Added, error) {
	existing, err := b.api.GetMovieContext(ctx, &radarr.GetMovie{TMDBID: p.TMDBID})
	if err != nil {
		return nil, fmt.Errorf("radarr lookup tmdb:%d: %w", p.TMDBID, err)
	}
	for _, m := range existing {
		if m.TmdbID == p.TMDBID {
			return &Added{ID: m.ID, TitleSlug: m.TitleSlug}, nil
		}
	}

	movie, err := b.api.AddMovieContext(ctx, &radarr.AddMovieInput{
		Title:               p.Title,
		TmdbID:              p.TMDBID,
		Year:                p.Year,
		QualityProfileID:    p.ProfileID,
		RootFolderPath:      p.RootFolder,
		MinimumAvailability: radarr.Availability(p.MinimumAvailability),
		Monitored:           p.Monitored,
		AddOptions: &radarr.AddMovieOptions{
			SearchForMovie: p.Search,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("radarr add %q: %w", p.Title, err)
	}
	return &Added{ID: movie.ID, TitleSlug: movie.TitleSlug}, nil
}
