package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/reqarr/internal/tmdb"
)

const (
	movieTTL = 24 * time.Hour
	showTTL  = 24 * time.Hour
)

// Cache key prefixes
const (
	keyPrefixMovie = "tmdb:movie:"
	keyPrefixShow  = "tmdb:tv:"
)

// Provider looks up the titles requests refer to.
type Provider interface {
	GetMovie(ctx context.Context, tmdbID int64) (*tmdb.Movie, error)
	GetTVShow(ctx context.Context, tmdbID int64) (*tmdb.TVShow, error)
}

// Service provides cached access to TMDB metadata.
type Service struct {
	client Provider
	cache  *Cache
	log    *slog.Logger
}

// NewService creates a metadata service. cache may be nil to disable persistence.
func NewService(client Provider, cache *Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, cache: cache, log: log}
}

// GetMovie fetches movie metadata by TMDB ID (cached).
func (s *Service) GetMovie(ctx context.Context, tmdbID int64) (*tmdb.Movie, error) {
	fetch := func() (*tmdb.Movie, error) {
		m, err := s.client.GetMovie(ctx, tmdbID)
		if err != nil {
			return nil, fmt.Errorf("get movie %d: %w", tmdbID, err)
		}
		return m, nil
	}
	if s.cache == nil {
		return fetch()
	}
	return cached(ctx, s.cache, s.log, fmt.Sprintf("%s%d", keyPrefixMovie, tmdbID), movieTTL, fetch)
}

// GetTVShow fetches show metadata by TMDB ID (cached).
func (s *Service) GetTVShow(ctx context.Context, tmdbID int64) (*tmdb.TVShow, error) {
	fetch := func() (*tmdb.TVShow, error) {
		show, err := s.client.GetTVShow(ctx, tmdbID)
		if err != nil {
			return nil, fmt.Errorf("get tv show %d: %w", tmdbID, err)
		}
		return show, nil
	}
	if s.cache == nil {
		return fetch()
	}
	return cached(ctx, s.cache, s.log, fmt.Sprintf("%s%d", keyPrefixShow, tmdbID), showTTL, fetch)
}

// Prune drops expired cache entries.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Prune(ctx)
}
