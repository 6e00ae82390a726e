// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

// ImageBaseURL prefixes poster paths for notification images.
const ImageBaseURL = "https://image.tmdb.org/t/p/w600_and_h900_bestv2"

// AnimeKeywordID is the TMDB keyword that marks a show as anime.
const AnimeKeywordID = 210024

// Movie represents TMDB movie metadata.
type Movie struct {
	ID          int64   `json:"id"`
	IMDBID      string  `json:"imdb_id,omitempty"` // e.g., "tt0133093"
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"` // "2024-03-01"
	PosterPath  string  `json:"poster_path"`  // "/abc123.jpg"
	Runtime     int     `json:"runtime"`      // minutes
	Genres      []Genre `json:"genres"`
}

// Genre represents a movie or show genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Keyword is a TMDB keyword tag.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExternalIDs are a show's identifiers in other catalogs.
type ExternalIDs struct {
	TVDBID *int64 `json:"tvdb_id"`
	IMDBID string `json:"imdb_id,omitempty"`
}

// Season is one season entry of a show.
type Season struct {
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
}

// TVShow represents TMDB show metadata with external ids and keywords appended.
type TVShow struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Overview     string      `json:"overview"`
	FirstAirDate string      `json:"first_air_date"`
	PosterPath   string      `json:"poster_path"`
	Genres       []Genre     `json:"genres"`
	Seasons      []Season    `json:"seasons"`
	ExternalIDs  ExternalIDs `json:"external_ids"`
	Keywords     struct {
		Results []Keyword `json:"results"`
	} `json:"keywords"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	return yearOf(m.ReleaseDate)
}

// PosterURL returns the full poster image URL, or "" without a poster.
func (m *Movie) PosterURL() string {
	return posterURL(m.PosterPath)
}

// Year extracts the year from FirstAirDate.
func (s *TVShow) Year() int {
	return yearOf(s.FirstAirDate)
}

// PosterURL returns the full poster image URL, or "" without a poster.
func (s *TVShow) PosterURL() string {
	return posterURL(s.PosterPath)
}

// IsAnime reports whether the show carries the anime keyword.
func (s *TVShow) IsAnime() bool {
	for _, k := range s.Keywords.Results {
		if k.ID == AnimeKeywordID {
			return true
		}
	}
	return false
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func posterURL(path string) string {
	if path == "" {
		return ""
	}
	return ImageBaseURL + path
}
