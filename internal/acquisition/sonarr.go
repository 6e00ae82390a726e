package acquisition

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golift.io/starr/sonarr"
)

// sonarrAPI is the subset of the starr Sonarr client used here.
type sonarrAPI interface {
	GetSeriesContext(ctx context.Context, tvdbID int64) ([]*sonarr.Series, error)
	AddSeriesContext(ctx context.Context, series *sonarr.AddSeriesInput) (*sonarr.Series, error)
	UpdateSeriesContext(ctx context.Context, series *sonarr.AddSeriesInput, moveFiles bool) (*sonarr.Series, error)
	SendCommandContext(ctx context.Context, cmd *sonarr.CommandRequest) (*sonarr.CommandResponse, error)
}

// seasonSearch is the Sonarr command that searches one season of a series.
const seasonSearch = "SeasonSearch"

// SonarrBackend adds series to a Sonarr instance.
type SonarrBackend struct {
	api    sonarrAPI
	logger *slog.Logger
}

// NewSonarrBackend wraps a starr Sonarr client.
func NewSonarrBackend(client *sonarr.Sonarr, logger *slog.Logger) *SonarrBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &SonarrBackend{api: client, logger: logger}
}

// AddSeries adds the series with the requested seasons monitored. When Sonarr
// already tracks the series, the requested seasons are switched to monitored
// on the existing record instead.
func (b *SonarrBackend) AddSeries(ctx context.Context, p SeriesParams) (*Added, error) {
	existing, err := b.api.GetSeriesContext(ctx, p.TVDBID)
	if err != nil {
		return nil, fmt.Errorf("sonarr lookup tvdb:%d: %w", p.TVDBID, err)
	}
	for _, s := range existing {
		if s.TvdbID == p.TVDBID {
			return b.monitorSeasons(ctx, s, p.Seasons, p.Search)
		}
	}

	seasons := make([]*sonarr.Season, 0, len(p.Seasons))
	for _, n := range p.Seasons {
		seasons = append(seasons, &sonarr.Season{SeasonNumber: n, Monitored: true})
	}
	series, err := b.api.AddSeriesContext(ctx, &sonarr.AddSeriesInput{
		Title:             p.Title,
		TvdbID:            p.TVDBID,
		QualityProfileID:  p.ProfileID,
		LanguageProfileID: p.LanguageProfileID,
		RootFolderPath:    p.RootFolder,
		SeriesType:        p.SeriesType,
		SeasonFolder:      p.SeasonFolder,
		Monitored:         p.Monitored,
		Seasons:           seasons,
		AddOptions: &sonarr.AddSeriesOptions{
			SearchForMissingEpisodes: p.Search,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sonarr add %q: %w", p.Title, err)
	}
	return &Added{ID: series.ID, TitleSlug: series.TitleSlug}, nil
}

// monitorSeasons switches the requested seasons of an existing series to
// monitored and, when search is set, queues a search for each of them.
func (b *SonarrBackend) monitorSeasons(ctx context.Context, s *sonarr.Series, numbers []int, search bool) (*Added, error) {
	var added []int
	seasons := make([]*sonarr.Season, 0, len(s.Seasons))
	for _, season := range s.Seasons {
		monitored := season.Monitored
		if !monitored && slices.Contains(numbers, season.SeasonNumber) {
			monitored = true
			added = append(added, season.SeasonNumber)
		}
		seasons = append(seasons, &sonarr.Season{SeasonNumber: season.SeasonNumber, Monitored: monitored})
	}
	if len(added) == 0 {
		return &Added{ID: s.ID, TitleSlug: s.TitleSlug}, nil
	}

	updated, err := b.api.UpdateSeriesContext(ctx, &sonarr.AddSeriesInput{
		ID:                s.ID,
		Title:             s.Title,
		TitleSlug:         s.TitleSlug,
		TvdbID:            s.TvdbID,
		QualityProfileID:  s.QualityProfileID,
		LanguageProfileID: s.LanguageProfileID,
		Path:              s.Path,
		SeriesType:        s.SeriesType,
		SeasonFolder:      s.SeasonFolder,
		Tags:              s.Tags,
		Monitored:         true,
		Seasons:           seasons,
	}, false)
	if err != nil {
		return nil, fmt.Errorf("sonarr update %q: %w", s.Title, err)
	}
	if search {
		b.searchSeasons(ctx, updated.ID, added)
	}
	return &Added{ID: updated.ID, TitleSlug: updated.TitleSlug}, nil
}

// searchSeasons queues a SeasonSearch per season. The series is already
// monitored at this point, so a failed search is logged and not returned.
func (b *SonarrBackend) searchSeasons(ctx context.Context, seriesID int64, numbers []int) {
	for _, n := range numbers {
		cmd := &sonarr.CommandRequest{Name: seasonSearch, SeriesID: seriesID, SeasonNumber: n}
		if _, err := b.api.SendCommandContext(ctx, cmd); err != nil {
			b.logger.Warn("sonarr season search failed", "series_id", seriesID, "season", n, "error", err)
		}
	}
}
