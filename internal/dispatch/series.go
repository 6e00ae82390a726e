package dispatch

import (
	"context"
	"fmt"

	"github.com/vmunix/reqarr/internal/acquisition"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/notify"
)

const serviceSonarr = "sonarr"

func (e *Engine) dispatchSeries(ctx context.Context, req *library.Request) error {
	inst, ok := acquisition.SelectInstance(e.settings.AcquisitionSettings().Sonarr, req.Is4K, req.ServerID)
	if !ok {
		return e.unconfigured(ctx, req, serviceSonarr)
	}

	backend, err := e.factory.Series(inst)
	if err != nil {
		return &Error{Kind: KindConfig, RequestID: req.ID, Err: fmt.Errorf("sonarr %q: %w", inst.Name, err)}
	}

	media, release, err := e.reload(ctx, req)
	if err != nil {
		return err
	}

	show, err := e.meta.GetTVShow(ctx, media.TMDBID)
	if err != nil {
		release()
		return &Error{Kind: KindBackend, RequestID: req.ID, Err: fmt.Errorf("tv metadata %d: %w", media.TMDBID, err)}
	}
	route := acquisition.ResolveSeriesRoute(inst, req, show.IsAnime())

	tvdbID := show.ExternalIDs.TVDBID
	if tvdbID == nil || *tvdbID == 0 {
		tvdbID = media.TVDBID
	}
	if tvdbID == nil || *tvdbID == 0 {
		// Nothing can track a series without its tvdb id; drop the title
		// and every request on it.
		err := e.store.DeleteMedia(media.ID)
		release()
		if err != nil {
			return &Error{Kind: KindConsistency, RequestID: req.ID, Err: fmt.Errorf("%w; delete media: %w", ErrNoTVDBID, err)}
		}
		e.logger.Warn("deleted media without tvdb id", "media_id", media.ID, "tmdb_id", media.TMDBID, "request_id", req.ID)
		return &Error{Kind: KindPrecondition, RequestID: req.ID, Err: ErrNoTVDBID}
	}

	params := acquisition.SeriesParams{
		Title:             show.Name,
		TMDBID:            media.TMDBID,
		TVDBID:            *tvdbID,
		ProfileID:         route.ProfileID,
		LanguageProfileID: route.LanguageProfileID,
		RootFolder:        route.RootFolder,
		SeriesType:        route.SeriesType,
		Seasons:           req.SeasonNumbers(),
		SeasonFolder:      inst.EnableSeasonFolders,
		Monitored:         true,
		Search:            !inst.PreventSearch,
	}

	s := submitted{
		req:        req,
		service:    serviceSonarr,
		instanceID: inst.ID,
		tvdbID:     tvdbID,
		title:      show.Name,
		image:      show.PosterURL(),
		extra:      []notify.Field{notify.SeasonsField(params.Seasons)},
		failureMsg: "Series failed to add to Sonarr",
	}
	return e.submit(ctx, s, release, func(ctx context.Context) (*acquisition.Added, error) {
		return backend.AddSeries(ctx, params)
	})
}
