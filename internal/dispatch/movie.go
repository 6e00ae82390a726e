package dispatch

import (
	"context"
	"fmt"

	"github.com/vmunix/reqarr/internal/acquisition"
	"github.com/vmunix/reqarr/internal/library"
)

const serviceRadarr = "radarr"

func (e *Engine) dispatchMovie(ctx context.Context, req *library.Request) error {
	inst, ok := acquisition.SelectInstance(e.settings.AcquisitionSettings().Radarr, req.Is4K, req.ServerID)
	if !ok {
		return e.unconfigured(ctx, req, serviceRadarr)
	}
	route := acquisition.ResolveMovieRoute(inst, req)

	backend, err := e.factory.Movie(inst)
	if err != nil {
		return &Error{Kind: KindConfig, RequestID: req.ID, Err: fmt.Errorf("radarr %q: %w", inst.Name, err)}
	}

	media, release, err := e.reload(ctx, req)
	if err != nil {
		return err
	}

	movie, err := e.meta.GetMovie(ctx, media.TMDBID)
	if err != nil {
		release()
		return &Error{Kind: KindBackend, RequestID: req.ID, Err: fmt.Errorf("movie metadata %d: %w", media.TMDBID, err)}
	}

	params := acquisition.MovieParams{
		Title:               movie.Title,
		TMDBID:              media.TMDBID,
		Year:                movie.Year(),
		ProfileID:           route.ProfileID,
		RootFolder:          route.RootFolder,
		MinimumAvailability: inst.MinimumAvailability,
		Monitored:           true,
		Search:              !inst.PreventSearch,
	}

	s := submitted{
		req:        req,
		service:    serviceRadarr,
		instanceID: inst.ID,
		title:      movie.Title,
		image:      movie.PosterURL(),
		failureMsg: "Movie failed to add to Radarr",
	}
	return e.submit(ctx, s, release, func(ctx context.Context) (*acquisition.Added, error) {
		return backend.AddMovie(ctx, params)
	})
}
