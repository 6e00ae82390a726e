package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/lifecycle"
)

// CreateInput describes a new request.
type CreateInput struct {
	MediaType         library.MediaType
	TMDBID            int64
	TVDBID            *int64
	Is4K              bool
	Seasons           []int // required for tv
	ServerID          *int64
	ProfileID         *int64
	RootFolder        *string
	LanguageProfileID *int64
	UserID            *int64 // request on behalf of another user
}

// Create records a request by actor (or on behalf of in.UserID) and runs its
// lifecycle effects. The returned request is persisted even when a dispatch
// error is returned alongside it.
func (s *Service) Create(ctx context.Context, actor *library.User, in CreateInput) (*library.Request, error) {
	if !in.MediaType.Valid() || in.TMDBID <= 0 {
		return nil, fmt.Errorf("%w: media type and tmdb id are required", ErrInvalid)
	}
	if in.MediaType == library.MediaTypeTV && len(in.Seasons) == 0 {
		return nil, fmt.Errorf("%w: tv requests need seasons", ErrInvalid)
	}
	if in.MediaType == library.MediaTypeMovie && len(in.Seasons) > 0 {
		return nil, fmt.Errorf("%w: movie requests have no seasons", ErrInvalid)
	}
	if !lifecycle.CanRequest(actor, in.MediaType, in.Is4K) {
		return nil, fmt.Errorf("%w: cannot request %s (4k=%t)", ErrForbidden, in.MediaType, in.Is4K)
	}

	requester, err := s.requester(actor, in.UserID, library.PermissionManageUsers, library.PermissionManageRequests)
	if err != nil {
		return nil, err
	}

	t, err := s.lookup(ctx, in.MediaType, in.TMDBID)
	if err != nil {
		return nil, unknownTitle(err, in.MediaType, in.TMDBID)
	}
	tvdbID := in.TVDBID
	if tvdbID == nil {
		tvdbID = t.TVDBID
	}

	v := library.VariantOf(in.Is4K)
	status, modifiedBy := lifecycle.InitialStatus(actor, in.MediaType, in.Is4K)

	var (
		media  *library.Media
		req    *library.Request
		fx     lifecycle.Effects
		before = statusPair{library.MediaStatusUnknown, library.MediaStatusUnknown}
	)
	err = s.store.WithTx(func(tx *library.Tx) error {
		var (
			dirty bool
			err   error
		)
		media, err = tx.GetMediaByTMDB(in.MediaType, in.TMDBID)
		switch {
		case errors.Is(err, library.ErrNotFound):
			media = &library.Media{Type: in.MediaType, TMDBID: in.TMDBID, TVDBID: tvdbID}
			media.SetStatus(v, library.MediaStatusPending)
			if err := tx.AddMedia(media); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			before = snapshot(media)
			if media.StatusFor(v) == library.MediaStatusUnknown {
				media.SetStatus(v, library.MediaStatusPending)
				dirty = true
			}
			if media.TVDBID == nil && tvdbID != nil {
				media.TVDBID = tvdbID
				dirty = true
			}
		}

		siblings, err := tx.ListRequestsForMedia(media.ID)
		if err != nil {
			return err
		}

		var seasons []*library.SeasonRequest
		switch in.MediaType {
		case library.MediaTypeMovie:
			for _, r := range siblings {
				if r.RequestedBy == requester.ID && r.Is4K == in.Is4K {
					return fmt.Errorf("%w: request %d", ErrDuplicate, r.ID)
				}
			}
		case library.MediaTypeTV:
			effective := lifecycle.EffectiveSeasons(in.Seasons, lifecycle.ClaimedSeasons(siblings, in.Is4K, 0))
			if len(effective) == 0 {
				return ErrNoSeasons
			}
			seasons = lifecycle.NewSeasonRequests(effective, status)
		}

		req = &library.Request{
			MediaID:           media.ID,
			Type:              in.MediaType,
			Status:            status,
			Is4K:              in.Is4K,
			RequestedBy:       requester.ID,
			ModifiedBy:        modifiedBy,
			ServerID:          in.ServerID,
			ProfileID:         in.ProfileID,
			RootFolder:        in.RootFolder,
			LanguageProfileID: in.LanguageProfileID,
			Seasons:           seasons,
		}
		if err := tx.AddRequest(req); err != nil {
			return err
		}

		fx = lifecycle.Apply(media, req, siblings, lifecycle.EventCreated)
		if dirty && !fx.MediaChanged {
			if err := tx.UpdateMedia(media); err != nil {
				return err
			}
		}
		return applyEffects(tx, media, req, fx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request created",
		"request_id", req.ID,
		"media_id", media.ID,
		"type", string(req.Type),
		"variant", v.String(),
		"status", string(req.Status),
		"requested_by", req.RequestedBy,
		"seasons", req.SeasonNumbers())
	s.publish(ctx, &events.RequestCreated{
		BaseEvent:   events.ForRequest(events.EventRequestCreated, req.ID),
		RequestID:   req.ID,
		MediaID:     media.ID,
		MediaType:   string(req.Type),
		Is4K:        req.Is4K,
		Status:      string(req.Status),
		RequestedBy: req.RequestedBy,
		Seasons:     req.SeasonNumbers(),
	})
	s.publishMediaChanges(ctx, media, before)

	return req, s.afterCommit(ctx, media, req, fx, t)
}

// requester resolves whose name a request is recorded under. Acting for
// someone else requires any of perms.
func (s *Service) requester(actor *library.User, userID *int64, perms ...library.Permission) (*library.User, error) {
	if userID == nil || *userID == actor.ID {
		return actor, nil
	}
	if !actor.HasAny(perms...) {
		return nil, fmt.Errorf("%w: cannot modify the request user", ErrForbidden)
	}
	u, err := s.store.GetUser(*userID)
	if errors.Is(err, library.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d not found", ErrInvalid, *userID)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
