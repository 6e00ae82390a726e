package requests

import (
	"context"
	"fmt"

	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/lifecycle"
)

// EditInput replaces a request's overrides and, for tv, its season list.
// Nil overrides clear the field.
type EditInput struct {
	ServerID          *int64
	ProfileID         *int64
	RootFolder        *string
	LanguageProfileID *int64
	UserID            *int64
	Seasons           []int
}

// Edit updates an existing request. Seasons already held by other requests
// of the same variant are dropped from the new list; new seasons start
// pending. An approved request is dispatched again with its new settings.
func (s *Service) Edit(ctx context.Context, actor *library.User, id int64, in EditInput) (*library.Request, error) {
	if err := requireManage(actor); err != nil {
		return nil, err
	}
	var requester *library.User
	if in.UserID != nil {
		// Changing the owner needs both permissions.
		if !actor.HasAll(library.PermissionManageUsers, library.PermissionManageRequests) {
			return nil, fmt.Errorf("%w: cannot modify the request user", ErrForbidden)
		}
		u, err := s.requester(actor, in.UserID, library.PermissionManageUsers)
		if err != nil {
			return nil, err
		}
		requester = u
	}

	var (
		req *library.Request
		out *outcome
	)
	err := s.store.WithTx(func(tx *library.Tx) error {
		var err error
		req, err = tx.GetRequest(id)
		if err != nil {
			return err
		}

		switch req.Type {
		case library.MediaTypeTV:
			if len(in.Seasons) == 0 {
				return fmt.Errorf("%w: tv requests need seasons; delete the request to cancel it", ErrInvalid)
			}
			siblings, err := tx.ListRequestsForMedia(req.MediaID)
			if err != nil {
				return err
			}
			effective := lifecycle.EffectiveSeasons(in.Seasons, lifecycle.ClaimedSeasons(siblings, req.Is4K, req.ID))
			if len(effective) == 0 {
				return ErrNoSeasons
			}
			req.Seasons = lifecycle.MergeSeasons(req.Seasons, effective)
		case library.MediaTypeMovie:
			if len(in.Seasons) > 0 {
				return fmt.Errorf("%w: movie requests have no seasons", ErrInvalid)
			}
		}

		req.ServerID = in.ServerID
		req.ProfileID = in.ProfileID
		req.RootFolder = in.RootFolder
		req.LanguageProfileID = in.LanguageProfileID
		if requester != nil {
			req.RequestedBy = requester.ID
		}
		if err := tx.UpdateRequest(req); err != nil {
			return err
		}

		out, err = transition(tx, req, lifecycle.EventEdited)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request edited",
		"request_id", req.ID,
		"media_id", req.MediaID,
		"by", actor.ID,
		"seasons", req.SeasonNumbers())
	s.publish(ctx, &events.RequestUpdated{
		BaseEvent: events.ForRequest(events.EventRequestUpdated, req.ID),
		RequestID: req.ID,
		MediaID:   req.MediaID,
		Seasons:   req.SeasonNumbers(),
	})
	s.publishMediaChanges(ctx, out.media, out.before)

	return req, s.afterCommit(ctx, out.media, req, out.fx, nil)
}
