package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/lifecycle"
)

// SetStatus moves a request to status on behalf of actor. Setting the
// status a request already has changes nothing.
func (s *Service) SetStatus(ctx context.Context, actor *library.User, id int64, status library.RequestStatus) (*library.Request, error) {
	if err := requireManage(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	var (
		req  *library.Request
		out  *outcome
		old  library.RequestStatus
		noop bool
	)
	err := s.store.WithTx(func(tx *library.Tx) error {
		var err error
		req, err = tx.GetRequest(id)
		if err != nil {
			return err
		}
		old = req.Status
		if old == status {
			noop = true
			return nil
		}

		req.Status = status
		modifiedBy := actor.ID
		req.ModifiedBy = &modifiedBy
		if err := tx.UpdateRequest(req); err != nil {
			return err
		}

		out, err = transition(tx, req, lifecycle.EventStatusChanged)
		return err
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return req, nil
	}

	s.logger.Info("request status changed",
		"request_id", req.ID,
		"media_id", req.MediaID,
		"from", string(old),
		"to", string(status),
		"by", actor.ID)
	s.publish(ctx, &events.RequestStatusChanged{
		BaseEvent:  events.ForRequest(events.EventRequestStatusChanged, req.ID),
		RequestID:  req.ID,
		MediaID:    req.MediaID,
		OldStatus:  string(old),
		NewStatus:  string(status),
		ModifiedBy: req.ModifiedBy,
	})
	s.publishMediaChanges(ctx, out.media, out.before)

	return req, s.afterCommit(ctx, out.media, req, out.fx, nil)
}

// Retry re-runs the lifecycle effects of a request and dispatches it again.
func (s *Service) Retry(ctx context.Context, actor *library.User, id int64) (*library.Request, error) {
	if err := requireManage(actor); err != nil {
		return nil, err
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
		out, err = transition(tx, req, lifecycle.EventRetried)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request retried", "request_id", req.ID, "status", string(req.Status), "by", actor.ID)
	s.publish(ctx, &events.RequestRetried{
		BaseEvent: events.ForRequest(events.EventRequestRetried, req.ID),
		RequestID: req.ID,
		MediaID:   req.MediaID,
	})
	s.publishMediaChanges(ctx, out.media, out.before)

	return req, s.afterCommit(ctx, out.media, req, out.fx, nil)
}

// Delete removes a request and its seasons, then resets any media variant
// left without requests. Managers may delete any request; other users may
// delete their own or any still pending one.
func (s *Service) Delete(ctx context.Context, actor *library.User, id int64) error {
	req, err := s.store.GetRequest(id)
	if err != nil {
		return err
	}
	if !actor.HasAny(library.PermissionManageRequests) &&
		req.RequestedBy != actor.ID &&
		req.Status != library.RequestStatusPending {
		return fmt.Errorf("%w: cannot remove request %d", ErrForbidden, id)
	}

	var (
		media  *library.Media
		before statusPair
	)
	err = s.store.WithTx(func(tx *library.Tx) error {
		if err := tx.DeleteRequest(id); err != nil {
			return err
		}
		m, err := tx.GetMedia(req.MediaID)
		if errors.Is(err, library.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		before = snapshot(m)
		remaining, err := tx.ListRequestsForMedia(m.ID)
		if err != nil {
			return err
		}
		if lifecycle.ResolveRemoval(m, remaining) {
			if err := tx.UpdateMedia(m); err != nil {
				return err
			}
		}
		media = m
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("request deleted", "request_id", id, "media_id", req.MediaID, "by", actor.ID)
	s.publish(ctx, &events.RequestDeleted{
		BaseEvent: events.ForRequest(events.EventRequestDeleted, id),
		RequestID: id,
		MediaID:   req.MediaID,
		Is4K:      req.Is4K,
	})
	if media != nil {
		s.publishMediaChanges(ctx, media, before)
	}
	return nil
}
