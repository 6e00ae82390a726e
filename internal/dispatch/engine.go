// Package dispatch submits approved requests to the acquisition services and
// reconciles the media record with the outcome.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/reqarr/internal/acquisition"
	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/metadata"
	"github.com/vmunix/reqarr/internal/notify"
)

// Store is the persistence the engine reads and writes.
type Store interface {
	GetMedia(id int64) (*library.Media, error)
	UpdateMedia(m *library.Media) error
	DeleteMedia(id int64) error
	FirstAdmin() (*library.User, error)
}

// Publisher receives dispatch events. Optional.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Settings acquisition.SettingsProvider
	Factory  acquisition.Factory
	Metadata metadata.Provider
	Store    Store
	Notify   notify.Sink
	Pool     *Pool
	Events   Publisher
	Logger   *slog.Logger
}

// Engine dispatches approved requests.
type Engine struct {
	settings acquisition.SettingsProvider
	factory  acquisition.Factory
	meta     metadata.Provider
	store    Store
	sink     notify.Sink
	pool     *Pool
	bus      Publisher
	locks    *keyedLocks[variantKey]
	rows     *keyedLocks[int64]
	logger   *slog.Logger
}

// NewEngine creates an engine.
func NewEngine(d Deps) *Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Notify == nil {
		d.Notify = notify.Discard{}
	}
	if d.Pool == nil {
		d.Pool = NewPool(0, 0, d.Logger)
	}
	return &Engine{
		settings: d.Settings,
		factory:  d.Factory,
		meta:     d.Metadata,
		store:    d.Store,
		sink:     d.Notify,
		pool:     d.Pool,
		bus:      d.Events,
		locks:    newKeyedLocks[variantKey](),
		rows:     newKeyedLocks[int64](),
		logger:   d.Logger,
	}
}

// Pool returns the engine's worker pool.
func (e *Engine) Pool() *Pool { return e.pool }

// Dispatch submits req to its acquisition service. It returns once the
// submission is queued; the service call and the media write-back run on
// the pool. Requests that are not approved are ignored. A missing instance
// for the request's variant is logged and is not an error. Any other
// failure before queueing is returned as *Error.
func (e *Engine) Dispatch(ctx context.Context, req *library.Request) error {
	if req.Status != library.RequestStatusApproved {
		return nil
	}

	var err error
	switch req.Type {
	case library.MediaTypeMovie:
		err = e.dispatchMovie(ctx, req)
	case library.MediaTypeTV:
		err = e.dispatchSeries(ctx, req)
	default:
		err = &Error{Kind: KindPrecondition, RequestID: req.ID, Err: fmt.Errorf("unknown media type %q", req.Type)}
	}

	if err != nil {
		var de *Error
		if errors.As(err, &de) {
			e.logger.Error("dispatch aborted",
				"request_id", req.ID,
				"media_id", req.MediaID,
				"variant", req.Variant().String(),
				"kind", string(de.Kind),
				"error", de.Err)
			e.publish(ctx, &events.DispatchSkipped{
				BaseEvent: events.ForRequest(events.EventDispatchSkipped, req.ID),
				RequestID: req.ID,
				MediaID:   req.MediaID,
				Kind:      string(de.Kind),
				Reason:    de.Err.Error(),
			})
		}
	}
	return err
}

// unconfigured logs and records a dispatch with no instance to go to.
func (e *Engine) unconfigured(ctx context.Context, req *library.Request, service string) error {
	e.logger.Info("no acquisition instance configured, skipping dispatch",
		"service", service,
		"request_id", req.ID,
		"variant", req.Variant().String(),
		"server_id", req.ServerID)
	e.publish(ctx, &events.DispatchSkipped{
		BaseEvent: events.ForRequest(events.EventDispatchSkipped, req.ID),
		RequestID: req.ID,
		MediaID:   req.MediaID,
		Kind:      string(KindConfig),
		Reason:    "no " + service + " instance for variant",
	})
	return nil
}

// reload takes the lock of the request's variant and reads the media fresh.
// On success the caller owns the returned release func.
func (e *Engine) reload(ctx context.Context, req *library.Request) (*library.Media, func(), error) {
	release, err := e.locks.lock(ctx, variantKey{mediaID: req.MediaID, variant: req.Variant()})
	if err != nil {
		return nil, nil, &Error{Kind: KindBackend, RequestID: req.ID, Err: fmt.Errorf("wait for media lock: %w", err)}
	}
	media, err := e.store.GetMedia(req.MediaID)
	if err != nil {
		release()
		return nil, nil, &Error{Kind: KindConsistency, RequestID: req.ID, Err: fmt.Errorf("load media: %w", err)}
	}
	if media.StatusFor(req.Variant()) == library.MediaStatusAvailable {
		release()
		return nil, nil, &Error{Kind: KindPrecondition, RequestID: req.ID, Err: ErrAlreadyAvailable}
	}
	return media, release, nil
}

// submitted is what a continuation needs to reconcile the outcome.
type submitted struct {
	req        *library.Request
	service    string
	instanceID int64
	tvdbID     *int64
	title      string
	image      string
	extra      []notify.Field
	failureMsg string
}

// submit queues call on the pool. The media lock is released when the
// continuation finishes, or right away if queueing fails.
func (e *Engine) submit(ctx context.Context, s submitted, release func(), call func(context.Context) (*acquisition.Added, error)) error {
	// The continuation outlives the caller's request.
	bg := context.WithoutCancel(ctx)

	var jobID string
	started := make(chan struct{})
	jobID, err := e.pool.Submit(s.req.ID, func() {
		defer release()
		<-started
		added, err := call(bg)
		if err != nil {
			e.onFailure(bg, jobID, s, err)
			return
		}
		e.onSuccess(bg, jobID, s, added)
	})
	if err != nil {
		release()
		return &Error{Kind: KindBackend, RequestID: s.req.ID, Err: err}
	}
	close(started)

	e.logger.Info("dispatch submitted",
		"job_id", jobID,
		"service", s.service,
		"instance", s.instanceID,
		"request_id", s.req.ID,
		"media_id", s.req.MediaID,
		"variant", s.req.Variant().String())
	e.publish(ctx, &events.DispatchSubmitted{
		BaseEvent:  events.ForRequest(events.EventDispatchSubmitted, s.req.ID),
		JobID:      jobID,
		RequestID:  s.req.ID,
		MediaID:    s.req.MediaID,
		Service:    s.service,
		InstanceID: s.instanceID,
	})
	return nil
}

// onSuccess links the service record onto the request's variant.
func (e *Engine) onSuccess(ctx context.Context, jobID string, s submitted, added *acquisition.Added) {
	v := s.req.Variant()
	media, err := e.modifyMedia(ctx, s.req.MediaID, func(m *library.Media) {
		m.Link(v, s.instanceID, added.ID, added.TitleSlug)
		if m.TVDBID == nil && s.tvdbID != nil {
			m.TVDBID = s.tvdbID
		}
	})
	if err != nil {
		e.logger.Error("save media after dispatch", "job_id", jobID, "media_id", s.req.MediaID, "error", err)
		return
	}

	e.logger.Info("dispatch succeeded",
		"job_id", jobID,
		"service", s.service,
		"request_id", s.req.ID,
		"media_id", media.ID,
		"variant", v.String(),
		"external_id", added.ID,
		"slug", added.TitleSlug)
	e.publish(ctx, &events.DispatchSucceeded{
		BaseEvent:  events.ForRequest(events.EventDispatchSucceeded, s.req.ID),
		JobID:      jobID,
		RequestID:  s.req.ID,
		MediaID:    media.ID,
		InstanceID: s.instanceID,
		ExternalID: added.ID,
		TitleSlug:  added.TitleSlug,
	})
}

// modifyMedia reloads the media, applies fn and writes it back while holding
// the media's row lock. Continuations of both variants write the same row.
func (e *Engine) modifyMedia(ctx context.Context, id int64, fn func(*library.Media)) (*library.Media, error) {
	release, err := e.rows.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	media, err := e.store.GetMedia(id)
	if err != nil {
		return nil, fmt.Errorf("reload media: %w", err)
	}
	fn(media)
	if err := e.store.UpdateMedia(media); err != nil {
		return nil, err
	}
	return media, nil
}

// onFailure resets the variant to unknown so the request is not left
// processing, and tells the first admin.
func (e *Engine) onFailure(ctx context.Context, jobID string, s submitted, cause error) {
	v := s.req.Variant()
	e.logger.Error("dispatch failed",
		"job_id", jobID,
		"service", s.service,
		"instance", s.instanceID,
		"request_id", s.req.ID,
		"media_id", s.req.MediaID,
		"variant", v.String(),
		"error", cause)

	var old library.MediaStatus
	media, err := e.modifyMedia(ctx, s.req.MediaID, func(m *library.Media) {
		old = m.StatusFor(v)
		m.SetStatus(v, library.MediaStatusUnknown)
	})
	if err != nil {
		e.logger.Error("reset media after failed dispatch", "job_id", jobID, "media_id", s.req.MediaID, "error", err)
		return
	}
	if old != library.MediaStatusUnknown {
		e.publish(ctx, &events.MediaStatusChanged{
			BaseEvent: events.ForMedia(events.EventMediaStatusChanged, media.ID),
			MediaID:   media.ID,
			Variant:   v.String(),
			OldStatus: string(old),
			NewStatus: string(library.MediaStatusUnknown),
		})
	}
	e.publish(ctx, &events.DispatchFailed{
		BaseEvent:  events.ForRequest(events.EventDispatchFailed, s.req.ID),
		JobID:      jobID,
		RequestID:  s.req.ID,
		MediaID:    media.ID,
		InstanceID: s.instanceID,
		Reason:     cause.Error(),
	})

	admin, err := e.store.FirstAdmin()
	if err != nil {
		e.logger.Warn("no admin to notify of failed dispatch", "job_id", jobID, "request_id", s.req.ID, "error", err)
		admin = nil
	}
	e.sink.Send(ctx, notify.KindMediaFailed, notify.Payload{
		Subject:    s.title,
		Message:    s.failureMsg,
		Image:      s.image,
		Extra:      s.extra,
		NotifyUser: admin,
		Media:      media,
		Request:    s.req,
	})
}

func (e *Engine) publish(ctx context.Context, ev events.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ctx, ev); err != nil {
		e.logger.Warn("publish dispatch event", "type", ev.EventType(), "error", err)
	}
}
