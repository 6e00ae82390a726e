package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/notify"
)

// NotificationStore loads the entities a notification refers to.
type NotificationStore interface {
	GetUser(id int64) (*library.User, error)
	GetMedia(id int64) (*library.Media, error)
	GetRequest(id int64) (*library.Request, error)
}

// Deliverer sends a rendered notification to agents.
type Deliverer interface {
	Deliver(ctx context.Context, kind notify.Kind, p notify.Payload) error
}

// NotificationHandler delivers notification.requested events.
type NotificationHandler struct {
	*BaseHandler
	store     NotificationStore
	deliverer Deliverer
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(bus *events.Bus, store NotificationStore, d Deliverer, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: NewBaseHandler(bus, logger),
		store:       store,
		deliverer:   d,
	}
}

// Name returns the handler name.
func (h *NotificationHandler) Name() string {
	return "notifications"
}

// Start begins processing events.
func (h *NotificationHandler) Start(ctx context.Context) error {
	ch := h.Bus().Subscribe(100, events.EventNotificationRequested)
	return h.consume(ctx, ch, func(ctx context.Context, e events.Event) {
		n, ok := e.(*events.NotificationRequested)
		if !ok {
			return
		}
		h.handle(ctx, n)
	})
}

func (h *NotificationHandler) handle(ctx context.Context, e *events.NotificationRequested) {
	kind := notify.Kind(e.Kind)
	p := notify.Payload{
		Subject: e.Subject,
		Message: e.Message,
		Image:   e.Image,
		Extra:   notify.FieldsFromEvent(e),
	}

	// Entities may be gone by the time the event is consumed, e.g. a request
	// deleted right after a failed dispatch. Deliver what is still there.
	if e.NotifyUserID != nil {
		u, err := h.store.GetUser(*e.NotifyUserID)
		if h.loadFailed(err, "user", *e.NotifyUserID) {
			return
		}
		p.NotifyUser = u
	}
	if e.MediaID != nil {
		m, err := h.store.GetMedia(*e.MediaID)
		if h.loadFailed(err, "media", *e.MediaID) {
			return
		}
		p.Media = m
	}
	if e.RequestID != nil {
		r, err := h.store.GetRequest(*e.RequestID)
		if h.loadFailed(err, "request", *e.RequestID) {
			return
		}
		p.Request = r
	}

	if err := h.deliverer.Deliver(ctx, kind, p); err != nil {
		h.Logger().Warn("notification partially delivered",
			"kind", kind.String(),
			"subject", p.Subject,
			"error", err)
	}
}

// loadFailed logs err and reports whether delivery must be abandoned.
// A missing entity is not fatal.
func (h *NotificationHandler) loadFailed(err error, entity string, id int64) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, library.ErrNotFound) {
		h.Logger().Debug("notification entity gone", "entity", entity, "id", id)
		return false
	}
	h.Logger().Error("load notification entity", "entity", entity, "id", id, "error", err)
	return true
}
