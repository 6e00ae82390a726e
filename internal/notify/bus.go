package notify

import (
	"context"
	"log/slog"

	"github.com/vmunix/reqarr/internal/events"
)

// Publisher is the part of events.Bus a BusSink needs.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// BusSink turns notifications into events.NotificationRequested so delivery
// happens off the caller's goroutine. Only ids are carried; the consumer
// reloads entities before rendering.
type BusSink struct {
	bus    Publisher
	logger *slog.Logger

	direct      Sink
	directKinds Kind
}

// BusSinkOption configures a BusSink.
type BusSinkOption func(*BusSink)

// WithDirect hands kinds straight to sink instead of the bus. A full
// subscriber buffer drops bus events; these kinds are never dropped.
func WithDirect(sink Sink, kinds Kind) BusSinkOption {
	return func(s *BusSink) {
		s.direct = sink
		s.directKinds = kinds
	}
}

// NewBusSink creates a sink publishing on bus.
func NewBusSink(bus Publisher, logger *slog.Logger, opts ...BusSinkOption) *BusSink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &BusSink{bus: bus, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BusSink) Send(ctx context.Context, kind Kind, p Payload) {
	if s.direct != nil && s.directKinds.Includes(kind) {
		s.direct.Send(ctx, kind, p)
		return
	}
	if err := s.bus.Publish(ctx, ToEvent(kind, p)); err != nil {
		s.logger.Error("publish notification", "kind", kind.String(), "error", err)
	}
}

// ToEvent converts a notification into its event form.
func ToEvent(kind Kind, p Payload) *events.NotificationRequested {
	entity, id := events.EntityMedia, int64(0)
	e := &events.NotificationRequested{
		Kind:    uint32(kind),
		Subject: p.Subject,
		Message: p.Message,
		Image:   p.Image,
	}
	for _, f := range p.Extra {
		e.Extra = append(e.Extra, events.NotificationField{Name: f.Name, Value: f.Value})
	}
	if p.NotifyUser != nil {
		uid := p.NotifyUser.ID
		e.NotifyUserID = &uid
	}
	if p.Media != nil {
		mid := p.Media.ID
		e.MediaID = &mid
		id = mid
	}
	if p.Request != nil {
		rid := p.Request.ID
		e.RequestID = &rid
		entity, id = events.EntityRequest, rid
	}
	e.BaseEvent = events.NewBaseEvent(events.EventNotificationRequested, entity, id)
	return e
}

// FieldsFromEvent converts event extras back into notification fields.
func FieldsFromEvent(e *events.NotificationRequested) []Field {
	if len(e.Extra) == 0 {
		return nil
	}
	out := make([]Field, len(e.Extra))
	for i, f := range e.Extra {
		out[i] = Field{Name: f.Name, Value: f.Value}
	}
	return out
}
