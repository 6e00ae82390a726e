// Package handlers holds background consumers of the event bus.
package handlers

import (
	"context"
	"log/slog"

	"github.com/vmunix/reqarr/internal/events"
)

// Handler processes events of specific types.
type Handler interface {
	// Start begins processing events (blocking).
	Start(ctx context.Context) error

	// Name returns handler name for logging.
	Name() string
}

// BaseHandler provides common handler functionality.
type BaseHandler struct {
	bus    *events.Bus
	logger *slog.Logger
}

// NewBaseHandler creates a base handler.
func NewBaseHandler(bus *events.Bus, logger *slog.Logger) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{
		bus:    bus,
		logger: logger,
	}
}

// Bus returns the event bus.
func (h *BaseHandler) Bus() *events.Bus {
	return h.bus
}

// Logger returns the handler's logger.
func (h *BaseHandler) Logger() *slog.Logger {
	return h.logger
}

// consume reads ch until it closes or ctx is done, passing each event to fn.
func (h *BaseHandler) consume(ctx context.Context, ch <-chan events.Event, fn func(context.Context, events.Event)) error {
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return nil // bus closed
			}
			fn(ctx, e)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
