package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// Bus fans request lifecycle events out to subscribers and, when an
// EventLog is attached, persists every published event first.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]chan Event // eventType -> channels
	allSubs []chan Event
	log     *EventLog // may be nil
	logger  *slog.Logger
	closed  bool
	dropped atomic.Int64
}

// NewBus creates a new event bus.
// The EventLog is optional - pass nil to disable persistence.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string][]chan Event),
		log:    log,
		logger: logger,
	}
}

// Publish persists e and delivers it to matching subscribers without
// blocking. Subscribers with a full buffer miss the event.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil
	}
	targets := make([]chan Event, 0, len(b.subs[e.EventType()])+len(b.allSubs))
	targets = append(targets, b.subs[e.EventType()]...)
	targets = append(targets, b.allSubs...)
	b.mu.RUnlock()

	if b.log != nil {
		if _, err := b.log.Append(e); err != nil {
			// Delivery still goes ahead.
			b.logger.Error("failed to persist event", "type", e.EventType(), "error", err)
		}
	}

	for _, ch := range targets {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
			b.logger.Warn("subscriber channel full, dropping event",
				"type", e.EventType(),
				"subject", Subject(e))
		}
	}

	return nil
}

// Subscribe returns a channel receiving events of the given types.
func (b *Bus) Subscribe(bufferSize int, eventTypes ...string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	for _, t := range eventTypes {
		b.subs[t] = append(b.subs[t], ch)
	}
	return ch
}

// SubscribeAll returns a channel for all events.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Unsubscribe removes a subscription channel and closes it.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found chan Event
	match := func(sub chan Event) bool {
		if sub == ch {
			found = sub
			return true
		}
		return false
	}
	for t, subs := range b.subs {
		b.subs[t] = slices.DeleteFunc(subs, match)
		if len(b.subs[t]) == 0 {
			delete(b.subs, t)
		}
	}
	b.allSubs = slices.DeleteFunc(b.allSubs, match)

	if found != nil {
		close(found)
	}
}

// Dropped reports how many deliveries were skipped because a subscriber
// was not keeping up.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	seen := make(map[chan Event]bool)
	for _, subs := range b.subs {
		for _, ch := range subs {
			if !seen[ch] {
				seen[ch] = true
				close(ch)
			}
		}
	}
	b.subs = nil

	for _, ch := range b.allSubs {
		close(ch)
	}
	b.allSubs = nil

	return nil
}
