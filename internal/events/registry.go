package events

import (
	"encoding/json"
	"fmt"
)

// EventFactory creates a new zero-value event of a specific type.
type EventFactory func() Event

// Registry maps event types to their factories for deserialization.
type Registry struct {
	factories map[string]EventFactory
}

// NewRegistry creates a new event registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]EventFactory),
	}
}

// Register adds an event type to the registry.
func (r *Registry) Register(eventType string, factory EventFactory) {
	r.factories[eventType] = factory
}

// Unmarshal deserializes a raw event into its concrete type.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	factory, ok := r.factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", raw.EventType)
	}

	event := factory()
	if err := json.Unmarshal([]byte(raw.Payload), event); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}

	return event, nil
}

// DefaultRegistry returns a registry with all standard event types registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Request events
	r.Register(EventRequestCreated, func() Event { return &RequestCreated{} })
	r.Register(EventRequestStatusChanged, func() Event { return &RequestStatusChanged{} })
	r.Register(EventRequestUpdated, func() Event { return &RequestUpdated{} })
	r.Register(EventRequestDeleted, func() Event { return &RequestDeleted{} })
	r.Register(EventRequestRetried, func() Event { return &RequestRetried{} })

	// Media events
	r.Register(EventMediaStatusChanged, func() Event { return &MediaStatusChanged{} })

	// Dispatch events
	r.Register(EventDispatchSubmitted, func() Event { return &DispatchSubmitted{} })
	r.Register(EventDispatchSucceeded, func() Event { return &DispatchSucceeded{} })
	r.Register(EventDispatchFailed, func() Event { return &DispatchFailed{} })
	r.Register(EventDispatchSkipped, func() Event { return &DispatchSkipped{} })

	r.Register(EventNotificationRequested, func() Event { return &NotificationRequested{} })

	return r
}
