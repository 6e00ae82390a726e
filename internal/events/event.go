// Package events carries request lifecycle events between components and
// keeps a persisted log of them.
package events

import (
	"strconv"
	"time"
)

// Entity kinds an event can be about. Every event concerns exactly one
// request or one media item.
const (
	EntityRequest = "request"
	EntityMedia   = "media"
)

// Event is a lifecycle change, addressed by the entity it concerns.
type Event interface {
	EventType() string
	EntityType() string
	EntityID() int64
	OccurredAt() time.Time
}

// BaseEvent is the envelope embedded in every concrete event. Its fields
// are the columns of the event log.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        int64     `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() int64       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an envelope with the current time.
func NewBaseEvent(eventType, entityType string, entityID int64) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Entity:    entityType,
		ID:        entityID,
		Timestamp: time.Now(),
	}
}

// ForRequest stamps an envelope about request id.
func ForRequest(eventType string, id int64) BaseEvent {
	return NewBaseEvent(eventType, EntityRequest, id)
}

// ForMedia stamps an envelope about media item id.
func ForMedia(eventType string, id int64) BaseEvent {
	return NewBaseEvent(eventType, EntityMedia, id)
}

// Subject is the "entity:id" label of e, e.g. "request:12".
func Subject(e Event) string {
	return e.EntityType() + ":" + strconv.FormatInt(e.EntityID(), 10)
}
