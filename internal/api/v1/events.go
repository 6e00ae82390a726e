package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vmunix/reqarr/internal/events"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	const maxLimit = 1000
	if limit > maxLimit {
		limit = maxLimit
	}

	logged, err := s.deps.EventLog.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	resp := listEventsResponse{
		Items: make([]EventResponse, len(logged)),
		Limit: limit,
	}
	for i, e := range logged {
		resp.Items[i] = s.eventToResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listRequestEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	// Visibility follows the request itself.
	if _, err := s.deps.Requests.Get(r.Context(), userFrom(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}

	logged, err := s.deps.EventLog.ForEntity(events.EntityRequest, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	resp := listEventsResponse{
		Items: make([]EventResponse, len(logged)),
		Limit: len(logged),
	}
	for i, e := range logged {
		resp.Items[i] = s.eventToResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) eventToResponse(e events.RawEvent) EventResponse {
	resp := EventResponse{
		ID:         e.ID,
		EventType:  e.EventType,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OccurredAt: e.OccurredAt.Format(time.RFC3339),
	}
	// Unknown event types fall back to the stored payload.
	if ev, err := s.registry.Unmarshal(e); err == nil {
		resp.Data = ev
	} else if json.Valid([]byte(e.Payload)) {
		resp.Data = json.RawMessage(e.Payload)
	}
	return resp
}
