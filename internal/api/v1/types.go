package v1

import (
	"time"

	"github.com/vmunix/reqarr/internal/dispatch"
	"github.com/vmunix/reqarr/internal/library"
)

type seasonResponse struct {
	SeasonNumber int    `json:"season_number"`
	Status       string `json:"status"`
}

// requestResponse is the API representation of a request.
type requestResponse struct {
	ID                int64            `json:"id"`
	MediaID           int64            `json:"media_id"`
	Type              string           `json:"type"`
	Status            string           `json:"status"`
	Is4K              bool             `json:"is4k"`
	RequestedBy       int64            `json:"requested_by"`
	ModifiedBy        *int64           `json:"modified_by,omitempty"`
	ServerID          *int64           `json:"server_id,omitempty"`
	ProfileID         *int64           `json:"profile_id,omitempty"`
	RootFolder        *string          `json:"root_folder,omitempty"`
	LanguageProfileID *int64           `json:"language_profile_id,omitempty"`
	Seasons           []seasonResponse `json:"seasons,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	// DispatchError is set when the change was saved but could not be
	// handed to the acquisition service.
	DispatchError string `json:"dispatch_error,omitempty"`
}

func requestToResponse(r *library.Request) requestResponse {
	resp := requestResponse{
		ID:                r.ID,
		MediaID:           r.MediaID,
		Type:              string(r.Type),
		Status:            string(r.Status),
		Is4K:              r.Is4K,
		RequestedBy:       r.RequestedBy,
		ModifiedBy:        r.ModifiedBy,
		ServerID:          r.ServerID,
		ProfileID:         r.ProfileID,
		RootFolder:        r.RootFolder,
		LanguageProfileID: r.LanguageProfileID,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	for _, s := range r.Seasons {
		resp.Seasons = append(resp.Seasons, seasonResponse{SeasonNumber: s.SeasonNumber, Status: string(s.Status)})
	}
	return resp
}

type pageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"page_size"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}

// listRequestsResponse is the response for GET /requests.
type listRequestsResponse struct {
	PageInfo pageInfo          `json:"page_info"`
	Results  []requestResponse `json:"results"`
}

// createRequestBody is the body of POST /requests. MediaID is the TMDB id.
type createRequestBody struct {
	MediaType         string  `json:"media_type"`
	MediaID           int64   `json:"media_id"`
	TVDBID            *int64  `json:"tvdb_id,omitempty"`
	Is4K              bool    `json:"is4k"`
	Seasons           []int   `json:"seasons,omitempty"`
	ServerID          *int64  `json:"server_id,omitempty"`
	ProfileID         *int64  `json:"profile_id,omitempty"`
	RootFolder        *string `json:"root_folder,omitempty"`
	LanguageProfileID *int64  `json:"language_profile_id,omitempty"`
	UserID            *int64  `json:"user_id,omitempty"`
}

// editRequestBody is the body of PUT /requests/{id}.
type editRequestBody struct {
	Seasons           []int   `json:"seasons,omitempty"`
	ServerID          *int64  `json:"server_id,omitempty"`
	ProfileID         *int64  `json:"profile_id,omitempty"`
	RootFolder        *string `json:"root_folder,omitempty"`
	LanguageProfileID *int64  `json:"language_profile_id,omitempty"`
	UserID            *int64  `json:"user_id,omitempty"`
}

type trackResponse struct {
	Status              string  `json:"status"`
	ServiceID           *int64  `json:"service_id,omitempty"`
	ExternalServiceID   *int64  `json:"external_service_id,omitempty"`
	ExternalServiceSlug *string `json:"external_service_slug,omitempty"`
}

// mediaResponse is the API representation of a media item.
type mediaResponse struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	TMDBID    int64         `json:"tmdb_id"`
	TVDBID    *int64        `json:"tvdb_id,omitempty"`
	Standard  trackResponse `json:"standard"`
	FourK     trackResponse `json:"4k"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func mediaToResponse(m *library.Media) mediaResponse {
	track := func(v library.Variant) trackResponse {
		t := m.Track(v)
		return trackResponse{
			Status:              string(m.StatusFor(v)),
			ServiceID:           t.ServiceID,
			ExternalServiceID:   t.ExternalServiceID,
			ExternalServiceSlug: t.ExternalServiceSlug,
		}
	}
	return mediaResponse{
		ID:        m.ID,
		Type:      string(m.Type),
		TMDBID:    m.TMDBID,
		TVDBID:    m.TVDBID,
		Standard:  track(library.VariantStandard),
		FourK:     track(library.Variant4K),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Status        string              `json:"status"`
	Version       string              `json:"version"`
	User          string              `json:"user"`
	Dispatch      *dispatch.PoolStats `json:"dispatch,omitempty"`
	EventsDropped int64               `json:"events_dropped"`
}

// EventResponse is the API representation of a logged event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	OccurredAt string `json:"occurred_at"`
	Data       any    `json:"data,omitempty"`
}

type listEventsResponse struct {
	Items []EventResponse `json:"items"`
	Limit int             `json:"limit"`
}
