// Package library persists media, requests, season requests and users.
package library

import (
	"time"
)

// MediaType distinguishes movies from series.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// MediaStatus is the availability status of one variant of a media item.
type MediaStatus string

const (
	MediaStatusUnknown            MediaStatus = "unknown"
	MediaStatusPending            MediaStatus = "pending"
	MediaStatusProcessing         MediaStatus = "processing"
	MediaStatusPartiallyAvailable MediaStatus = "partially_available"
	MediaStatusAvailable          MediaStatus = "available"
)

// AllMediaStatuses lists every media status in lifecycle order.
var AllMediaStatuses = []MediaStatus{
	MediaStatusUnknown,
	MediaStatusPending,
	MediaStatusProcessing,
	MediaStatusPartiallyAvailable,
	MediaStatusAvailable,
}

// RequestStatus is the approval status of a request or season request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusDeclined RequestStatus = "declined"
)

// AllRequestStatuses lists every request status.
var AllRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusDeclined,
}

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusDeclined:
		return true
	}
	return false
}

// Variant selects the standard or 4K fulfillment track of a media item.
type Variant int

const (
	VariantStandard Variant = iota
	Variant4K
)

// VariantOf maps a request's 4K flag to its variant.
func VariantOf(is4k bool) Variant {
	if is4k {
		return Variant4K
	}
	return VariantStandard
}

// Is4K reports whether v is the 4K track.
func (v Variant) Is4K() bool { return v == Variant4K }

func (v Variant) String() string {
	if v == Variant4K {
		return "4k"
	}
	return "standard"
}

// Track is one independent fulfillment track of a media item.
type Track struct {
	Status              MediaStatus
	ServiceID           *int64  // acquisition instance that fulfilled it
	ExternalServiceID   *int64  // record id inside that instance
	ExternalServiceSlug *string // title slug inside that instance
}

// Media is the parent record every request for a title points at.
type Media struct {
	ID        int64
	Type      MediaType
	TMDBID    int64
	TVDBID    *int64
	Standard  Track
	FourK     Track
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Track returns the track for v.
func (m *Media) Track(v Variant) *Track {
	if v == Variant4K {
		return &m.FourK
	}
	return &m.Standard
}

// StatusFor returns the status of the v track. A zero status reads as unknown.
func (m *Media) StatusFor(v Variant) MediaStatus {
	if s := m.Track(v).Status; s != "" {
		return s
	}
	return MediaStatusUnknown
}

// SetStatus sets the status of the v track.
func (m *Media) SetStatus(v Variant, s MediaStatus) {
	m.Track(v).Status = s
}

// Link records which acquisition instance holds the v track and under which record.
func (m *Media) Link(v Variant, serviceID, externalID int64, slug string) {
	t := m.Track(v)
	t.ServiceID = &serviceID
	t.ExternalServiceID = &externalID
	t.ExternalServiceSlug = &slug
}

// Request is a user's request for one variant of a media item.
type Request struct {
	ID                int64
	MediaID           int64
	Type              MediaType
	Status            RequestStatus
	Is4K              bool
	RequestedBy       int64
	ModifiedBy        *int64
	ServerID          *int64
	ProfileID         *int64
	RootFolder        *string
	LanguageProfileID *int64
	Seasons           []*SeasonRequest // non-empty iff Type is tv
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Variant returns the track the request targets.
func (r *Request) Variant() Variant { return VariantOf(r.Is4K) }

// SeasonNumbers returns the season numbers in request order.
func (r *Request) SeasonNumbers() []int {
	out := make([]int, 0, len(r.Seasons))
	for _, s := range r.Seasons {
		out = append(out, s.SeasonNumber)
	}
	return out
}

// SeasonRequest is one season of a tv request.
type SeasonRequest struct {
	ID           int64
	RequestID    int64
	SeasonNumber int
	Status       RequestStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
