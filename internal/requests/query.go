package requests

import (
	"context"
	"fmt"

	"github.com/vmunix/reqarr/internal/library"
)

// DefaultPageSize is used when a listing does not ask for a page size.
const DefaultPageSize = 10

// Filter names accepted by List.
const (
	FilterAll         = "all"
	FilterApproved    = "approved"
	FilterProcessing  = "processing"
	FilterAvailable   = "available"
	FilterPending     = "pending"
	FilterUnavailable = "unavailable"
)

var notAvailable = []library.MediaStatus{
	library.MediaStatusUnknown,
	library.MediaStatusPending,
	library.MediaStatusProcessing,
	library.MediaStatusPartiallyAvailable,
}

// filterFor maps a filter name to request and media status sets.
func filterFor(name string) (library.RequestFilter, error) {
	var f library.RequestFilter
	switch name {
	case "", FilterAll:
	case FilterApproved:
		f.Statuses = []library.RequestStatus{library.RequestStatusApproved}
	case FilterProcessing:
		f.Statuses = []library.RequestStatus{library.RequestStatusApproved}
		f.MediaStatuses = notAvailable
	case FilterAvailable:
		f.Statuses = []library.RequestStatus{library.RequestStatusApproved}
		f.MediaStatuses = []library.MediaStatus{library.MediaStatusAvailable}
	case FilterPending:
		f.Statuses = []library.RequestStatus{library.RequestStatusPending}
	case FilterUnavailable:
		f.Statuses = []library.RequestStatus{library.RequestStatusPending, library.RequestStatusApproved}
		f.MediaStatuses = notAvailable
	default:
		return f, fmt.Errorf("%w: unknown filter %q", ErrInvalid, name)
	}
	return f, nil
}

// ListQuery selects a page of requests.
type ListQuery struct {
	Filter      string
	Sort        library.RequestSort
	Take        int
	Skip        int
	RequestedBy *int64
}

// Page is one page of a request listing.
type Page struct {
	Results  []*library.Request `json:"results"`
	Total    int                `json:"total"`
	PageSize int                `json:"page_size"`
	Page     int                `json:"page"`
	Pages    int                `json:"pages"`
}

// List returns a page of requests. Users who may not view others' requests
// only see their own.
func (s *Service) List(_ context.Context, actor *library.User, q ListQuery) (*Page, error) {
	f, err := filterFor(q.Filter)
	if err != nil {
		return nil, err
	}
	switch q.Sort {
	case "", library.SortAdded, library.SortModified:
		f.Sort = q.Sort
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalid, q.Sort)
	}
	if q.Take <= 0 {
		q.Take = DefaultPageSize
	}
	if q.Skip < 0 {
		q.Skip = 0
	}
	f.Limit, f.Offset = q.Take, q.Skip

	f.RequestedBy = q.RequestedBy
	if !canView(actor) {
		id := actor.ID
		f.RequestedBy = &id
	}

	results, total, err := s.store.ListRequests(f)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []*library.Request{}
	}
	return &Page{
		Results:  results,
		Total:    total,
		PageSize: q.Take,
		Page:     q.Skip/q.Take + 1,
		Pages:    (total + q.Take - 1) / q.Take,
	}, nil
}

// Get returns one request. Users who may not view others' requests can only
// read their own.
func (s *Service) Get(_ context.Context, actor *library.User, id int64) (*library.Request, error) {
	req, err := s.store.GetRequest(id)
	if err != nil {
		return nil, err
	}
	if req.RequestedBy != actor.ID && !canView(actor) {
		return nil, fmt.Errorf("%w: request %d belongs to another user", ErrForbidden, id)
	}
	return req, nil
}

// Counts summarizes requests by status.
type Counts struct {
	Pending    int `json:"pending"`
	Approved   int `json:"approved"`
	Processing int `json:"processing"`
	Available  int `json:"available"`
}

// Count returns request counts across all users.
func (s *Service) Count(_ context.Context) (*Counts, error) {
	var c Counts
	for _, q := range []struct {
		filter string
		dst    *int
	}{
		{FilterPending, &c.Pending},
		{FilterApproved, &c.Approved},
		{FilterProcessing, &c.Processing},
		{FilterAvailable, &c.Available},
	} {
		f, err := filterFor(q.filter)
		if err != nil {
			return nil, err
		}
		n, err := s.store.CountRequests(f)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", q.filter, err)
		}
		*q.dst = n
	}
	return &c, nil
}
