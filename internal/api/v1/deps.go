package v1

import (
	"context"
	"errors"

	"github.com/vmunix/reqarr/internal/dispatch"
	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/requests"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// RequestService runs request operations on behalf of an authenticated user.
type RequestService interface {
	Create(ctx context.Context, actor *library.User, in requests.CreateInput) (*library.Request, error)
	List(ctx context.Context, actor *library.User, q requests.ListQuery) (*requests.Page, error)
	Count(ctx context.Context) (*requests.Counts, error)
	Get(ctx context.Context, actor *library.User, id int64) (*library.Request, error)
	Edit(ctx context.Context, actor *library.User, id int64, in requests.EditInput) (*library.Request, error)
	Delete(ctx context.Context, actor *library.User, id int64) error
	SetStatus(ctx context.Context, actor *library.User, id int64, status library.RequestStatus) (*library.Request, error)
	Retry(ctx context.Context, actor *library.User, id int64) (*library.Request, error)
}

// Users resolves API keys to accounts.
type Users interface {
	GetUserByAPIKey(key string) (*library.User, error)
}

// MediaReader loads media records.
type MediaReader interface {
	GetMedia(id int64) (*library.Media, error)
}

// PoolStats reports dispatch pool counters.
type PoolStats interface {
	Stats() dispatch.PoolStats
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Requests RequestService
	Users    Users
	Media    MediaReader

	// Optional dependencies (nil if not configured)
	EventLog *events.EventLog
	Bus      *events.Bus
	Pool     PoolStats
	Version  string
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Requests == nil {
		return errors.New("request service is required")
	}
	if d.Users == nil {
		return errors.New("user store is required")
	}
	if d.Media == nil {
		return errors.New("media store is required")
	}
	return nil
}
