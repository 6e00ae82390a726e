package dispatch

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a dispatch stopped before submission.
type ErrorKind string

const (
	KindConfig       ErrorKind = "config"       // instance present but unusable
	KindPrecondition ErrorKind = "precondition" // title must not be submitted
	KindBackend      ErrorKind = "backend"      // metadata or queueing failure, or a cancelled lock wait
	KindConsistency  ErrorKind = "consistency"  // persistence read or write failed
)

var (
	// ErrAlreadyAvailable is returned when the media's variant is already available.
	ErrAlreadyAvailable = errors.New("media already available")

	// ErrNoTVDBID is returned when a series cannot be identified for the series service.
	// The media and its request have been removed when this is returned.
	ErrNoTVDBID = errors.New("series has no tvdb id")

	// ErrPoolClosed is returned when the worker pool no longer accepts jobs.
	ErrPoolClosed = errors.New("dispatch pool closed")

	// ErrQueueFull is returned when the worker pool's queue is full.
	ErrQueueFull = errors.New("dispatch queue full")
)

// Error is the single error a dispatch returns for failures before the
// submission is handed to the worker pool.
type Error struct {
	Kind      ErrorKind
	RequestID int64
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch request %d: %s: %v", e.RequestID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a dispatch error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
