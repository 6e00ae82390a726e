package requests

import "errors"

var (
	// ErrNoSeasons is returned when every requested season is already
	// claimed by another request. Nothing was created or changed; callers
	// treat it as a no-op.
	ErrNoSeasons = errors.New("no seasons available to request")

	// ErrDuplicate is returned when the user already requested the movie in this variant.
	ErrDuplicate = errors.New("request for this media already exists")

	// ErrForbidden is returned when the acting user lacks the permission for an operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalid is returned for malformed input.
	ErrInvalid = errors.New("invalid request")
)
