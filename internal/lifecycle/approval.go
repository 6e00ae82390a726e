// Package lifecycle is the request state machine. It computes initial statuses,
// effective season sets and media status transitions without touching storage;
// callers persist the result and execute the returned effects.
package lifecycle

import "github.com/vmunix/reqarr/internal/library"

// autoApprovePermissions returns the permissions that let a user skip review
// for a request of typ and variant.
func autoApprovePermissions(typ library.MediaType, is4k bool) []library.Permission {
	switch {
	case is4k && typ == library.MediaTypeMovie:
		return []library.Permission{library.PermissionAutoApprove4K, library.PermissionAutoApprove4KMovie, library.PermissionManageRequests}
	case is4k:
		return []library.Permission{library.PermissionAutoApprove4K, library.PermissionAutoApprove4KTV, library.PermissionManageRequests}
	case typ == library.MediaTypeMovie:
		return []library.Permission{library.PermissionAutoApprove, library.PermissionAutoApproveMovie, library.PermissionManageRequests}
	default:
		return []library.Permission{library.PermissionAutoApprove, library.PermissionAutoApproveTV, library.PermissionManageRequests}
	}
}

// CanAutoApprove reports whether requests by u for typ and variant start approved.
func CanAutoApprove(u *library.User, typ library.MediaType, is4k bool) bool {
	return u.HasAny(autoApprovePermissions(typ, is4k)...)
}

// CanRequest reports whether u may create a request of typ and variant at all.
func CanRequest(u *library.User, typ library.MediaType, is4k bool) bool {
	if !u.HasAny(library.PermissionRequest) {
		return false
	}
	if !is4k {
		return true
	}
	if typ == library.MediaTypeMovie {
		return u.HasAny(library.PermissionRequest4K, library.PermissionRequest4KMovie)
	}
	return u.HasAny(library.PermissionRequest4K, library.PermissionRequest4KTV)
}

// InitialStatus returns the status a new request by u starts in, and the
// modifiedBy value to record with it. modifiedBy is set only for auto-approval.
func InitialStatus(u *library.User, typ library.MediaType, is4k bool) (library.RequestStatus, *int64) {
	if CanAutoApprove(u, typ, is4k) {
		id := u.ID
		return library.RequestStatusApproved, &id
	}
	return library.RequestStatusPending, nil
}
