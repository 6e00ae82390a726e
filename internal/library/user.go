package library

import "time"

// Permission is a bit set of user capabilities.
type Permission uint32

const (
	PermissionNone               Permission = 0
	PermissionAdmin              Permission = 2
	PermissionManageSettings     Permission = 4
	PermissionManageUsers        Permission = 8
	PermissionManageRequests     Permission = 16
	PermissionRequest            Permission = 32
	PermissionVote               Permission = 64
	PermissionAutoApprove        Permission = 128
	PermissionAutoApproveMovie   Permission = 256
	PermissionAutoApproveTV      Permission = 512
	PermissionRequest4K          Permission = 1024
	PermissionRequest4KMovie     Permission = 2048
	PermissionRequest4KTV        Permission = 4096
	PermissionRequestAdvanced    Permission = 8192
	PermissionRequestView        Permission = 16384
	PermissionAutoApprove4K      Permission = 32768
	PermissionAutoApprove4KMovie Permission = 65536
	PermissionAutoApprove4KTV    Permission = 131072
)

// Has reports whether p grants perm. Admin grants everything.
func (p Permission) Has(perm Permission) bool {
	if p&PermissionAdmin != 0 {
		return true
	}
	return perm != PermissionNone && p&perm == perm
}

// User is an account that can create or manage requests.
type User struct {
	ID          int64
	Email       string
	DisplayName string
	Permissions Permission
	APIKey      *string
	CreatedAt   time.Time
}

// HasAny reports whether the user holds at least one of perms.
func (u *User) HasAny(perms ...Permission) bool {
	if u == nil {
		return false
	}
	for _, p := range perms {
		if u.Permissions.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether the user holds every one of perms.
func (u *User) HasAll(perms ...Permission) bool {
	if u == nil {
		return false
	}
	for _, p := range perms {
		if !u.Permissions.Has(p) {
			return false
		}
	}
	return true
}
