package library

import (
	"errors"
	"testing"
)

func TestPermission_Has(t *testing.T) {
	tests := []struct {
		name  string
		perms Permission
		check Permission
		want  bool
	}{
		{"exact bit", PermissionRequest, PermissionRequest, true},
		{"missing bit", PermissionRequest, PermissionAutoApprove, false},
		{"admin implies all", PermissionAdmin, PermissionAutoApprove4KTV, true},
		{"combined mask needs all bits", PermissionRequest | PermissionVote, PermissionRequest | PermissionAutoApprove, false},
		{"none never granted", PermissionRequest, PermissionNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.perms.Has(tt.check); got != tt.want {
				t.Errorf("Has = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_HasAnyHasAll(t *testing.T) {
	u := &User{Permissions: PermissionManageRequests | PermissionRequest}

	if !u.HasAny(PermissionAutoApprove, PermissionManageRequests) {
		t.Error("HasAny should match manage requests")
	}
	if u.HasAll(PermissionRequest, PermissionAutoApprove) {
		t.Error("HasAll should fail without auto approve")
	}
	var nilUser *User
	if nilUser.HasAny(PermissionRequest) {
		t.Error("nil user has no permissions")
	}
}

func TestStore_Users(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	admin := &User{Email: "admin@example.com", Permissions: PermissionAdmin, APIKey: ptr("secret")}
	if err := store.AddUser(admin); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	mustUser(t, store, "b@example.com", PermissionRequest)

	first, err := store.FirstUser()
	if err != nil {
		t.Fatalf("FirstUser: %v", err)
	}
	if first.ID != admin.ID {
		t.Errorf("FirstUser = %d, want %d", first.ID, admin.ID)
	}

	byKey, err := store.GetUserByAPIKey("secret")
	if err != nil {
		t.Fatalf("GetUserByAPIKey: %v", err)
	}
	if byKey.Email != "admin@example.com" || byKey.Permissions != PermissionAdmin {
		t.Errorf("got %+v", byKey)
	}
	if _, err := store.GetUserByAPIKey("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.AddUser(&User{Email: "admin@example.com"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	users, err := store.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len = %d, want 2", len(users))
	}
}

func TestStore_FirstAdmin(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if _, err := store.FirstAdmin(); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty store: expected ErrNotFound, got %v", err)
	}

	plain := mustUser(t, store, "plain@example.com", PermissionRequest|PermissionAutoApprove)
	if _, err := store.FirstAdmin(); !errors.Is(err, ErrNotFound) {
		t.Errorf("no admins: expected ErrNotFound, got %v", err)
	}
	admin := mustUser(t, store, "admin@example.com", PermissionAdmin|PermissionRequest)
	mustUser(t, store, "second-admin@example.com", PermissionAdmin)

	got, err := store.FirstAdmin()
	if err != nil {
		t.Fatalf("FirstAdmin: %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("FirstAdmin = %d, want %d (plain user is %d)", got.ID, admin.ID, plain.ID)
	}
}

func TestStore_FirstUser_Empty(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if _, err := store.FirstUser(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteUser_Cascades(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	owner := mustUser(t, store, "owner@example.com", PermissionRequest)
	manager := mustUser(t, store, "mgr@example.com", PermissionManageRequests)
	m := mustMedia(t, store, MediaTypeMovie, 550)

	owned := &Request{MediaID: m.ID, Type: MediaTypeMovie, Status: RequestStatusPending, RequestedBy: owner.ID}
	if err := store.AddRequest(owned); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}
	modified := &Request{MediaID: m.ID, Type: MediaTypeMovie, Status: RequestStatusApproved,
		RequestedBy: manager.ID, ModifiedBy: ptr(owner.ID), Is4K: true}
	if err := store.AddRequest(modified); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}

	if err := store.DeleteUser(owner.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := store.GetRequest(owned.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("owned request: expected ErrNotFound, got %v", err)
	}
	got, err := store.GetRequest(modified.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.ModifiedBy != nil {
		t.Errorf("ModifiedBy = %v, want nil", *got.ModifiedBy)
	}
	if err := store.DeleteUser(owner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
