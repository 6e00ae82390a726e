package library

import (
	"errors"
	"testing"
	"time"
)

func TestStore_AddMedia(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Media{Type: MediaTypeMovie, TMDBID: 550}

	before := time.Now()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	after := time.Now()

	if m.ID == 0 {
		t.Error("ID should be set after AddMedia")
	}
	if m.CreatedAt.Before(before) || m.CreatedAt.After(after) {
		t.Errorf("CreatedAt %v not in expected range [%v, %v]", m.CreatedAt, before, after)
	}
	if m.Standard.Status != MediaStatusUnknown || m.FourK.Status != MediaStatusUnknown {
		t.Errorf("statuses = %q/%q, want unknown/unknown", m.Standard.Status, m.FourK.Status)
	}
}

func TestStore_AddMedia_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	mustMedia(t, store, MediaTypeMovie, 550)
	err := store.AddMedia(&Media{Type: MediaTypeMovie, TMDBID: 550})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// same tmdb id, other type is a different title
	if err := store.AddMedia(&Media{Type: MediaTypeTV, TMDBID: 550}); err != nil {
		t.Errorf("AddMedia tv: %v", err)
	}
}

func TestStore_GetMedia_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Media{Type: MediaTypeTV, TMDBID: 1396, TVDBID: ptr(int64(81189))}
	m.Standard.Status = MediaStatusPending
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	got, err := store.GetMedia(m.ID)
	if err != nil {
		t.Fatalf("GetMedia: %v", err)
	}
	if got.Type != MediaTypeTV || got.TMDBID != 1396 {
		t.Errorf("got %s/%d, want tv/1396", got.Type, got.TMDBID)
	}
	if got.TVDBID == nil || *got.TVDBID != 81189 {
		t.Errorf("TVDBID = %v, want 81189", got.TVDBID)
	}
	if got.StatusFor(VariantStandard) != MediaStatusPending {
		t.Errorf("standard status = %q, want pending", got.StatusFor(VariantStandard))
	}
	if got.StatusFor(Variant4K) != MediaStatusUnknown {
		t.Errorf("4k status = %q, want unknown", got.StatusFor(Variant4K))
	}
	if got.Standard.ServiceID != nil {
		t.Errorf("ServiceID should be nil, got %v", *got.Standard.ServiceID)
	}
}

func TestStore_GetMedia_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	_, err := store.GetMedia(999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetMediaByTMDB(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	movie := mustMedia(t, store, MediaTypeMovie, 603)
	mustMedia(t, store, MediaTypeTV, 603)

	got, err := store.GetMediaByTMDB(MediaTypeMovie, 603)
	if err != nil {
		t.Fatalf("GetMediaByTMDB: %v", err)
	}
	if got.ID != movie.ID {
		t.Errorf("ID = %d, want %d", got.ID, movie.ID)
	}

	_, err = store.GetMediaByTMDB(MediaTypeMovie, 604)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_UpdateMedia_LinkPerVariant(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := mustMedia(t, store, MediaTypeMovie, 550)
	m.SetStatus(Variant4K, MediaStatusProcessing)
	m.Link(Variant4K, 2, 77, "fight-club")
	if err := store.UpdateMedia(m); err != nil {
		t.Fatalf("UpdateMedia: %v", err)
	}

	got, err := store.GetMedia(m.ID)
	if err != nil {
		t.Fatalf("GetMedia: %v", err)
	}
	if got.FourK.Status != MediaStatusProcessing {
		t.Errorf("4k status = %q, want processing", got.FourK.Status)
	}
	if got.FourK.ServiceID == nil || *got.FourK.ServiceID != 2 {
		t.Errorf("4k ServiceID = %v, want 2", got.FourK.ServiceID)
	}
	if got.FourK.ExternalServiceID == nil || *got.FourK.ExternalServiceID != 77 {
		t.Errorf("4k ExternalServiceID = %v, want 77", got.FourK.ExternalServiceID)
	}
	if got.FourK.ExternalServiceSlug == nil || *got.FourK.ExternalServiceSlug != "fight-club" {
		t.Errorf("4k slug = %v, want fight-club", got.FourK.ExternalServiceSlug)
	}
	if got.Standard.ServiceID != nil || got.Standard.Status != MediaStatusUnknown {
		t.Error("standard track should be untouched")
	}
}

func TestStore_UpdateMedia_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	err := store.UpdateMedia(&Media{ID: 42, Type: MediaTypeMovie, TMDBID: 1,
		Standard: Track{Status: MediaStatusUnknown}, FourK: Track{Status: MediaStatusUnknown}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteMedia_Cascades(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	u := mustUser(t, store, "a@example.com", PermissionRequest)
	m := mustMedia(t, store, MediaTypeTV, 1396)
	r := &Request{MediaID: m.ID, Type: MediaTypeTV, Status: RequestStatusPending,
		RequestedBy: u.ID, Seasons: seasons(RequestStatusPending, 1, 2)}
	if err := store.AddRequest(r); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}

	if err := store.DeleteMedia(m.ID); err != nil {
		t.Fatalf("DeleteMedia: %v", err)
	}

	if _, err := store.GetMedia(m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("media: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetRequest(r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("request: expected ErrNotFound, got %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM season_requests").Scan(&n); err != nil {
		t.Fatalf("count seasons: %v", err)
	}
	if n != 0 {
		t.Errorf("season rows = %d, want 0", n)
	}

	// idempotent
	if err := store.DeleteMedia(m.ID); err != nil {
		t.Errorf("second DeleteMedia: %v", err)
	}
}
