package library

import (
	"database/sql"
	"testing"

	"github.com/vmunix/reqarr/internal/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func mustUser(t *testing.T, s *Store, email string, perms Permission) *User {
	t.Helper()
	u := &User{Email: email, DisplayName: email, Permissions: perms}
	if err := s.AddUser(u); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	return u
}

func mustMedia(t *testing.T, s *Store, typ MediaType, tmdbID int64) *Media {
	t.Helper()
	m := &Media{Type: typ, TMDBID: tmdbID}
	if err := s.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	return m
}

func seasons(status RequestStatus, numbers ...int) []*SeasonRequest {
	out := make([]*SeasonRequest, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, &SeasonRequest{SeasonNumber: n, Status: status})
	}
	return out
}
