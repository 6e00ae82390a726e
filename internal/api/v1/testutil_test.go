package v1

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reqarr/internal/dispatch"
	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/migrations"
	"github.com/vmunix/reqarr/internal/requests"
	"github.com/vmunix/reqarr/internal/tmdb"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err, "apply schema")
	return db
}

type fakeMetadata struct{}

func (fakeMetadata) GetMovie(_ context.Context, id int64) (*tmdb.Movie, error) {
	if id != 603 {
		return nil, tmdb.ErrNotFound
	}
	return &tmdb.Movie{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31"}, nil
}

func (fakeMetadata) GetTVShow(_ context.Context, id int64) (*tmdb.TVShow, error) {
	if id != 1399 {
		return nil, tmdb.ErrNotFound
	}
	tvdb := int64(121361)
	return &tmdb.TVShow{ID: 1399, Name: "Game of Thrones", ExternalIDs: tmdb.ExternalIDs{TVDBID: &tvdb}}, nil
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (d *fakeDispatcher) Dispatch(context.Context, *library.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.err
}

type fakePool struct{}

func (fakePool) Stats() dispatch.PoolStats { return dispatch.PoolStats{Workers: 4, Completed: 7} }

const (
	adminKey = "admin-key"
	userKey  = "user-key"
	otherKey = "other-key"
)

type testAPI struct {
	srv      *httptest.Server
	store    *library.Store
	dispatch *fakeDispatcher
	admin    *library.User
	user     *library.User
	other    *library.User
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := setupTestDB(t)
	store := library.NewStore(db)

	add := func(email, key string, perms library.Permission) *library.User {
		u := &library.User{Email: email, APIKey: &key, Permissions: perms}
		require.NoError(t, store.AddUser(u))
		return u
	}
	api := &testAPI{
		store:    store,
		dispatch: &fakeDispatcher{},
		admin:    add("admin@example.com", adminKey, library.PermissionAdmin),
		user:     add("user@example.com", userKey, library.PermissionRequest),
		other:    add("other@example.com", otherKey, library.PermissionRequest),
	}

	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, nil)
	t.Cleanup(func() { _ = bus.Close() })

	svc := requests.NewService(store, fakeMetadata{}, api.dispatch, nil, requests.WithEvents(bus))
	server, err := New(ServerDeps{
		Requests: svc,
		Users:    store,
		Media:    store,
		EventLog: eventLog,
		Bus:      bus,
		Pool:     fakePool{},
		Version:  "test",
	}, nil)
	require.NoError(t, err)

	api.srv = httptest.NewServer(server.Handler())
	t.Cleanup(api.srv.Close)
	return api
}

// do sends a request as the holder of key and decodes a JSON response into out.
func (a *testAPI) do(t *testing.T, key, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("X-Api-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
