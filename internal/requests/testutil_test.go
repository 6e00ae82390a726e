package requests

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/migrations"
	"github.com/vmunix/reqarr/internal/notify"
	"github.com/vmunix/reqarr/internal/tmdb"
)

func setupStore(t *testing.T) *library.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)
	return library.NewStore(db)
}

func ptr[T any](v T) *T { return &v }

type fakeMetadata struct {
	movies map[int64]*tmdb.Movie
	shows  map[int64]*tmdb.TVShow
}

func (m *fakeMetadata) GetMovie(_ context.Context, id int64) (*tmdb.Movie, error) {
	if mv, ok := m.movies[id]; ok {
		return mv, nil
	}
	return nil, tmdb.ErrNotFound
}

func (m *fakeMetadata) GetTVShow(_ context.Context, id int64) (*tmdb.TVShow, error) {
	if s, ok := m.shows[id]; ok {
		return s, nil
	}
	return nil, tmdb.ErrNotFound
}

type sent struct {
	kind notify.Kind
	p    notify.Payload
}

type captureSink struct {
	mu   sync.Mutex
	sent []sent
}

func (s *captureSink) Send(_ context.Context, kind notify.Kind, p notify.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{kind, p})
}

func (s *captureSink) kinds() []notify.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notify.Kind, len(s.sent))
	for i, x := range s.sent {
		out[i] = x.kind
	}
	return out
}

type captureDispatcher struct {
	mu   sync.Mutex
	reqs []*library.Request
	err  error
}

func (d *captureDispatcher) Dispatch(_ context.Context, req *library.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reqs = append(d.reqs, req)
	return d.err
}

func (d *captureDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.reqs)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

const (
	movieID   = 603
	showID    = 1399
	unknownID = 999999
)

type env struct {
	store    *library.Store
	svc      *Service
	sink     *captureSink
	dispatch *captureDispatcher
	events   *capturePublisher

	admin   *library.User
	manager *library.User
	user    *library.User
	other   *library.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := setupStore(t)
	meta := &fakeMetadata{
		movies: map[int64]*tmdb.Movie{
			movieID: {ID: movieID, Title: "The Matrix", Overview: "A hacker learns the truth.", ReleaseDate: "1999-03-31"},
		},
		shows: map[int64]*tmdb.TVShow{
			showID: {ID: showID, Name: "Game of Thrones", Overview: "Seven kingdoms.", ExternalIDs: tmdb.ExternalIDs{TVDBID: ptr(int64(121361))}},
		},
	}
	e := &env{
		store:    store,
		sink:     &captureSink{},
		dispatch: &captureDispatcher{},
		events:   &capturePublisher{},
	}
	e.svc = NewService(store, meta, e.dispatch, nil, WithNotifier(e.sink), WithEvents(e.events))

	add := func(email string, perms library.Permission) *library.User {
		u := &library.User{Email: email, Permissions: perms}
		require.NoError(t, store.AddUser(u))
		return u
	}
	e.admin = add("admin@example.com", library.PermissionAdmin)
	e.manager = add("manager@example.com", library.PermissionManageRequests|library.PermissionRequest)
	e.user = add("user@example.com", library.PermissionRequest)
	e.other = add("other@example.com", library.PermissionRequest)
	return e
}

func (e *env) media(t *testing.T, typ library.MediaType, tmdbID int64) *library.Media {
	t.Helper()
	m, err := e.store.GetMediaByTMDB(typ, tmdbID)
	require.NoError(t, err)
	return m
}
