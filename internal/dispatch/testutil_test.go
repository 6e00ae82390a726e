package dispatch

import (
	"context"
	"database/sql"
	"errors"
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

type fixture struct {
	store *library.Store
	admin *library.User
	user  *library.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := setupStore(t)
	// The requester holds id 1 so admin lookups cannot rely on id order.
	user := &library.User{Email: "user@example.com", Permissions: library.PermissionRequest}
	require.NoError(t, s.AddUser(user))
	admin := &library.User{Email: "admin@example.com", Permissions: library.PermissionAdmin}
	require.NoError(t, s.AddUser(admin))
	return &fixture{store: s, admin: admin, user: user}
}

func (f *fixture) media(t *testing.T, typ library.MediaType, tmdbID int64, status library.MediaStatus, is4k bool) *library.Media {
	t.Helper()
	m := &library.Media{Type: typ, TMDBID: tmdbID}
	m.SetStatus(library.VariantOf(is4k), status)
	require.NoError(t, f.store.AddMedia(m))
	return m
}

func (f *fixture) request(t *testing.T, m *library.Media, is4k bool, seasons ...int) *library.Request {
	t.Helper()
	r := &library.Request{
		MediaID:     m.ID,
		Type:        m.Type,
		Status:      library.RequestStatusApproved,
		Is4K:        is4k,
		RequestedBy: f.user.ID,
	}
	for _, n := range seasons {
		r.Seasons = append(r.Seasons, &library.SeasonRequest{SeasonNumber: n, Status: library.RequestStatusApproved})
	}
	require.NoError(t, f.store.AddRequest(r))
	return r
}

// fakeMetadata serves fixed titles.
type fakeMetadata struct {
	movies map[int64]*tmdb.Movie
	shows  map[int64]*tmdb.TVShow
	err    error
}

func (m *fakeMetadata) GetMovie(_ context.Context, id int64) (*tmdb.Movie, error) {
	if m.err != nil {
		return nil, m.err
	}
	if mv, ok := m.movies[id]; ok {
		return mv, nil
	}
	return nil, tmdb.ErrNotFound
}

func (m *fakeMetadata) GetTVShow(_ context.Context, id int64) (*tmdb.TVShow, error) {
	if m.err != nil {
		return nil, m.err
	}
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

func (s *captureSink) all() []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sent(nil), s.sent...)
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

// runPool starts p and returns a func that shuts it down and waits for
// every accepted job to finish.
func runPool(t *testing.T, p *Pool) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancel()
			if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("pool run: %v", err)
			}
		})
	}
	t.Cleanup(stop)
	return stop
}
