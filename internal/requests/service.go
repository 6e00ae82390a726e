// Package requests implements the request operations: create, list, edit,
// delete, status changes and retry. Each operation persists its change in a
// transaction, then executes the lifecycle effects in order: notify, then
// dispatch.
package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/lifecycle"
	"github.com/vmunix/reqarr/internal/metadata"
	"github.com/vmunix/reqarr/internal/notify"
	"github.com/vmunix/reqarr/internal/tmdb"
)

// Dispatcher submits approved requests to acquisition services.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *library.Request) error
}

// Publisher receives request lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Service runs request operations.
type Service struct {
	store    *library.Store
	meta     metadata.Provider
	dispatch Dispatcher
	sink     notify.Sink
	bus      Publisher
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets where lifecycle notifications go.
func WithNotifier(sink notify.Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithEvents publishes request events on p.
func WithEvents(p Publisher) Option {
	return func(s *Service) {
		s.bus = p
	}
}

// NewService creates a request service.
func NewService(store *library.Store, meta metadata.Provider, d Dispatcher, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:    store,
		meta:     meta,
		dispatch: d,
		sink:     notify.Discard{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// title is what notifications show for a media item.
type title struct {
	Name     string
	Overview string
	Image    string
	TVDBID   *int64
}

func (s *Service) lookup(ctx context.Context, typ library.MediaType, tmdbID int64) (*title, error) {
	switch typ {
	case library.MediaTypeMovie:
		m, err := s.meta.GetMovie(ctx, tmdbID)
		if err != nil {
			return nil, err
		}
		return &title{Name: m.Title, Overview: m.Overview, Image: m.PosterURL()}, nil
	case library.MediaTypeTV:
		show, err := s.meta.GetTVShow(ctx, tmdbID)
		if err != nil {
			return nil, err
		}
		return &title{Name: show.Name, Overview: show.Overview, Image: show.PosterURL(), TVDBID: show.ExternalIDs.TVDBID}, nil
	}
	return nil, fmt.Errorf("%w: media type %q", ErrInvalid, typ)
}

// titleFor looks up the title of media for a notification. A failed lookup
// still yields a usable subject.
func (s *Service) titleFor(ctx context.Context, media *library.Media) *title {
	t, err := s.lookup(ctx, media.Type, media.TMDBID)
	if err != nil {
		s.logger.Warn("title lookup for notification failed", "media_id", media.ID, "tmdb_id", media.TMDBID, "error", err)
		return &title{Name: fmt.Sprintf("TMDB %d", media.TMDBID)}
	}
	return t
}

// outcome is what a committed transition left behind.
type outcome struct {
	media  *library.Media
	before statusPair
	fx     lifecycle.Effects
}

// transition applies ev to req against its media and persists the media
// and season changes inside tx. A media that cannot be loaded aborts the
// chain.
func transition(tx *library.Tx, req *library.Request, ev lifecycle.Event) (*outcome, error) {
	media, err := tx.GetMedia(req.MediaID)
	if err != nil {
		return nil, fmt.Errorf("load media of request %d: %w", req.ID, err)
	}
	siblings, err := tx.ListRequestsForMedia(req.MediaID)
	if err != nil {
		return nil, err
	}

	out := &outcome{media: media, before: snapshot(media)}
	out.fx = lifecycle.Apply(media, req, without(siblings, req.ID), ev)
	if err := applyEffects(tx, media, req, out.fx); err != nil {
		return nil, err
	}
	return out, nil
}

// applyEffects persists the storage side of fx.
func applyEffects(tx *library.Tx, media *library.Media, req *library.Request, fx lifecycle.Effects) error {
	if fx.MediaChanged {
		if err := tx.UpdateMedia(media); err != nil {
			return err
		}
	}
	if fx.ApproveSeasons {
		if err := tx.SetSeasonStatuses(req.ID, library.RequestStatusApproved); err != nil {
			return err
		}
		for _, season := range req.Seasons {
			season.Status = library.RequestStatusApproved
		}
	}
	return nil
}

func without(reqs []*library.Request, id int64) []*library.Request {
	out := make([]*library.Request, 0, len(reqs))
	for _, r := range reqs {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// afterCommit runs the effects that leave the database: the notification,
// then dispatch. t may be nil; it is looked up when a notification is due.
// The returned error is the dispatch error, if any.
func (s *Service) afterCommit(ctx context.Context, media *library.Media, req *library.Request, fx lifecycle.Effects, t *title) error {
	if fx.Suppressed {
		s.logger.Info("notification suppressed, media already available",
			"request_id", req.ID,
			"media_id", media.ID,
			"variant", req.Variant().String())
	}
	if fx.Notify != notify.KindNone {
		if t == nil {
			t = s.titleFor(ctx, media)
		}
		s.sink.Send(ctx, fx.Notify, s.payload(media, req, t))
	}
	if fx.Dispatch && s.dispatch != nil {
		return s.dispatch.Dispatch(ctx, req)
	}
	return nil
}

func (s *Service) payload(media *library.Media, req *library.Request, t *title) notify.Payload {
	p := notify.Payload{
		Subject: t.Name,
		Message: t.Overview,
		Image:   t.Image,
		Media:   media,
		Request: req,
	}
	if req.Type == library.MediaTypeTV {
		p.Extra = []notify.Field{notify.SeasonsField(req.SeasonNumbers())}
	}
	u, err := s.store.GetUser(req.RequestedBy)
	if err != nil {
		s.logger.Warn("load requester for notification", "user_id", req.RequestedBy, "error", err)
	} else {
		p.NotifyUser = u
	}
	return p
}

type statusPair [2]library.MediaStatus

func snapshot(m *library.Media) statusPair {
	return statusPair{m.StatusFor(library.VariantStandard), m.StatusFor(library.Variant4K)}
}

// publishMediaChanges emits a media event for each variant whose status moved.
func (s *Service) publishMediaChanges(ctx context.Context, media *library.Media, before statusPair) {
	for i, v := range []library.Variant{library.VariantStandard, library.Variant4K} {
		after := media.StatusFor(v)
		if after == before[i] {
			continue
		}
		s.publish(ctx, &events.MediaStatusChanged{
			BaseEvent: events.ForMedia(events.EventMediaStatusChanged, media.ID),
			MediaID:   media.ID,
			Variant:   v.String(),
			OldStatus: string(before[i]),
			NewStatus: string(after),
		})
	}
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.logger.Warn("publish request event", "type", e.EventType(), "error", err)
	}
}

// canView reports whether actor may see requests by other users.
func canView(actor *library.User) bool {
	return actor.HasAny(library.PermissionManageRequests, library.PermissionRequestView)
}

// requireManage returns ErrForbidden unless actor manages requests.
func requireManage(actor *library.User) error {
	if !actor.HasAny(library.PermissionManageRequests) {
		return fmt.Errorf("%w: requires manage requests", ErrForbidden)
	}
	return nil
}

// unknownTitle maps a metadata miss onto ErrInvalid.
func unknownTitle(err error, typ library.MediaType, id int64) error {
	if errors.Is(err, tmdb.ErrNotFound) {
		return fmt.Errorf("%w: unknown %s %d", ErrInvalid, typ, id)
	}
	return fmt.Errorf("look up %s %d: %w", typ, id, err)
}
