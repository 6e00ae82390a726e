package lifecycle

import (
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/notify"
)

// Event is the persisted change that triggered a side-effect chain.
type Event int

const (
	EventCreated       Event = iota // request inserted
	EventStatusChanged              // status set by an operator
	EventEdited                     // overrides or seasons changed
	EventRetried                    // operator asked for re-dispatch
)

func (e Event) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventStatusChanged:
		return "status_changed"
	case EventEdited:
		return "edited"
	case EventRetried:
		return "retried"
	}
	return "unknown"
}

// Effects is what the caller must do after a transition, in order:
// persist media, approve seasons, notify, dispatch.
type Effects struct {
	MediaChanged   bool
	ApproveSeasons bool
	Notify         notify.Kind
	// Suppressed is set when a notification was due but the variant is already available.
	Suppressed bool
	Dispatch   bool
}

// Apply runs the transition rules for req on media and returns the effects.
// media is modified in place; others are the media's other requests.
func Apply(media *library.Media, req *library.Request, others []*library.Request, ev Event) Effects {
	var fx Effects
	wasAvailable := media.StatusFor(req.Variant()) == library.MediaStatusAvailable

	fx.MediaChanged = ResolveTransition(media, req, others)

	approved := req.Status == library.RequestStatusApproved
	fx.Dispatch = approved
	// Seasons follow an approved parent, including ones an edit appended as pending.
	fx.ApproveSeasons = approved && req.Type == library.MediaTypeTV

	fx.Notify = notificationFor(req, ev)
	if fx.Notify != notify.KindNone && wasAvailable {
		fx.Notify = notify.KindNone
		fx.Suppressed = true
	}
	return fx
}

func notificationFor(req *library.Request, ev Event) notify.Kind {
	switch ev {
	case EventCreated:
		switch req.Status {
		case library.RequestStatusPending:
			return notify.KindMediaPending
		case library.RequestStatusApproved:
			return notify.KindMediaAutoApproved
		}
	case EventStatusChanged:
		switch req.Status {
		case library.RequestStatusApproved:
			return notify.KindMediaApproved
		case library.RequestStatusDeclined:
			return notify.KindMediaDeclined
		}
	}
	return notify.KindNone
}
