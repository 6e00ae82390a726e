package lifecycle

import "github.com/vmunix/reqarr/internal/library"

// fulfilled reports whether s was set by the fulfillment side and must not be
// overwritten by approval.
func fulfilled(s library.MediaStatus) bool {
	return s == library.MediaStatusAvailable || s == library.MediaStatusPartiallyAvailable
}

// ResolveTransition updates the request's variant status on media after req
// moved to its current status. others are the other requests for the same
// media in their current state. Reports whether media changed.
func ResolveTransition(media *library.Media, req *library.Request, others []*library.Request) bool {
	v := req.Variant()
	before := media.StatusFor(v)

	switch req.Status {
	case library.RequestStatusApproved:
		if !fulfilled(before) {
			media.SetStatus(v, library.MediaStatusProcessing)
		}
	case library.RequestStatusDeclined:
		if req.Type == library.MediaTypeMovie {
			media.SetStatus(v, library.MediaStatusUnknown)
			break
		}
		if before == library.MediaStatusPending && !pendingRemains(others, req.ID, req.Is4K) {
			media.SetStatus(v, library.MediaStatusUnknown)
		}
	}

	return media.StatusFor(v) != before
}

func pendingRemains(others []*library.Request, selfID int64, is4k bool) bool {
	for _, r := range others {
		if r.ID != selfID && r.Is4K == is4k && r.Status == library.RequestStatusPending {
			return true
		}
	}
	return false
}

// ResolveRemoval recomputes both variants of media from the requests left
// after a deletion. A variant with no remaining request resets to unknown
// unless it is already available. Reports whether media changed.
func ResolveRemoval(media *library.Media, remaining []*library.Request) bool {
	changed := false
	for _, v := range []library.Variant{library.VariantStandard, library.Variant4K} {
		if hasVariant(remaining, v) {
			continue
		}
		s := media.StatusFor(v)
		if s != library.MediaStatusAvailable && s != library.MediaStatusUnknown {
			media.SetStatus(v, library.MediaStatusUnknown)
			changed = true
		}
	}
	return changed
}

func hasVariant(reqs []*library.Request, v library.Variant) bool {
	for _, r := range reqs {
		if r.Variant() == v {
			return true
		}
	}
	return false
}
