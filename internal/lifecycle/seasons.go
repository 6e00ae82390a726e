package lifecycle

import (
	"slices"

	"github.com/vmunix/reqarr/internal/library"
)

// ClaimedSeasons returns the season numbers held by non-declined sibling
// requests of the same variant. The request with id excludeID is ignored;
// pass 0 when creating.
func ClaimedSeasons(siblings []*library.Request, is4k bool, excludeID int64) map[int]bool {
	claimed := make(map[int]bool)
	for _, r := range siblings {
		if r.ID == excludeID && excludeID != 0 {
			continue
		}
		if r.Is4K != is4k || r.Status == library.RequestStatusDeclined {
			continue
		}
		for _, s := range r.Seasons {
			claimed[s.SeasonNumber] = true
		}
	}
	return claimed
}

// EffectiveSeasons returns requested minus claimed, deduplicated and ascending.
func EffectiveSeasons(requested []int, claimed map[int]bool) []int {
	var out []int
	for _, n := range requested {
		if n < 0 || claimed[n] || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// NewSeasonRequests builds one season request per number, all with status.
func NewSeasonRequests(numbers []int, status library.RequestStatus) []*library.SeasonRequest {
	out := make([]*library.SeasonRequest, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, &library.SeasonRequest{SeasonNumber: n, Status: status})
	}
	return out
}

// MergeSeasons reconciles a request's existing seasons with an edited effective
// set. Existing seasons still in the set are kept as they are, those no longer
// in it are dropped, and new numbers are appended as pending.
func MergeSeasons(existing []*library.SeasonRequest, effective []int) []*library.SeasonRequest {
	have := make(map[int]*library.SeasonRequest, len(existing))
	for _, s := range existing {
		have[s.SeasonNumber] = s
	}

	out := make([]*library.SeasonRequest, 0, len(effective))
	for _, n := range effective {
		if s, ok := have[n]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, &library.SeasonRequest{SeasonNumber: n, Status: library.RequestStatusPending})
	}
	return out
}
