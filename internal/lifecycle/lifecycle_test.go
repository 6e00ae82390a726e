package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/notify"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		media  library.MediaStatus
		req    *library.Request
		ev     Event
		want   Effects
		status library.MediaStatus
	}{
		{
			name:   "created pending",
			media:  library.MediaStatusPending,
			req:    movieRequest(1, library.RequestStatusPending, false),
			ev:     EventCreated,
			want:   Effects{Notify: notify.KindMediaPending},
			status: library.MediaStatusPending,
		},
		{
			name:   "created auto approved tv",
			media:  library.MediaStatusPending,
			req:    tvRequest(1, library.RequestStatusApproved, false, 1),
			ev:     EventCreated,
			want:   Effects{MediaChanged: true, ApproveSeasons: true, Dispatch: true, Notify: notify.KindMediaAutoApproved},
			status: library.MediaStatusProcessing,
		},
		{
			name:   "manual approve",
			media:  library.MediaStatusPending,
			req:    movieRequest(1, library.RequestStatusApproved, false),
			ev:     EventStatusChanged,
			want:   Effects{MediaChanged: true, Dispatch: true, Notify: notify.KindMediaApproved},
			status: library.MediaStatusProcessing,
		},
		{
			name:   "decline movie",
			media:  library.MediaStatusPending,
			req:    movieRequest(1, library.RequestStatusDeclined, false),
			ev:     EventStatusChanged,
			want:   Effects{MediaChanged: true, Notify: notify.KindMediaDeclined},
			status: library.MediaStatusUnknown,
		},
		{
			name:   "approve already available is suppressed but still dispatches",
			media:  library.MediaStatusAvailable,
			req:    movieRequest(1, library.RequestStatusApproved, false),
			ev:     EventStatusChanged,
			want:   Effects{Dispatch: true, Suppressed: true},
			status: library.MediaStatusAvailable,
		},
		{
			name:   "back to pending",
			media:  library.MediaStatusProcessing,
			req:    movieRequest(1, library.RequestStatusPending, false),
			ev:     EventStatusChanged,
			want:   Effects{},
			status: library.MediaStatusProcessing,
		},
		{
			name:   "edit approved tv approves merged seasons",
			media:  library.MediaStatusProcessing,
			req:    tvRequest(1, library.RequestStatusApproved, false, 1),
			ev:     EventEdited,
			want:   Effects{ApproveSeasons: true, Dispatch: true},
			status: library.MediaStatusProcessing,
		},
		{
			name:   "edit pending tv leaves seasons pending",
			media:  library.MediaStatusPending,
			req:    tvRequest(1, library.RequestStatusPending, false, 1),
			ev:     EventEdited,
			want:   Effects{},
			status: library.MediaStatusPending,
		},
		{
			name:   "retry approved tv",
			media:  library.MediaStatusUnknown,
			req:    tvRequest(1, library.RequestStatusApproved, false, 1),
			ev:     EventRetried,
			want:   Effects{MediaChanged: true, ApproveSeasons: true, Dispatch: true},
			status: library.MediaStatusProcessing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mediaWith(tt.media, library.MediaStatusUnknown)
			fx := Apply(m, tt.req, nil, tt.ev)
			assert.Equal(t, tt.want, fx)
			assert.Equal(t, tt.status, m.Standard.Status)
		})
	}
}

func TestApply_4KUsesOwnTrack(t *testing.T) {
	m := mediaWith(library.MediaStatusAvailable, library.MediaStatusPending)
	fx := Apply(m, movieRequest(1, library.RequestStatusApproved, true), nil, EventStatusChanged)

	assert.Equal(t, notify.KindMediaApproved, fx.Notify, "standard availability does not suppress 4k")
	assert.Equal(t, library.MediaStatusProcessing, m.FourK.Status)
	assert.Equal(t, library.MediaStatusAvailable, m.Standard.Status)
}
