package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/reqarr/internal/library"
)

func TestInitialStatus(t *testing.T) {
	tests := []struct {
		name  string
		perms library.Permission
		typ   library.MediaType
		is4k  bool
		want  library.RequestStatus
	}{
		{"plain requester", library.PermissionRequest, library.MediaTypeMovie, false, library.RequestStatusPending},
		{"blanket auto approve", library.PermissionAutoApprove, library.MediaTypeTV, false, library.RequestStatusApproved},
		{"movie only on tv", library.PermissionAutoApproveMovie, library.MediaTypeTV, false, library.RequestStatusPending},
		{"movie only on movie", library.PermissionAutoApproveMovie, library.MediaTypeMovie, false, library.RequestStatusApproved},
		{"standard auto approve on 4k", library.PermissionAutoApprove, library.MediaTypeMovie, true, library.RequestStatusPending},
		{"4k tv on 4k tv", library.PermissionAutoApprove4KTV, library.MediaTypeTV, true, library.RequestStatusApproved},
		{"4k tv on 4k movie", library.PermissionAutoApprove4KTV, library.MediaTypeMovie, true, library.RequestStatusPending},
		{"manager", library.PermissionManageRequests, library.MediaTypeMovie, true, library.RequestStatusApproved},
		{"admin", library.PermissionAdmin, library.MediaTypeTV, true, library.RequestStatusApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &library.User{ID: 7, Permissions: tt.perms}
			status, modifiedBy := InitialStatus(u, tt.typ, tt.is4k)
			assert.Equal(t, tt.want, status)
			if tt.want == library.RequestStatusApproved {
				require.NotNil(t, modifiedBy)
				assert.Equal(t, int64(7), *modifiedBy)
			} else {
				assert.Nil(t, modifiedBy)
			}
		})
	}
}

func TestCanRequest(t *testing.T) {
	plain := &library.User{Permissions: library.PermissionRequest}
	assert.True(t, CanRequest(plain, library.MediaTypeMovie, false))
	assert.False(t, CanRequest(plain, library.MediaTypeMovie, true))

	tv4k := &library.User{Permissions: library.PermissionRequest | library.PermissionRequest4KTV}
	assert.True(t, CanRequest(tv4k, library.MediaTypeTV, true))
	assert.False(t, CanRequest(tv4k, library.MediaTypeMovie, true))

	assert.False(t, CanRequest(&library.User{}, library.MediaTypeTV, false))
	assert.True(t, CanRequest(&library.User{Permissions: library.PermissionAdmin}, library.MediaTypeTV, true))
}
