package v1

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reqarr/internal/requests"
)

func TestNew_MissingDependency(t *testing.T) {
	_, err := New(ServerDeps{}, nil)
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestAuth(t *testing.T) {
	api := newTestAPI(t)

	var e errorResponse
	assert.Equal(t, http.StatusUnauthorized, api.do(t, "", http.MethodGet, "/api/v1/status", nil, &e))
	assert.Equal(t, "UNAUTHORIZED", e.Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, "nope", http.MethodGet, "/api/v1/status", nil, &e))

	resp, err := http.Get(api.srv.URL + "/api/v1/status?apikey=" + userKey)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	api := newTestAPI(t)

	var st statusResponse
	require.Equal(t, http.StatusOK, api.do(t, adminKey, http.MethodGet, "/api/v1/status", nil, &st))
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, "test", st.Version)
	assert.Equal(t, "admin@example.com", st.User)
	require.NotNil(t, st.Dispatch)
	assert.Equal(t, 4, st.Dispatch.Workers)
	assert.Equal(t, int64(7), st.Dispatch.Completed)
}

func TestCreateRequest(t *testing.T) {
	api := newTestAPI(t)

	var got requestResponse
	code := api.do(t, userKey, http.MethodPost, "/api/v1/requests", createRequestBody{MediaType: "movie", MediaID: 603}, &got)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, api.user.ID, got.RequestedBy)
	assert.Empty(t, got.DispatchError)

	var e errorResponse
	code = api.do(t, userKey, http.MethodPost, "/api/v1/requests", createRequestBody{MediaType: "movie", MediaID: 603}, &e)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DUPLICATE", e.Code)

	var m mediaResponse
	require.Equal(t, http.StatusOK, api.do(t, userKey, http.MethodGet, fmt.Sprintf("/api/v1/media/%d", got.MediaID), nil, &m))
	assert.Equal(t, int64(603), m.TMDBID)
	assert.Equal(t, "pending", m.Standard.Status)
	assert.Equal(t, "unknown", m.FourK.Status)
}

func TestCreateRequest_Errors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		key  string
		body any
		want int
	}{
		{"unknown title", userKey, createRequestBody{MediaType: "movie", MediaID: 1}, http.StatusBadRequest},
		{"bad type", userKey, createRequestBody{MediaType: "music", MediaID: 603}, http.StatusBadRequest},
		{"4k not allowed", userKey, createRequestBody{MediaType: "movie", MediaID: 603, Is4K: true}, http.StatusForbidden},
		{"unknown field", userKey, map[string]any{"media_type": "movie", "media_id": 603, "bogus": true}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorResponse
			assert.Equal(t, tt.want, api.do(t, tt.key, http.MethodPost, "/api/v1/requests", tt.body, &e))
		})
	}
}

func TestCreateRequest_AllSeasonsClaimed(t *testing.T) {
	api := newTestAPI(t)
	body := createRequestBody{MediaType: "tv", MediaID: 1399, Seasons: []int{1, 2}}

	var got requestResponse
	require.Equal(t, http.StatusCreated, api.do(t, userKey, http.MethodPost, "/api/v1/requests", body, &got))
	require.Len(t, got.Seasons, 2)

	var msg map[string]string
	assert.Equal(t, http.StatusAccepted, api.do(t, otherKey, http.MethodPost, "/api/v1/requests", body, &msg))
	assert.NotEmpty(t, msg["message"])
}

func TestCreateRequest_DispatchErrorReported(t *testing.T) {
	api := newTestAPI(t)
	api.dispatch.err = errors.New("no radarr")

	var got requestResponse
	code := api.do(t, adminKey, http.MethodPost, "/api/v1/requests", createRequestBody{MediaType: "movie", MediaID: 603}, &got)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "approved", got.Status)
	assert.Equal(t, "no radarr", got.DispatchError)
}

func TestRequestLifecycle(t *testing.T) {
	api := newTestAPI(t)

	var created requestResponse
	require.Equal(t, http.StatusCreated, api.do(t, userKey, http.MethodPost, "/api/v1/requests",
		createRequestBody{MediaType: "tv", MediaID: 1399, Seasons: []int{1, 2}}, &created))
	path := fmt.Sprintf("/api/v1/requests/%d", created.ID)

	// Only managers change status.
	var e errorResponse
	assert.Equal(t, http.StatusForbidden, api.do(t, userKey, http.MethodPost, path+"/approve", nil, &e))

	var approved requestResponse
	require.Equal(t, http.StatusOK, api.do(t, adminKey, http.MethodPost, path+"/approve", nil, &approved))
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ModifiedBy)
	assert.Equal(t, api.admin.ID, *approved.ModifiedBy)
	for _, s := range approved.Seasons {
		assert.Equal(t, "approved", s.Status)
	}
	assert.Equal(t, 1, api.dispatch.calls)

	var edited requestResponse
	require.Equal(t, http.StatusOK, api.do(t, adminKey, http.MethodPut, path, editRequestBody{Seasons: []int{1, 2, 3}}, &edited))
	assert.Len(t, edited.Seasons, 3)
	assert.Equal(t, 2, api.dispatch.calls)

	var retried requestResponse
	require.Equal(t, http.StatusOK, api.do(t, adminKey, http.MethodPost, path+"/retry", nil, &retried))
	assert.Equal(t, 3, api.dispatch.calls)

	var declined requestResponse
	require.Equal(t, http.StatusOK, api.do(t, adminKey, http.MethodPost, path+"/decline", nil, &declined))
	assert.Equal(t, "declined", declined.Status)

	assert.Equal(t, http.StatusNotFound, api.do(t, adminKey, http.MethodPost, path+"/bogus", nil, &e))

	var evs listEventsResponse
	require.Equal(t, http.StatusOK, api.do(t, userKey, http.MethodGet, path+"/events", nil, &evs))
	assert.NotEmpty(t, evs.Items)
	assert.Equal(t, http.StatusForbidden, api.do(t, otherKey, http.MethodGet, path+"/events", nil, &e))

	// The owner may remove their own request.
	assert.Equal(t, http.StatusForbidden, api.do(t, otherKey, http.MethodDelete, path, nil, &e))
	assert.Equal(t, http.StatusNoContent, api.do(t, userKey, http.MethodDelete, path, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(t, adminKey, http.MethodGet, path, nil, &e))
}

func TestGetRequest(t *testing.T) {
	api := newTestAPI(t)

	var created requestResponse
	require.Equal(t, http.StatusCreated, api.do(t, userKey, http.MethodPost, "/api/v1/requests",
		createRequestBody{MediaType: "movie", MediaID: 603}, &created))

	var got requestResponse
	assert.Equal(t, http.StatusOK, api.do(t, userKey, http.MethodGet, fmt.Sprintf("/api/v1/requests/%d", created.ID), nil, &got))
	assert.Equal(t, created.ID, got.ID)

	var e errorResponse
	assert.Equal(t, http.StatusForbidden, api.do(t, otherKey, http.MethodGet, fmt.Sprintf("/api/v1/requests/%d", created.ID), nil, &e))
	assert.Equal(t, http.StatusBadRequest, api.do(t, userKey, http.MethodGet, "/api/v1/requests/abc", nil, &e))
	assert.Equal(t, http.StatusNotFound, api.do(t, adminKey, http.MethodGet, "/api/v1/requests/4242", nil, &e))
}

func TestListAndCount(t *testing.T) {
	api := newTestAPI(t)

	var r requestResponse
	require.Equal(t, http.StatusCreated, api.do(t, userKey, http.MethodPost, "/api/v1/requests",
		createRequestBody{MediaType: "movie", MediaID: 603}, &r))
	require.Equal(t, http.StatusCreated, api.do(t, adminKey, http.MethodPost, "/api/v1/requests",
		createRequestBody{MediaType: "tv", MediaID: 1399, Seasons: []int{1}}, &r))

	var page listRequestsResponse
	require.Equal(t, http.StatusOK, api.do(t, adminKey, http.MethodGet, "/api/v1/requests?take=1", nil, &page))
	assert.Equal(t, pageInfo{Pages: 2, PageSize: 1, Results: 2, Page: 1}, page.PageInfo)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "tv", page.Results[0].Type)

	require.Equal(t, http.StatusOK, api.do(t, adminKey, http.MethodGet, "/api/v1/requests?filter=pending", nil, &page))
	assert.Equal(t, 1, page.PageInfo.Results)

	require.Equal(t, http.StatusOK, api.do(t, otherKey, http.MethodGet, "/api/v1/requests", nil, &page))
	assert.Empty(t, page.Results)

	var e errorResponse
	assert.Equal(t, http.StatusBadRequest, api.do(t, adminKey, http.MethodGet, "/api/v1/requests?filter=bogus", nil, &e))
	assert.Equal(t, http.StatusBadRequest, api.do(t, adminKey, http.MethodGet, "/api/v1/requests?requested_by=x", nil, &e))

	var c requests.Counts
	require.Equal(t, http.StatusOK, api.do(t, userKey, http.MethodGet, "/api/v1/requests/count", nil, &c))
	assert.Equal(t, requests.Counts{Pending: 1, Approved: 1, Processing: 1}, c)
}

func TestListEvents(t *testing.T) {
	api := newTestAPI(t)

	var r requestResponse
	require.Equal(t, http.StatusCreated, api.do(t, userKey, http.MethodPost, "/api/v1/requests",
		createRequestBody{MediaType: "movie", MediaID: 603}, &r))

	var evs listEventsResponse
	require.Equal(t, http.StatusOK, api.do(t, adminKey, http.MethodGet, "/api/v1/events?limit=1", nil, &evs))
	require.Len(t, evs.Items, 1)
	assert.Equal(t, 1, evs.Limit)
	data, ok := evs.Items[0].Data.(map[string]any)
	require.True(t, ok, "event payload is decoded")
	assert.Equal(t, evs.Items[0].EventType, data["type"])

	var e errorResponse
	assert.Equal(t, http.StatusBadRequest, api.do(t, adminKey, http.MethodGet, "/api/v1/events?limit=-1", nil, &e))
}
