package main

import (
	"net/http"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteRequestIDs(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/requests").
		Handler(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "pending", r.URL.Query().Get("filter"))
			assert.Equal(t, "modified", r.URL.Query().Get("sort"))
			respondJSON(t, w, ListRequestsResponse{
				PageInfo: PageInfo{Pages: 1, PageSize: 50, Results: 3, Page: 1},
				Results: []RequestResponse{
					{ID: 12, Type: "movie", Status: "pending"},
					{ID: 13, Type: "tv", Status: "pending", Is4K: true, Seasons: []SeasonResponse{{SeasonNumber: 1}, {SeasonNumber: 2}}},
					{ID: 40, Type: "movie", Status: "pending"},
				},
			})
		}).
		Build()
	defer srv.Close()
	withServer(t, srv.URL)

	got, directive := completeRequestIDs("pending")(requestsShowCmd, nil, "1")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.Equal(t, []cobra.Completion{
		"12\tmovie pending",
		"13\ttv pending 4k seasons 1,2",
	}, got)
}

func TestCompleteRequestIDs_OnlyFirstArg(t *testing.T) {
	got, directive := completeRequestIDs("all")(requestsShowCmd, []string{"12"}, "")
	assert.Empty(t, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestRequestCompletionsRegistered(t *testing.T) {
	for _, name := range []string{"get", "edit", "delete", "retry", "approve", "decline", "pending"} {
		cmd, _, err := requestsCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.NotNil(t, cmd.ValidArgsFunction, name)
	}
	_, ok := requestsListCmd.GetFlagCompletionFunc("filter")
	assert.True(t, ok)
}
