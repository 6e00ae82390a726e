package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var requestFilters = []string{"all", "approved", "processing", "available", "pending", "unavailable"}

var requestsCmd = &cobra.Command{
	Use:     "requests",
	Aliases: []string{"req"},
	Short:   "List and manage media requests",
	Long: `List and manage media requests.

Examples:
  reqarr requests                         # First page of all requests
  reqarr requests --filter pending        # Requests awaiting review
  reqarr requests get 12                  # Request #12 with its events
  reqarr requests create movie 603        # Request The Matrix
  reqarr requests create tv 1399 -s 1,2   # Request seasons 1 and 2
  reqarr requests approve 12              # Approve and dispatch #12
  reqarr requests decline 12
  reqarr requests retry 12                # Dispatch #12 again
  reqarr requests delete 12`,
	Args: cobra.NoArgs,
	RunE: runRequestsList,
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests",
	Args:  cobra.NoArgs,
	RunE:  runRequestsList,
}

var requestsShowCmd = &cobra.Command{
	Use:     "get <id>",
	Aliases: []string{"show"},
	Short:   "Show a request and its history",
	Args:    cobra.ExactArgs(1),
	RunE:    runRequestsShow,
}

var requestsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count requests by state",
	Args:  cobra.NoArgs,
	RunE:  runRequestsCount,
}

var requestsCreateCmd = &cobra.Command{
	Use:   "create <movie|tv> <tmdb-id>",
	Short: "Request a movie or series",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequestsCreate,
}

var requestsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change seasons, target instance or owner of a request",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestsEdit,
}

var requestsRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Dispatch a request again",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestsRetry,
}

var requestsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a request",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestsDelete,
}

func statusCommand(use, status, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, err := newClient().SetStatus(id, status)
			if err != nil {
				return fmt.Errorf("failed to set request status: %w", err)
			}
			return printRequestResult(req, "Request #%d is now %s")
		},
	}
}

func init() {
	rootCmd.AddCommand(requestsCmd)
	for _, cmd := range []*cobra.Command{requestsCmd, requestsListCmd} {
		cmd.Flags().StringP("filter", "f", "", "Filter ("+strings.Join(requestFilters, ", ")+")")
		cmd.Flags().String("sort", "", "Sort order (added, modified)")
		cmd.Flags().IntP("take", "n", 0, "Page size (default 10)")
		cmd.Flags().Int("skip", 0, "Results to skip")
		cmd.Flags().Int64("user", 0, "Only requests made by this user id")
	}

	for _, cmd := range []*cobra.Command{requestsCreateCmd, requestsEditCmd} {
		cmd.Flags().IntSliceP("seasons", "s", nil, "Season numbers")
		cmd.Flags().Int64("server", 0, "Radarr/Sonarr instance id")
		cmd.Flags().Int64("profile", 0, "Quality profile id")
		cmd.Flags().String("root-folder", "", "Root folder path")
		cmd.Flags().Int64("language-profile", 0, "Language profile id (Sonarr)")
		cmd.Flags().Int64("as-user", 0, "Request on behalf of this user id")
	}
	requestsCreateCmd.Flags().Bool("4k", false, "Request the 4K variant")
	requestsCreateCmd.Flags().Int64("tvdb", 0, "TVDB id for series")

	requestsCmd.AddCommand(
		requestsListCmd,
		requestsShowCmd,
		requestsCountCmd,
		requestsCreateCmd,
		requestsEditCmd,
		statusCommand("approve", "approve", "Approve a request and dispatch it"),
		statusCommand("decline", "decline", "Decline a request"),
		statusCommand("pending", "pending", "Return a request to pending"),
		requestsRetryCmd,
		requestsDeleteCmd,
	)
	registerRequestCompletions()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return id, nil
}

func runRequestsList(cmd *cobra.Command, args []string) error {
	opts := ListOptions{}
	opts.Filter, _ = cmd.Flags().GetString("filter")
	opts.Sort, _ = cmd.Flags().GetString("sort")
	opts.Take, _ = cmd.Flags().GetInt("take")
	opts.Skip, _ = cmd.Flags().GetInt("skip")
	opts.RequestedBy, _ = cmd.Flags().GetInt64("user")

	if opts.Filter != "" && !slices.Contains(requestFilters, opts.Filter) {
		return fmt.Errorf("invalid filter %q (valid: %s)", opts.Filter, strings.Join(requestFilters, ", "))
	}

	resp, err := newClient().Requests(opts)
	if err != nil {
		return fmt.Errorf("failed to list requests: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	if len(resp.Results) == 0 {
		fmt.Println("No requests")
		return nil
	}

	fmt.Printf("Requests (page %d of %d, %d total):\n\n", resp.PageInfo.Page, resp.PageInfo.Pages, resp.PageInfo.Results)
	fmt.Printf("  %-5s %-6s %-8s %-10s %-5s %-10s %-12s\n", "ID", "TYPE", "MEDIA", "STATUS", "4K", "SEASONS", "UPDATED")
	fmt.Println("  " + strings.Repeat("-", 62))
	for _, r := range resp.Results {
		fmt.Printf("  %-5d %-6s %-8d %-10s %-5s %-10s %-12s\n",
			r.ID, r.Type, r.MediaID, r.Status, yesNo(r.Is4K), formatSeasons(r.Seasons), formatTimeAgo(r.UpdatedAt.Unix()))
	}
	return nil
}

func runRequestsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client := newClient()
	req, err := client.Request(id)
	if err != nil {
		return fmt.Errorf("failed to fetch request: %w", err)
	}
	evs, err := client.RequestEvents(id)
	if err != nil {
		return fmt.Errorf("failed to fetch request events: %w", err)
	}
	media, err := client.Media(req.MediaID)
	if err != nil {
		return fmt.Errorf("failed to fetch media: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]any{"request": req, "media": media, "events": evs.Items})
		return nil
	}

	track := media.Standard
	if req.Is4K {
		track = media.FourK
	}

	fmt.Printf("Request #%d\n\n", req.ID)
	fmt.Printf("  %-14s %s (tmdb %d)\n", "Media:", req.Type, media.TMDBID)
	fmt.Printf("  %-14s %s\n", "Status:", req.Status)
	fmt.Printf("  %-14s %s\n", "Media status:", track.Status)
	fmt.Printf("  %-14s %s\n", "4K:", yesNo(req.Is4K))
	fmt.Printf("  %-14s %d\n", "Requested by:", req.RequestedBy)
	if req.ModifiedBy != nil {
		fmt.Printf("  %-14s %d\n", "Modified by:", *req.ModifiedBy)
	}
	if len(req.Seasons) > 0 {
		fmt.Printf("  %-14s %s\n", "Seasons:", formatSeasons(req.Seasons))
	}
	if track.ExternalServiceSlug != nil {
		fmt.Printf("  %-14s %s\n", "Service slug:", *track.ExternalServiceSlug)
	}
	fmt.Printf("  %-14s %s\n", "Created:", req.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  %-14s %s\n", "Updated:", req.UpdatedAt.Format(time.RFC3339))

	if len(evs.Items) > 0 {
		fmt.Println("\nHistory:")
		for _, e := range evs.Items {
			t, _ := time.Parse(time.RFC3339, e.OccurredAt)
			fmt.Printf("  %-12s %s\n", formatTimeAgo(t.Unix()), e.EventType)
		}
	}
	return nil
}

func runRequestsCount(cmd *cobra.Command, args []string) error {
	c, err := newClient().CountRequests()
	if err != nil {
		return fmt.Errorf("failed to count requests: %w", err)
	}
	if jsonOutput {
		printJSON(c)
		return nil
	}
	fmt.Printf("Pending:     %d\n", c.Pending)
	fmt.Printf("Approved:    %d\n", c.Approved)
	fmt.Printf("Processing:  %d\n", c.Processing)
	fmt.Printf("Available:   %d\n", c.Available)
	return nil
}

func runRequestsCreate(cmd *cobra.Command, args []string) error {
	mediaType := strings.ToLower(args[0])
	if mediaType != "movie" && mediaType != "tv" {
		return fmt.Errorf("invalid media type %q (valid: movie, tv)", args[0])
	}
	tmdbID, err := parseID(args[1])
	if err != nil {
		return err
	}

	body := CreateRequest{MediaType: mediaType, MediaID: tmdbID}
	body.Is4K, _ = cmd.Flags().GetBool("4k")
	if tvdb, _ := cmd.Flags().GetInt64("tvdb"); tvdb > 0 {
		body.TVDBID = &tvdb
	}
	body.Seasons, _ = cmd.Flags().GetIntSlice("seasons")
	body.ServerID, body.ProfileID, body.RootFolder, body.LanguageProfileID, body.UserID = overrideFlags(cmd)

	req, err := newClient().CreateRequest(body)
	if errors.Is(err, ErrAllSeasonsRequested) {
		fmt.Println("All seasons already requested")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return printRequestResult(req, "Created request #%d (%s)")
}

func runRequestsEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	body := EditRequest{}
	body.Seasons, _ = cmd.Flags().GetIntSlice("seasons")
	body.ServerID, body.ProfileID, body.RootFolder, body.LanguageProfileID, body.UserID = overrideFlags(cmd)

	req, err := newClient().EditRequest(id, body)
	if errors.Is(err, ErrAllSeasonsRequested) {
		fmt.Println("All seasons already requested")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to edit request: %w", err)
	}
	return printRequestResult(req, "Updated request #%d (%s)")
}

func runRequestsRetry(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	req, err := newClient().RetryRequest(id)
	if err != nil {
		return fmt.Errorf("failed to retry request: %w", err)
	}
	return printRequestResult(req, "Retried request #%d (%s)")
}

func runRequestsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := newClient().DeleteRequest(id); err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if jsonOutput {
		printJSON(map[string]any{"id": id, "deleted": true})
		return nil
	}
	fmt.Printf("Deleted request #%d\n", id)
	return nil
}

// overrideFlags reads the instance override flags shared by create and edit.
// Unset flags yield nil.
func overrideFlags(cmd *cobra.Command) (server, profile *int64, rootFolder *string, langProfile, user *int64) {
	optInt := func(name string) *int64 {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetInt64(name)
		return &v
	}
	server = optInt("server")
	profile = optInt("profile")
	langProfile = optInt("language-profile")
	user = optInt("as-user")
	if cmd.Flags().Changed("root-folder") {
		v, _ := cmd.Flags().GetString("root-folder")
		rootFolder = &v
	}
	return server, profile, rootFolder, langProfile, user
}

func printRequestResult(req *RequestResponse, format string) error {
	if jsonOutput {
		printJSON(req)
		return nil
	}
	fmt.Printf(format+"\n", req.ID, req.Status)
	if req.DispatchError != "" {
		fmt.Printf("  warning: dispatch failed: %s\n", req.DispatchError)
	}
	return nil
}

func formatSeasons(seasons []SeasonResponse) string {
	if len(seasons) == 0 {
		return "-"
	}
	nums := make([]string, len(seasons))
	for i, s := range seasons {
		nums[i] = strconv.Itoa(s.SeasonNumber)
	}
	return strings.Join(nums, ",")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
