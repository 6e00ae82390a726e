package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion <bash|zsh|fish|powershell>",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for reqarr.

Request ids complete from the server named by --server and $REQARR_API_KEY,
so "reqarr requests approve <TAB>" offers the pending requests.

  bash:        source <(reqarr completion bash)
  zsh:         reqarr completion zsh > "${fpath[1]}/_reqarr"
  fish:        reqarr completion fish > ~/.config/fish/completions/reqarr.fish
  powershell:  reqarr completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

// completionPageSize bounds how many requests one completion fetches.
const completionPageSize = 50

// completeRequestIDs offers ids of requests matching filter, newest
// activity first, described by type and status.
func completeRequestIDs(filter string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		resp, err := newClient().Requests(ListOptions{Filter: filter, Sort: "modified", Take: completionPageSize})
		if err != nil {
			cobra.CompDebugln("request completion: "+err.Error(), true)
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var out []cobra.Completion
		for _, r := range resp.Results {
			id := strconv.FormatInt(r.ID, 10)
			if !strings.HasPrefix(id, toComplete) {
				continue
			}
			out = append(out, cobra.CompletionWithDesc(id, describeForCompletion(r)))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func describeForCompletion(r RequestResponse) string {
	desc := fmt.Sprintf("%s %s", r.Type, r.Status)
	if r.Is4K {
		desc += " 4k"
	}
	if len(r.Seasons) > 0 {
		desc += " seasons " + formatSeasons(r.Seasons)
	}
	return desc
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// registerRequestCompletions wires argument and flag completion into the
// requests commands. It runs after their flags and subcommands exist.
func registerRequestCompletions() {
	requestsShowCmd.ValidArgsFunction = completeRequestIDs("all")
	requestsEditCmd.ValidArgsFunction = completeRequestIDs("all")
	requestsDeleteCmd.ValidArgsFunction = completeRequestIDs("all")
	requestsRetryCmd.ValidArgsFunction = completeRequestIDs("approved")
	for _, cmd := range requestsCmd.Commands() {
		switch cmd.Name() {
		case "approve", "decline":
			cmd.ValidArgsFunction = completeRequestIDs("pending")
		case "pending":
			cmd.ValidArgsFunction = completeRequestIDs("all")
		}
	}

	for _, cmd := range []*cobra.Command{requestsCmd, requestsListCmd} {
		_ = cmd.RegisterFlagCompletionFunc("filter", cobra.FixedCompletions(requestFilters, cobra.ShellCompDirectiveNoFileComp))
		_ = cmd.RegisterFlagCompletionFunc("sort", cobra.FixedCompletions([]string{"added", "modified"}, cobra.ShellCompDirectiveNoFileComp))
	}
	requestsCreateCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return []cobra.Completion{"movie", "tv"}, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
