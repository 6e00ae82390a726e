package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Server status and request summary",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	client := newClient()

	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}
	counts, err := client.CountRequests()
	if err != nil {
		return fmt.Errorf("count requests failed: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]any{"status": status, "requests": counts})
		return nil
	}

	printStatus(serverURL, status, counts)
	return nil
}

func printStatus(server string, s *StatusResponse, c *CountResponse) {
	fmt.Printf("reqarr v%s | Server: %s (%s) | User: %s\n\n", s.Version, server, s.Status, s.User)

	fmt.Println("Requests")
	fmt.Printf("  Pending:     %d\n", c.Pending)
	fmt.Printf("  Approved:    %d\n", c.Approved)
	fmt.Printf("  Processing:  %d\n", c.Processing)
	fmt.Printf("  Available:   %d\n", c.Available)

	if d := s.Dispatch; d != nil {
		fmt.Println()
		fmt.Println("Dispatch")
		fmt.Printf("  Workers:     %d\n", d.Workers)
		fmt.Printf("  Queued:      %d\n", d.Queued)
		fmt.Printf("  In flight:   %d\n", d.InFlight)
		fmt.Printf("  Completed:   %d\n", d.Completed)
		if d.Panicked > 0 {
			fmt.Printf("  Panicked:    %d\n", d.Panicked)
		}
	}
	if s.EventsDropped > 0 {
		fmt.Printf("\nWarning: %d events dropped by slow subscribers\n", s.EventsDropped)
	}
}
