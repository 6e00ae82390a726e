package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// formatTimeAgo formats a unix timestamp as relative time.
func formatTimeAgo(unixTime int64) string {
	if unixTime <= 0 {
		return "never"
	}
	return formatSince(time.Since(time.Unix(unixTime, 0)))
}

func formatSince(ago time.Duration) string {
	switch {
	case ago < time.Minute:
		return "just now"
	case ago < time.Hour:
		return fmt.Sprintf("%dm ago", int(ago.Minutes()))
	case ago < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(ago.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(ago.Hours()/24))
	}
}
