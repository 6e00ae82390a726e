package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	apiKey     string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "reqarr",
	Short: "CLI client for the reqarr request server",
	Long: `reqarr - CLI client for the reqarr request server

Create, review and track movie and series requests, and hand approved
requests to Radarr and Sonarr.

Run 'reqarrd' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("REQARR_URL", "http://localhost:5055"), "Server URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("REQARR_API_KEY"), "API key (default $REQARR_API_KEY)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("reqarr {{.Version}}\n")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *Client {
	return NewClient(serverURL, apiKey)
}
