package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/reqarr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates the config file's syntax, required fields, and environment variable substitution without starting the server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd, configInitCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	loc, err := configLocation(args)
	if err != nil {
		return err
	}

	fmt.Printf("Validating %s...\n\n", loc)

	cfg, err := config.Load(loc.Path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Set REQARR_API_KEY and TMDB_API_KEY, then run 'reqarr config test'.")
	return nil
}

func configLocation(args []string) (config.Location, error) {
	if len(args) > 0 {
		return config.Location{Path: args[0], Source: "argument"}, nil
	}
	return config.Discover()
}

func printConfigErrors(e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Println("Unset environment variables:")
		for _, m := range e.Missing {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println()
	}

	for _, section := range e.Sections() {
		fmt.Printf("[%s]\n", section)
		for _, p := range e.In(section) {
			fmt.Printf("  - %s\n", p)
		}
		fmt.Println()
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Server:     %s:%d (log: %s)\n", cfg.Server.Host, cfg.Server.Port, cfg.Server.LogLevel)
	fmt.Printf("  Database:   %s\n", cfg.Database.Path)
	fmt.Printf("  Dispatch:   %d workers, queue %d\n", cfg.Dispatch.Workers, cfg.Dispatch.QueueSize)

	radarr := make([]config.ServiceConfig, len(cfg.Radarr))
	for i, r := range cfg.Radarr {
		radarr[i] = r.ServiceConfig
	}
	sonarr := make([]config.ServiceConfig, len(cfg.Sonarr))
	for i, s := range cfg.Sonarr {
		sonarr[i] = s.ServiceConfig
	}
	fmt.Printf("  Radarr:     %s\n", describeInstances(radarr))
	fmt.Printf("  Sonarr:     %s\n", describeInstances(sonarr))

	agents := []string{}
	if cfg.Notifications.Log {
		agents = append(agents, "log")
	}
	if cfg.Notifications.Webhook != nil {
		agents = append(agents, "webhook")
	}
	if len(agents) > 0 {
		fmt.Printf("  Notify:     %s\n", strings.Join(agents, ", "))
	}
}

func describeInstances(list []config.ServiceConfig) string {
	if len(list) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(list))
	for _, svc := range list {
		label := svc.Name
		if label == "" {
			label = fmt.Sprintf("#%d", svc.ID)
		}
		var tags []string
		if svc.Is4K {
			tags = append(tags, "4k")
		}
		if svc.IsDefault {
			tags = append(tags, "default")
		}
		if len(tags) > 0 {
			label += " (" + strings.Join(tags, ", ") + ")"
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, ", ")
}
