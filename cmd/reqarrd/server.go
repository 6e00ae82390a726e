package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vmunix/reqarr/internal/acquisition"
	v1 "github.com/vmunix/reqarr/internal/api/v1"
	"github.com/vmunix/reqarr/internal/config"
	"github.com/vmunix/reqarr/internal/dispatch"
	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/handlers"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/metadata"
	"github.com/vmunix/reqarr/internal/migrations"
	"github.com/vmunix/reqarr/internal/notify"
	"github.com/vmunix/reqarr/internal/requests"
	"github.com/vmunix/reqarr/internal/server"
	"github.com/vmunix/reqarr/internal/tmdb"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openDB opens the sqlite database at path and applies the schema.
func openDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// seedAdmin creates the administrator account when the database has no
// users. A blank key is replaced with a random one, which is logged once.
func seedAdmin(store *library.Store, cfg config.AdminConfig, logger *slog.Logger) (*library.User, error) {
	u, err := store.FirstUser()
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}

	key := cfg.APIKey
	generated := key == ""
	if generated {
		key = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	email := cfg.Email
	if email == "" {
		email = "admin@localhost"
	}

	u = &library.User{
		Email:       email,
		DisplayName: "Administrator",
		Permissions: library.PermissionAdmin,
		APIKey:      &key,
	}
	if err := store.AddUser(u); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if generated {
		logger.Warn("created administrator with generated api key", "email", email, "api_key", key)
	} else {
		logger.Info("created administrator", "email", email)
	}
	return u, nil
}

// buildNotifier creates the agents enabled in cfg.
func buildNotifier(cfg config.NotificationsConfig, logger *slog.Logger) (*notify.Manager, error) {
	types, err := notify.ParseKinds(cfg.Types)
	if err != nil {
		return nil, err
	}

	var agents []notify.Agent
	if cfg.Log {
		agents = append(agents, notify.NewLogAgent(logger.With("agent", "log"), types))
	}
	if wh := cfg.Webhook; wh != nil && wh.URL != "" {
		whTypes := types
		if len(wh.Types) > 0 {
			if whTypes, err = notify.ParseKinds(wh.Types); err != nil {
				return nil, fmt.Errorf("webhook: %w", err)
			}
		}
		var opts []notify.WebhookOption
		if wh.AuthHeader != "" {
			opts = append(opts, notify.WithAuthHeader(wh.AuthHeader))
		}
		agents = append(agents, notify.NewWebhookAgent(wh.URL, whTypes, opts...))
	}
	return notify.NewManager(logger.With("component", "notify"), agents...), nil
}

func runServer(configPath string) error {
	configSource := "flag"
	if configPath == "" {
		loc, err := config.Discover()
		if err != nil {
			return err
		}
		configPath, configSource = loc.Path, loc.Source
	}

	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// === Stores ===
	store := library.NewStore(db)
	eventLog := events.NewEventLog(db)
	if _, err := seedAdmin(store, cfg.Admin, logger); err != nil {
		return err
	}

	bus := events.NewBus(eventLog, logger.With("component", "bus"))
	defer func() { _ = bus.Close() }()

	// === Clients ===
	tmdbOpts := []tmdb.Option{
		tmdb.WithCacheTTL(cfg.TMDB.CacheTTL),
		tmdb.WithRetry(cfg.TMDB.RetryAttempts, cfg.TMDB.RetryDelay),
	}
	if cfg.TMDB.BaseURL != "" {
		tmdbOpts = append(tmdbOpts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	}
	client := tmdb.NewClient(cfg.TMDB.APIKey, tmdbOpts...)
	meta := metadata.NewService(client, metadata.NewCache(db), logger.With("component", "metadata"))

	settings := acquisition.NewStaticSettings(cfg.AcquisitionSettings())
	factory := acquisition.NewStarrFactory(cfg.Dispatch.BackendTimeout, cfg.BreakerSettings(), logger.With("component", "acquisition"))

	// === Services ===
	notifier, err := buildNotifier(cfg.Notifications, logger)
	if err != nil {
		return fmt.Errorf("notifications: %w", err)
	}
	// Failure notices skip the bus so a saturated subscriber cannot drop them.
	sink := notify.NewBusSink(bus, logger.With("component", "notify"),
		notify.WithDirect(notifier, notify.KindMediaFailed))

	pool := dispatch.NewPool(cfg.Dispatch.Workers, cfg.Dispatch.QueueSize, logger.With("component", "dispatch"))
	engine := dispatch.NewEngine(dispatch.Deps{
		Settings: settings,
		Factory:  factory,
		Metadata: meta,
		Store:    store,
		Notify:   sink,
		Pool:     pool,
		Events:   bus,
		Logger:   logger.With("component", "dispatch"),
	})

	svc := requests.NewService(store, meta, engine, logger.With("component", "requests"),
		requests.WithNotifier(sink),
		requests.WithEvents(bus),
	)

	// === HTTP Setup ===
	api, err := v1.New(v1.ServerDeps{
		Requests: svc,
		Users:    store,
		Media:    store,
		EventLog: eventLog,
		Bus:      bus,
		Pool:     pool,
		Version:  version,
	}, logger.With("component", "api"))
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// === Background components ===
	notifications := handlers.NewNotificationHandler(bus, store, notifier, logger.With("handler", "notifications"))
	runner := server.NewRunner(logger,
		pool,
		server.Func{Label: notifications.Name(), Fn: notifications.Start},
		server.NewPruner(eventLog, meta, cfg.Events.Retention, cfg.Events.PruneInterval, logger.With("component", "pruner")),
		server.HTTP{Server: srv, ShutdownTimeout: 30 * time.Second},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reloadOnHangup(ctx, configPath, settings, logger)

	logger.Info("reqarrd starting",
		"version", version,
		"addr", addr,
		"config", configPath,
		"config_source", configSource,
		"radarr", len(cfg.Radarr),
		"sonarr", len(cfg.Sonarr),
	)
	if err := runner.Run(ctx); err != nil {
		return err
	}
	logger.Info("reqarrd stopped")
	return nil
}

// reloadOnHangup swaps in new acquisition settings when the process receives
// SIGHUP. Other sections need a restart.
func reloadOnHangup(ctx context.Context, path string, settings *acquisition.StaticSettings, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			cfg, err := config.Load(path)
			if err != nil {
				logger.Error("reload config failed", "path", path, "error", err)
				continue
			}
			settings.Replace(cfg.AcquisitionSettings())
			logger.Info("reloaded acquisition settings", "radarr", len(cfg.Radarr), "sonarr", len(cfg.Sonarr))
		}
	}
}
