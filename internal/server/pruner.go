package server

import (
	"context"
	"log/slog"
	"time"
)

// EventPruner deletes logged events older than a retention window.
type EventPruner interface {
	Prune(olderThan time.Duration) (int64, error)
}

// CachePruner deletes expired cache entries.
type CachePruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Pruner periodically trims the event log and the metadata cache.
type Pruner struct {
	events    EventPruner
	cache     CachePruner
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// NewPruner creates a pruner. Either target may be nil.
func NewPruner(events EventPruner, cache CachePruner, retention, interval time.Duration, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Pruner{
		events:    events,
		cache:     cache,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

func (p *Pruner) Name() string { return "pruner" }

// Run prunes once at start and then every interval.
func (p *Pruner) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.prune(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	if p.events != nil && p.retention > 0 {
		n, err := p.events.Prune(p.retention)
		if err != nil {
			p.logger.Error("prune events failed", "error", err)
		} else if n > 0 {
			p.logger.Info("pruned events", "count", n, "retention", p.retention.String())
		}
	}
	if p.cache != nil {
		n, err := p.cache.Prune(ctx)
		if err != nil {
			p.logger.Error("prune metadata cache failed", "error", err)
		} else if n > 0 {
			p.logger.Debug("pruned metadata cache", "count", n)
		}
	}
}
