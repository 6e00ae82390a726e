package acquisition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the per-instance circuit breakers.
type BreakerConfig struct {
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // closed-state count reset
	Timeout          time.Duration // open-state duration before probing
	FailureThreshold uint32        // consecutive failures that open the circuit
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

func newBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*Added] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerConfig().FailureThreshold
	}
	return gobreaker.NewCircuitBreaker[*Added](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("acquisition breaker state changed", "instance", name, "from", from.String(), "to", to.String())
		},
	})
}

// breakerMovie guards a MovieBackend with a circuit breaker.
type breakerMovie struct {
	next MovieBackend
	cb   *gobreaker.CircuitBreaker[*Added]
}

// WithMovieBreaker wraps b so an unreachable instance fails fast.
func WithMovieBreaker(b MovieBackend, name string, cfg BreakerConfig, logger *slog.Logger) MovieBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &breakerMovie{next: b, cb: newBreaker(name, cfg, logger)}
}

func (b *breakerMovie) AddMovie(ctx context.Context, p MovieParams) (*Added, error) {
	added, err := b.cb.Execute(func() (*Added, error) {
		return b.next.AddMovie(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.cb.Name(), err)
	}
	return added, nil
}

// breakerSeries guards a SeriesBackend with a circuit breaker.
type breakerSeries struct {
	next SeriesBackend
	cb   *gobreaker.CircuitBreaker[*Added]
}

// WithSeriesBreaker wraps b so an unreachable instance fails fast.
func WithSeriesBreaker(b SeriesBackend, name string, cfg BreakerConfig, logger *slog.Logger) SeriesBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &breakerSeries{next: b, cb: newBreaker(name, cfg, logger)}
}

func (b *breakerSeries) AddSeries(ctx context.Context, p SeriesParams) (*Added, error) {
	added, err := b.cb.Execute(func() (*Added, error) {
		return b.next.AddSeries(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.cb.Name(), err)
	}
	return added, nil
}
