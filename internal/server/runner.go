// Package server runs the daemon's long-lived components.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Component is a long-lived part of the daemon. Run blocks until ctx is
// canceled or the component fails.
type Component interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner manages the daemon components.
type Runner struct {
	components []Component
	logger     *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(logger *slog.Logger, components ...Component) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		components: components,
		logger:     logger,
	}
}

// Add registers another component. It must be called before Run.
func (r *Runner) Add(c Component) {
	r.components = append(r.components, c)
}

// Run starts all components.
// It blocks until the context is canceled or a component fails, then waits
// for the rest to stop. Cancellation is not reported as an error.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, c := range r.components {
		g.Go(func() error {
			r.logger.Info("component started", "component", c.Name())
			err := c.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("component failed", "component", c.Name(), "error", err)
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			r.logger.Info("component stopped", "component", c.Name())
			return nil
		})
	}

	return g.Wait()
}

// Func adapts a function to a Component.
type Func struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (f Func) Name() string { return f.Label }

func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }

// HTTP serves srv until ctx is canceled, then shuts it down gracefully.
type HTTP struct {
	Server          *http.Server
	ShutdownTimeout time.Duration
}

func (h HTTP) Name() string { return "http" }

func (h HTTP) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.Server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := h.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := h.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
