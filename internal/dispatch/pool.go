package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Default pool sizing.
const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256
)

type job struct {
	id        string
	requestID int64
	fn        func()
}

// Pool runs dispatch continuations in the background. Jobs are queued by
// Submit and executed once Run is started, at most workers at a time. A
// panicking job is logged and does not take the pool down.
type Pool struct {
	workers int
	queue   chan job
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool

	inFlight  atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// NewPool creates a pool. Non-positive sizes fall back to the defaults.
func NewPool(workers, queueSize int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		workers: workers,
		queue:   make(chan job, queueSize),
		logger:  logger,
	}
}

// Name returns the component name for logging.
func (p *Pool) Name() string { return "dispatch-pool" }

// Submit queues fn and returns its job id.
func (p *Pool) Submit(requestID int64, fn func()) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return "", ErrPoolClosed
	}

	j := job{id: uuid.NewString(), requestID: requestID, fn: fn}
	select {
	case p.queue <- j:
		return j.id, nil
	default:
		return "", ErrQueueFull
	}
}

// Run executes queued jobs until ctx is done. On shutdown it stops accepting
// jobs, runs whatever is still queued and waits for all of them: a
// continuation that was accepted always completes.
func (p *Pool) Run(ctx context.Context) error {
	wp := pool.New().WithMaxGoroutines(p.workers)
	p.logger.Info("dispatch pool started", "workers", p.workers)

	for {
		select {
		case j := <-p.queue:
			wp.Go(func() { p.exec(j) })
		case <-ctx.Done():
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()
			close(p.queue)

			for j := range p.queue {
				wp.Go(func() { p.exec(j) })
			}
			wp.Wait()
			p.logger.Info("dispatch pool stopped", "completed", p.completed.Load())
			return nil
		}
	}
}

func (p *Pool) exec(j job) {
	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	var c panics.Catcher
	c.Try(j.fn)
	p.completed.Add(1)

	if r := c.Recovered(); r != nil {
		p.panicked.Add(1)
		p.logger.Error("dispatch job panicked",
			"job_id", j.id,
			"request_id", j.requestID,
			"panic", r.Value,
			"stack", string(r.Stack))
	}
}

// PoolStats is a snapshot of pool counters.
type PoolStats struct {
	Workers   int   `json:"workers"`
	Queued    int   `json:"queued"`
	InFlight  int64 `json:"in_flight"`
	Completed int64 `json:"completed"`
	Panicked  int64 `json:"panicked"`
}

// Stats returns current counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.workers,
		Queued:    len(p.queue),
		InFlight:  p.inFlight.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
	}
}
