package api

import (
	"context"
	"sync/atomic"
)

// WorkerPool bounds concurrent request processing. Book lookups run in the
// fast lane; solver requests, which can take seconds, run in the slow lane
// so they never starve lookups.
type WorkerPool struct {
	fastSem    chan struct{} // Semaphore for book lookups
	slowSem    chan struct{} // Semaphore for solver runs
	queuedFast atomic.Int64
	queuedSlow atomic.Int64
	activeFast atomic.Int64
	activeSlow atomic.Int64
	totalFast  atomic.Int64
	totalSlow  atomic.Int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxFastWorkers int // Max concurrent lookups (default: 100)
	MaxSlowWorkers int // Max concurrent solves (default: 2)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxFastWorkers: 100,
		MaxSlowWorkers: 2,
	}
}

// NewWorkerPool creates a new worker pool. Non-positive limits fall back to
// the defaults.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	def := DefaultPoolConfig()
	if config.MaxFastWorkers <= 0 {
		config.MaxFastWorkers = def.MaxFastWorkers
	}
	if config.MaxSlowWorkers <= 0 {
		config.MaxSlowWorkers = def.MaxSlowWorkers
	}

	return &WorkerPool{
		fastSem: make(chan struct{}, config.MaxFastWorkers),
		slowSem: make(chan struct{}, config.MaxSlowWorkers),
	}
}

func acquire(ctx context.Context, sem chan struct{}, queued, active *atomic.Int64) error {
	queued.Add(1)
	defer queued.Add(-1)

	select {
	case sem <- struct{}{}:
		active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func release(sem chan struct{}, active, total *atomic.Int64) {
	active.Add(-1)
	total.Add(1)
	<-sem
}

// AcquireFast acquires a lookup slot, waiting until one is free or ctx is
// done.
func (p *WorkerPool) AcquireFast(ctx context.Context) error {
	return acquire(ctx, p.fastSem, &p.queuedFast, &p.activeFast)
}

// ReleaseFast releases a lookup slot.
func (p *WorkerPool) ReleaseFast() {
	release(p.fastSem, &p.activeFast, &p.totalFast)
}

// AcquireSlow acquires a solver slot, waiting until one is free or ctx is
// done.
func (p *WorkerPool) AcquireSlow(ctx context.Context) error {
	return acquire(ctx, p.slowSem, &p.queuedSlow, &p.activeSlow)
}

// ReleaseSlow releases a solver slot.
func (p *WorkerPool) ReleaseSlow() {
	release(p.slowSem, &p.activeSlow, &p.totalSlow)
}

// TryAcquireSlow takes a solver slot only if one is free right now.
func (p *WorkerPool) TryAcquireSlow() bool {
	select {
	case p.slowSem <- struct{}{}:
		p.activeSlow.Add(1)
		return true
	default:
		return false
	}
}

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	ActiveFast int64 `json:"active_fast"`
	ActiveSlow int64 `json:"active_slow"`
	QueuedFast int64 `json:"queued_fast"`
	QueuedSlow int64 `json:"queued_slow"`
	TotalFast  int64 `json:"total_fast"`
	TotalSlow  int64 `json:"total_slow"`
	MaxFast    int   `json:"max_fast"`
	MaxSlow    int   `json:"max_slow"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveFast: p.activeFast.Load(),
		ActiveSlow: p.activeSlow.Load(),
		QueuedFast: p.queuedFast.Load(),
		QueuedSlow: p.queuedSlow.Load(),
		TotalFast:  p.totalFast.Load(),
		TotalSlow:  p.totalSlow.Load(),
		MaxFast:    cap(p.fastSem),
		MaxSlow:    cap(p.slowSem),
	}
}
