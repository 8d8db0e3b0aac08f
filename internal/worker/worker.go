// Package worker runs the background sweep that removes expired sessions
// from stores without native key expiry.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/geocoder89/memberhub/internal/observability"
)

// unready after this many consecutive failed sweeps
const maxConsecutiveFailures = 3

type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type Config struct {
	Interval time.Duration
	WorkerID string
	// Timeout bounds a single sweep.
	Timeout time.Duration
}

type Worker struct {
	cfg   Config
	store Sweeper
	prom  *observability.Prom

	readyMu sync.RWMutex
	ready   bool

	failures atomic.Int32
}

func New(cfg Config, store Sweeper, prom *observability.Prom) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Worker{
		cfg:   cfg,
		store: store,
		prom:  prom,
	}
}

// Run sweeps once immediately and then every Interval until ctx is done.
// Failed sweeps are retried with exponential backoff.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	log := slog.Default().With("worker_id", w.cfg.WorkerID)
	log.Info("sweeper started", "interval", w.cfg.Interval.String())

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper received shutdown signal")
			return nil

		case <-timer.C:
			next := w.cfg.Interval

			n, err := w.ProcessOne(ctx)
			if err != nil {
				attempt := int(w.failures.Add(1)) - 1
				next = ExponentialBackoff(attempt, w.cfg.Interval)
				log.Error("session sweep failed", "err", err, "attempt", attempt+1, "retry_in", next.String())
			} else {
				w.failures.Store(0)
				if n > 0 {
					log.Info("expired sessions removed", "count", n)
				}
			}

			timer.Reset(next)
		}
	}
}

// ProcessOne performs a single sweep and reports how many sessions went.
func (w *Worker) ProcessOne(ctx context.Context) (int64, error) {
	sweepCtx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	n, err := w.store.DeleteExpired(sweepCtx)
	if err != nil {
		return 0, err
	}

	w.prom.Swept(n)
	return n, nil
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready && w.failures.Load() < maxConsecutiveFailures
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
