package goSession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSweepSchedule fires the expiry sweep once per minute.
const DefaultSweepSchedule = "@every 1m"

// parseSchedule accepts "@every <duration>" or a bare duration literal.
func parseSchedule(schedule string) (time.Duration, error) {
	spec := strings.TrimSpace(schedule)
	if rest, ok := strings.CutPrefix(spec, "@every"); ok {
		spec = strings.TrimSpace(rest)
	}

	interval, err := time.ParseDuration(spec)
	if err != nil {
		return 0, fmt.Errorf("%w: sweep schedule %q: %v", ErrInvalidConfig, schedule, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("%w: sweep schedule %q must be positive", ErrInvalidConfig, schedule)
	}
	return interval, nil
}

// Sweeper periodically invokes [Store.SweepExpired]. One sweeper is
// constructed at startup, started once, and stopped on shutdown. Sweep
// failures are logged and never stop the schedule; an overlapping tick is
// skipped, never queued.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger

	running atomic.Bool
	started atomic.Bool
	done    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSweeper builds a sweeper over the store using the given schedule
// string ("@every 1m" form; empty selects [DefaultSweepSchedule]). An
// unparseable schedule fails here, at construction.
func NewSweeper(store *Store, schedule string) (*Sweeper, error) {
	if store == nil {
		return nil, errors.New("store required")
	}
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	interval, err := parseSchedule(schedule)
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   store.logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Start launches the sweep loop. Subsequent calls are no-ops.
func (w *Sweeper) Start() {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.run()
	})
}

// Stop terminates the sweep loop and waits for an in-flight sweep to finish.
// Subsequent calls are no-ops.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if w.started.Load() {
			<-w.stopped
		}
	})
}

// RunOnce performs a single sweep, honoring the re-entrancy guard: when a
// sweep is already in flight the call returns immediately with no work done.
func (w *Sweeper) RunOnce(ctx context.Context) (int, error) {
	if !w.running.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer w.running.Store(false)

	return w.store.SweepExpired(ctx)
}

func (w *Sweeper) run() {
	defer close(w.stopped)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			swept, err := w.RunOnce(context.Background())
			if err != nil {
				w.logger.Error("session sweep failed", "swept", swept, "error", err)
				continue
			}
			w.logger.Debug("session sweep completed", "swept", swept)
		}
	}
}
