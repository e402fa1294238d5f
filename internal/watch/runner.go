// Package watch rebuilds a plan whenever its source file changes. File events
// are debounced so editor save bursts cost one compile, and a new build
// supersedes any build still in flight: its context is cancelled and only the
// latest generation's output is ever applied.
package watch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// CompileFunc runs one build. The context is cancelled when a newer
// generation supersedes this one or the runner stops.
type CompileFunc func(ctx context.Context, generation uint64) error

// Runner debounces triggers into sequential compile generations.
type Runner struct {
	debounce time.Duration
	fn       CompileFunc
	logger   *zap.Logger

	generation atomic.Uint64

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	root   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner.
//
// Precondition: fn and logger are non-nil; debounce is positive.
func NewRunner(debounce time.Duration, fn CompileFunc, logger *zap.Logger) *Runner {
	return &Runner{debounce: debounce, fn: fn, logger: logger}
}

// Generation returns the most recently started build generation.
func (r *Runner) Generation() uint64 {
	return r.generation.Load()
}

// Start blocks until Stop is called, then waits for the in-flight build to
// observe its cancellation and return.
func (r *Runner) Start() error {
	root, stop := context.WithCancel(context.Background())
	r.mu.Lock()
	r.root = root
	r.stop = stop
	r.mu.Unlock()

	<-root.Done()
	r.wg.Wait()
	return nil
}

// Stop cancels the pending debounce timer and any in-flight build.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.cancel != nil {
		r.cancel()
	}
	stop := r.stop
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Trigger schedules a build after the debounce window. Repeated triggers
// within the window coalesce into one build.
func (r *Runner) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Reset(r.debounce)
		return
	}
	r.timer = time.AfterFunc(r.debounce, r.fire)
}

// fire starts the next build generation, superseding any build in flight.
func (r *Runner) fire() {
	r.mu.Lock()
	r.timer = nil
	if r.cancel != nil {
		r.cancel()
	}
	gen := r.generation.Add(1)
	root := r.root
	if root == nil {
		root = context.Background()
	}
	ctx, cancel := context.WithCancel(root)
	r.cancel = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer cancel()

		start := time.Now()
		err := r.fn(ctx, gen)
		elapsed := time.Since(start)

		switch {
		case errors.Is(err, context.Canceled):
			r.logger.Info("build superseded",
				zap.Uint64("generation", gen),
				zap.Duration("elapsed", elapsed))
		case err != nil:
			r.logger.Error("build failed",
				zap.Uint64("generation", gen),
				zap.Error(err),
				zap.Duration("elapsed", elapsed))
		default:
			r.logger.Info("build complete",
				zap.Uint64("generation", gen),
				zap.Duration("elapsed", elapsed))
		}
	}()
}
