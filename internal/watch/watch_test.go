package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunner_DebounceCoalescesTriggers(t *testing.T) {
	var builds atomic.Int32
	r := NewRunner(30*time.Millisecond, func(ctx context.Context, gen uint64) error {
		builds.Add(1)
		return nil
	}, zap.NewNop())

	for i := 0; i < 5; i++ {
		r.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return builds.Load() == 1
	}, time.Second, 10*time.Millisecond, "a save burst compiles once")
	assert.Equal(t, uint64(1), r.Generation())
}

func TestRunner_NewBuildSupersedesInFlight(t *testing.T) {
	started := make(chan uint64, 2)
	finished := make(chan error, 2)

	r := NewRunner(10*time.Millisecond, func(ctx context.Context, gen uint64) error {
		started <- gen
		if gen == 1 {
			// First build hangs until cancelled by the second.
			<-ctx.Done()
			finished <- ctx.Err()
			return ctx.Err()
		}
		finished <- nil
		return nil
	}, zap.NewNop())

	r.Trigger()
	select {
	case gen := <-started:
		require.Equal(t, uint64(1), gen)
	case <-time.After(time.Second):
		t.Fatal("first build never started")
	}

	r.Trigger()
	select {
	case err := <-finished:
		assert.ErrorIs(t, err, context.Canceled, "in-flight build is cancelled")
	case <-time.After(time.Second):
		t.Fatal("first build was not superseded")
	}

	select {
	case gen := <-started:
		assert.Equal(t, uint64(2), gen)
	case <-time.After(time.Second):
		t.Fatal("second build never started")
	}
	require.Eventually(t, func() bool {
		return r.Generation() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRunner_StopCancelsInFlightAndUnblocksStart(t *testing.T) {
	blocked := make(chan struct{})
	r := NewRunner(5*time.Millisecond, func(ctx context.Context, gen uint64) error {
		close(blocked)
		<-ctx.Done()
		return ctx.Err()
	}, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- r.Start() }()

	r.Trigger()
	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("build never started")
	}

	r.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

type chanTrigger struct {
	ch chan struct{}
}

func (c *chanTrigger) Trigger() {
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

func TestWatcher_TriggersOnPlanWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: studio\n"), 0o644))

	trig := &chanTrigger{ch: make(chan struct{}, 1)}
	w := NewWatcher(path, trig, zap.NewNop())
	go func() {
		_ = w.Start()
	}()
	defer w.Stop()

	// Let the watch register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("name: loft\n"), 0o644))

	select {
	case <-trig.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger after plan write")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: studio\n"), 0o644))

	trig := &chanTrigger{ch: make(chan struct{}, 1)}
	w := NewWatcher(path, trig, zap.NewNop())
	go func() {
		_ = w.Start()
	}()
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-trig.ch:
		t.Fatal("unrelated file triggered a build")
	case <-time.After(200 * time.Millisecond):
	}
}

type stubService struct {
	started chan struct{}
	stopped atomic.Bool
	fail    error
}

func (s *stubService) Start() error {
	close(s.started)
	if s.fail != nil {
		return s.fail
	}
	return nil
}

func (s *stubService) Stop() { s.stopped.Store(true) }

func TestSupervisor_ServiceFailureStopsAll(t *testing.T) {
	healthy := &stubService{started: make(chan struct{})}
	broken := &stubService{started: make(chan struct{}), fail: errors.New("boom")}

	s := NewSupervisor(zap.NewNop())
	s.Add("healthy", healthy)
	s.Add("broken", broken)

	err := s.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.True(t, healthy.stopped.Load())
	assert.True(t, broken.stopped.Load())
}
