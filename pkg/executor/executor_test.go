package executor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsTask(t *testing.T) {
	m := New(2)
	defer m.Shutdown(time.Second)

	done := make(chan struct{})
	require.NoError(t, m.Execute("exec-1", func(ctx context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestExecuteRejectsActiveDuplicate(t *testing.T) {
	m := New(2)
	defer m.Shutdown(time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, m.Execute("exec-1", func(ctx context.Context) {
		close(started)
		<-release
	}))
	<-started

	err := m.Execute("exec-1", func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrAlreadyActive)
	assert.True(t, m.IsActive("exec-1"))

	close(release)
}

func TestExecuteIdReusableAfterCompletion(t *testing.T) {
	m := New(1)
	defer m.Shutdown(time.Second)

	first := make(chan struct{})
	require.NoError(t, m.Execute("exec-1", func(ctx context.Context) { close(first) }))
	<-first

	// Wait for the tracking entry to clear.
	require.Eventually(t, func() bool { return !m.IsActive("exec-1") },
		time.Second, 5*time.Millisecond)

	second := make(chan struct{})
	require.NoError(t, m.Execute("exec-1", func(ctx context.Context) { close(second) }))
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second run never started")
	}
}

func TestCancelRunningTask(t *testing.T) {
	m := New(2)
	defer m.Shutdown(time.Second)

	var observed atomic.Bool
	started := make(chan struct{})
	finished := make(chan struct{})
	require.NoError(t, m.Execute("exec-1", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		observed.Store(true)
		close(finished)
	}))
	<-started

	assert.True(t, m.Cancel("exec-1"))

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("task never observed cancellation")
	}
	assert.True(t, observed.Load())
	assert.False(t, m.Cancel("unknown"))
}

func TestCancelQueuedTaskNeverRuns(t *testing.T) {
	m := New(1)
	defer m.Shutdown(time.Second)

	// Occupy the only slot.
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, m.Execute("blocker", func(ctx context.Context) {
		close(started)
		<-release
	}))
	<-started

	var ran atomic.Bool
	require.NoError(t, m.Execute("queued", func(ctx context.Context) {
		ran.Store(true)
	}))

	assert.True(t, m.Cancel("queued"))
	require.Eventually(t, func() bool { return !m.IsActive("queued") },
		time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load(), "cancelled queued task must not run")
}

func TestBoundedConcurrency(t *testing.T) {
	m := New(2)
	defer m.Shutdown(time.Second)

	var running atomic.Int32
	var peak atomic.Int32
	release := make(chan struct{})

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, m.Execute(id, func(ctx context.Context) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
		}))
	}

	// Give the pool time to saturate.
	require.Eventually(t, func() bool { return running.Load() == 2 },
		time.Second, 5*time.Millisecond)
	close(release)

	require.Eventually(t, func() bool { return m.ActiveCount() == 0 },
		time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestActiveTracking(t *testing.T) {
	m := New(4)
	defer m.Shutdown(time.Second)

	release := make(chan struct{})
	for _, id := range []string{"x", "y"} {
		require.NoError(t, m.Execute(id, func(ctx context.Context) { <-release }))
	}

	assert.Equal(t, 2, m.ActiveCount())
	assert.ElementsMatch(t, []string{"x", "y"}, m.ActiveIDs())
	close(release)
}

func TestPanicDoesNotLeakSlotOrTracking(t *testing.T) {
	m := New(1)
	defer m.Shutdown(time.Second)

	require.NoError(t, m.Execute("boom", func(ctx context.Context) {
		panic("boom")
	}))

	require.Eventually(t, func() bool { return !m.IsActive("boom") },
		time.Second, 5*time.Millisecond)

	// The slot must be free again.
	done := make(chan struct{})
	require.NoError(t, m.Execute("after", func(ctx context.Context) { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("slot leaked after panic")
	}
}

func TestShutdownCancelsTasksAndRejectsNewWork(t *testing.T) {
	m := New(2)

	cancelled := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, m.Execute("exec-1", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	}))
	<-started

	m.Shutdown(time.Second)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not cancel running task")
	}

	err := m.Execute("exec-2", func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestShutdownTwiceDoesNotPanic(t *testing.T) {
	m := New(1)
	m.Shutdown(time.Second)
	assert.NotPanics(t, func() { m.Shutdown(time.Second) })
}
