// Package executor runs long agent workflows on a bounded pool of worker
// goroutines, tracked by execution id so they can be queried and cancelled.
// Exactly one Manager exists per process, constructed at startup and injected
// where needed.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrAlreadyActive is returned when a task is submitted under an
	// execution id that is still running. The design defines no merge
	// semantics for a double submit; callers avoid it via the
	// conversational-reuse path.
	ErrAlreadyActive = errors.New("execution id already active")

	// ErrShuttingDown is returned when new work arrives after Shutdown.
	ErrShuttingDown = errors.New("executor is shutting down")
)

// TaskFunc is a workflow body. The context is cancelled by Cancel or at
// shutdown; the function is expected to check it between steps. There is no
// forced preemption: a call already in flight runs to completion.
type TaskFunc func(ctx context.Context)

// Manager executes workflow functions on a bounded number of worker slots.
type Manager struct {
	slots      chan struct{}
	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu       sync.RWMutex
	active   map[string]context.CancelFunc
	stopping bool
}

// New creates a manager with at most maxConcurrent tasks running at once.
func New(maxConcurrent int) *Manager {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		slots:      make(chan struct{}, maxConcurrent),
		baseCtx:    ctx,
		baseCancel: cancel,
		active:     make(map[string]context.CancelFunc),
	}
}

// Execute submits fn under executionID. Submission never blocks the caller:
// the task waits for a free worker slot on its own goroutine, so the call may
// queue once the pool is saturated. A second submit under a still-active id
// is rejected with ErrAlreadyActive.
func (m *Manager) Execute(executionID string, fn TaskFunc) error {
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return ErrShuttingDown
	}
	if _, ok := m.active[executionID]; ok {
		m.mu.Unlock()
		return ErrAlreadyActive
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	m.active[executionID] = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(executionID)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Workflow panicked", "execution_id", executionID, "panic", r)
			}
		}()

		// Wait for a slot; a cancellation before the task starts means it
		// never runs at all.
		select {
		case m.slots <- struct{}{}:
		case <-ctx.Done():
			slog.Info("Task cancelled before start", "execution_id", executionID)
			return
		}
		defer func() { <-m.slots }()

		if ctx.Err() != nil {
			slog.Info("Task cancelled before start", "execution_id", executionID)
			return
		}

		slog.Debug("Task started", "execution_id", executionID)
		fn(ctx)
		slog.Debug("Task finished", "execution_id", executionID)
	}()
	return nil
}

// Cancel requests best-effort cooperative cancellation of the task tracked
// under executionID. It returns true if such a task existed and a
// cancellation attempt was made. A task that has not started yet is dropped;
// a running task stops at its next context checkpoint.
func (m *Manager) Cancel(executionID string) bool {
	m.mu.RLock()
	cancel, ok := m.active[executionID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	slog.Info("Cancellation requested", "execution_id", executionID)
	cancel()
	return true
}

// IsActive reports whether a task is tracked under executionID.
func (m *Manager) IsActive(executionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.active[executionID]
	return ok
}

// ActiveIDs returns the execution ids of all tracked tasks.
func (m *Manager) ActiveIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	return ids
}

// ActiveCount returns the number of tracked tasks.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

// Shutdown stops accepting work, cancels every tracked task, and waits up to
// timeout for running tasks to observe the cancellation and exit. Long
// domain code that never checks its context keeps running past the timeout;
// that is logged, not forced.
func (m *Manager) Shutdown(timeout time.Duration) {
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return
	}
	m.stopping = true
	remaining := len(m.active)
	m.mu.Unlock()

	slog.Info("Executor shutting down", "active_tasks", remaining)
	m.baseCancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("Executor shut down cleanly")
	case <-time.After(timeout):
		slog.Warn("Executor shutdown timed out with tasks still running",
			"active_tasks", m.ActiveCount())
	}
}

func (m *Manager) release(executionID string) {
	m.mu.Lock()
	cancel, ok := m.active[executionID]
	delete(m.active, executionID)
	m.mu.Unlock()
	if ok {
		cancel()
	}
}
