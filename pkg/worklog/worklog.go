// Package worklog defines the in-memory model of one workflow run: a task
// tree with statuses and timestamps, an append-only tool-call log, and a
// keyed repository data store, aggregated under a caller-supplied execution
// id.
//
// A work log has exactly one writer goroutine (the executing workflow).
// Status pollers read concurrently and must treat every read as a best-effort
// snapshot: individual field assignments become visible once written, but no
// cross-field atomicity is promised.
package worklog

import (
	"time"

	"github.com/regulata/researchd/pkg/datastore"
)

// WorkLog is the aggregate root tracking one workflow run.
type WorkLog struct {
	ID     string
	Kind   WorkflowKind
	Status TaskStatus

	// Tasks is the ordered top-level task list. The overall Status never
	// derives automatically from task statuses; AllTasksCompleted is the
	// explicit aggregation callers use.
	Tasks []*FlowTask

	ToolLogs  []*ToolLogEntry
	DataStore *datastore.Store

	CreatedAt time.Time
	ExpiresAt *time.Time

	// Turn counts conversational reuses of this execution id, advanced by
	// Reset. Used by logging and explainability output.
	Turn int

	// Result fields attached post-hoc by whichever component produced them.
	ReportPath  string
	FinalAnswer string
	Error       string
}

// FindTask returns the single task matching key anywhere in the tree.
func (w *WorkLog) FindTask(key string) (*FlowTask, error) {
	return FindOne(w.Tasks, key)
}

// AppendToolLog appends an entry and returns a pointer to the stored copy so
// the caller can fill in the result after the call completes. The pointer
// stays valid across later appends, so a tool call logged mid-flight by a
// nested tool cannot strand the outer entry's result.
func (w *WorkLog) AppendToolLog(entry ToolLogEntry) *ToolLogEntry {
	stored := &entry
	w.ToolLogs = append(w.ToolLogs, stored)
	return stored
}

// AllTasksCompleted reports whether every top-level task is completed.
func (w *WorkLog) AllTasksCompleted() bool {
	for _, t := range w.Tasks {
		if t.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// CancelRequested reports whether the run should stop scheduling further
// steps. Workflows check this between steps; there is no forced preemption.
func (w *WorkLog) CancelRequested() bool {
	return w.Status == StatusCancelled || w.Status == StatusFailed
}

// Expired reports whether the work log is past its expiry. Work logs with no
// expiry never expire.
func (w *WorkLog) Expired(now time.Time) bool {
	return w.ExpiresAt != nil && now.After(*w.ExpiresAt)
}

// Snapshot is a read-only copy of a work log's observable state, safe to
// hand to HTTP serialization.
type Snapshot struct {
	ID          string         `json:"id"`
	Kind        WorkflowKind   `json:"workflow"`
	Status      TaskStatus     `json:"status"`
	Turn        int            `json:"turn"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	Tasks       []TaskSnapshot `json:"tasks"`
	ToolCalls   int            `json:"tool_calls"`
	ReportPath  string         `json:"report_path,omitempty"`
	FinalAnswer string         `json:"final_answer,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// TaskSnapshot mirrors one FlowTask for status responses.
type TaskSnapshot struct {
	Key         string         `json:"key"`
	Description string         `json:"description"`
	Status      TaskStatus     `json:"status"`
	StartTime   *time.Time     `json:"start_time,omitempty"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	Subtasks    []TaskSnapshot `json:"subtasks,omitempty"`
}

// Snapshot copies the work log's observable state.
func (w *WorkLog) Snapshot() Snapshot {
	tasks := make([]TaskSnapshot, len(w.Tasks))
	for i, t := range w.Tasks {
		tasks[i] = snapshotTask(t)
	}
	return Snapshot{
		ID:          w.ID,
		Kind:        w.Kind,
		Status:      w.Status,
		Turn:        w.Turn,
		CreatedAt:   w.CreatedAt,
		ExpiresAt:   w.ExpiresAt,
		Tasks:       tasks,
		ToolCalls:   len(w.ToolLogs),
		ReportPath:  w.ReportPath,
		FinalAnswer: w.FinalAnswer,
		Error:       w.Error,
	}
}

func snapshotTask(t *FlowTask) TaskSnapshot {
	snap := TaskSnapshot{
		Key:         t.Key,
		Description: t.Description,
		Status:      t.Status,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
	}
	for _, sub := range t.Subtasks {
		snap.Subtasks = append(snap.Subtasks, snapshotTask(sub))
	}
	return snap
}
