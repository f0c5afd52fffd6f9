package worklog

import (
	"fmt"
	"time"
)

// FlowTask is one named step of a workflow. It is a passive data holder:
// timestamp stamping and transition logging belong to UpdateTaskStatus, not
// to the task itself. Subtasks form a tree — each task is owned by exactly
// one parent list, so depth-first traversal needs no cycle protection.
type FlowTask struct {
	Key         string      `json:"key"`
	Description string      `json:"description"`
	Status      TaskStatus  `json:"status"`
	StartTime   *time.Time  `json:"start_time,omitempty"`
	EndTime     *time.Time  `json:"end_time,omitempty"`
	Subtasks    []*FlowTask `json:"subtasks,omitempty"`
}

// NewFlowTask creates a pending task.
func NewFlowTask(key, description string) *FlowTask {
	return &FlowTask{Key: key, Description: description, Status: StatusPending}
}

// FindByKey returns every task in this subtree (self included) whose key
// matches, in depth-first order. Keys may repeat across branches; callers
// that require a unique match use FindOne.
func (t *FlowTask) FindByKey(key string) []*FlowTask {
	var matches []*FlowTask
	if t.Key == key {
		matches = append(matches, t)
	}
	for _, sub := range t.Subtasks {
		matches = append(matches, sub.FindByKey(key)...)
	}
	return matches
}

// FindTasks searches a task list and all nested subtasks for key.
func FindTasks(tasks []*FlowTask, key string) []*FlowTask {
	var matches []*FlowTask
	for _, t := range tasks {
		matches = append(matches, t.FindByKey(key)...)
	}
	return matches
}

// FindOne returns the single task matching key, distinguishing a missing key
// from an ambiguous one. Both are caller errors.
func FindOne(tasks []*FlowTask, key string) (*FlowTask, error) {
	matches := FindTasks(tasks, key)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrTaskKeyNotFound, key)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q (%d matches)", ErrTaskKeyAmbiguous, key, len(matches))
	}
}

// reset rolls the task and its subtasks back to pending and clears the
// duration window.
func (t *FlowTask) reset() {
	t.Status = StatusPending
	t.StartTime = nil
	t.EndTime = nil
	for _, sub := range t.Subtasks {
		sub.reset()
	}
}
