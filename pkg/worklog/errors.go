package worklog

import "errors"

var (
	// ErrTaskKeyNotFound is returned when a task-tree lookup matches nothing.
	// A programming error: callers know their own task-key taxonomy.
	ErrTaskKeyNotFound = errors.New("task key not found")

	// ErrTaskKeyAmbiguous is returned when a lookup expecting exactly one
	// task matches more than one node in the tree.
	ErrTaskKeyAmbiguous = errors.New("task key matches multiple tasks")

	// ErrUnknownWorkflowKind is returned by the factory for an unrecognized
	// workflow kind.
	ErrUnknownWorkflowKind = errors.New("unknown workflow kind")
)
