package orchestrator

import "errors"

var (
	// ErrRunActive is returned when a run is requested for an execution id
	// that is still executing.
	ErrRunActive = errors.New("a run is already active for this execution id")

	// ErrNotFound is returned when no work log exists for an execution id.
	ErrNotFound = errors.New("no work log for execution id")

	// ErrNotReady is returned when a result is requested before the run
	// completed. Callers poll status rather than receive partial data.
	ErrNotReady = errors.New("run has not completed")
)
