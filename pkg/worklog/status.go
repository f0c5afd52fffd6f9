package worklog

// TaskStatus represents the state of a work log or one of its tasks.
type TaskStatus string

// Task status constants.
const (
	StatusPending    TaskStatus = "pending"
	StatusScheduled  TaskStatus = "scheduled"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
	StatusCancelled  TaskStatus = "cancelled"
	StatusSkipped    TaskStatus = "skipped"
	StatusWarning    TaskStatus = "warning"
)

// IsTerminal reports whether a work log in this status has finished its run.
// Only the explicit conversational reset path leaves a terminal status.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// stampsEndTime reports whether a task transition into this status closes the
// task's duration window.
func (s TaskStatus) stampsEndTime() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is a known status value.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusInProgress, StatusCompleted,
		StatusFailed, StatusCancelled, StatusSkipped, StatusWarning:
		return true
	}
	return false
}
