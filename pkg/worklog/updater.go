package worklog

import (
	"log/slog"
	"time"

	"github.com/regulata/researchd/pkg/metrics"
)

// UpdateTaskStatus transitions the single task matching taskKey to status,
// handling the side effects the passive FlowTask does not: StartTime is
// stamped exactly once on transition into in_progress, EndTime exactly once
// on transition into completed or failed (only if StartTime was set), and the
// closed duration window is reported as a task-duration metric. Every
// transition is logged.
func UpdateTaskStatus(w *WorkLog, taskKey string, status TaskStatus) error {
	task, err := w.FindTask(taskKey)
	if err != nil {
		return err
	}

	prev := task.Status
	task.Status = status
	now := time.Now()

	if status == StatusInProgress && task.StartTime == nil {
		task.StartTime = &now
	}

	if status.stampsEndTime() && task.EndTime == nil && task.StartTime != nil {
		task.EndTime = &now
		duration := now.Sub(*task.StartTime)
		metrics.Default().ObserveTaskDuration(taskKey, string(status), duration)
		slog.Info("Task finished",
			"work_log_id", w.ID,
			"task", taskKey,
			"status", status,
			"duration", duration)
		return nil
	}

	slog.Debug("Task status updated",
		"work_log_id", w.ID,
		"task", taskKey,
		"from", prev,
		"to", status)
	return nil
}
