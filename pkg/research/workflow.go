// Package research defines the agent workflows: ordered steps that call the
// Model and Tool collaborators and record their progress on a work log. The
// orchestrator owns the step loop (status transitions, cancellation
// checkpoints); steps do domain work only.
package research

import (
	"context"

	"github.com/regulata/researchd/pkg/worklog"
)

// Step is one unit of a workflow, bound to the flow task it reports under.
type Step struct {
	// TaskKey names the FlowTask this step drives.
	TaskKey string

	// ExplainabilityOnly marks steps skipped (task status skipped) when the
	// caller did not request explainability output.
	ExplainabilityOnly bool

	// Run performs the step. It must return promptly once ctx is done; an
	// in-flight model or tool call is the only place cancellation waits.
	Run func(ctx context.Context, w *worklog.WorkLog) error
}

// Workflow is the ordered step list for one workflow kind.
type Workflow struct {
	Kind  worklog.WorkflowKind
	Steps []Step
}

// Builder constructs the workflow for a given kind. The orchestrator calls
// it once per run so each run gets fresh per-run state.
type Builder func(kind worklog.WorkflowKind) (*Workflow, error)
