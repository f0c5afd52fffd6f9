// Package orchestrator composes the work-log factory, the registry, and the
// executor into the single entry point the HTTP layer consumes: start a run
// (new or conversational reuse), poll status, fetch the result, cancel.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/regulata/researchd/pkg/agent"
	"github.com/regulata/researchd/pkg/executor"
	"github.com/regulata/researchd/pkg/metrics"
	"github.com/regulata/researchd/pkg/registry"
	"github.com/regulata/researchd/pkg/research"
	"github.com/regulata/researchd/pkg/worklog"
)

// Archiver persists a finished run's exported state. Optional collaborator;
// a nil Archiver disables archiving.
type Archiver interface {
	ArchiveRun(ctx context.Context, w *worklog.WorkLog) error
}

// Facade is the orchestration entry point. One instance per process,
// constructed at startup with its collaborators injected.
type Facade struct {
	registry *registry.Registry
	executor *executor.Manager
	model    agent.Model

	searchTool agent.Tool
	queryTool  agent.Tool
	archiver   Archiver
	ttl        time.Duration
}

// Option configures a Facade.
type Option func(*Facade)

// WithSearchTool attaches the web-search tool used by research flows.
func WithSearchTool(t agent.Tool) Option { return func(f *Facade) { f.searchTool = t } }

// WithQueryTool attaches the dataset-query tool used by data-query flows.
func WithQueryTool(t agent.Tool) Option { return func(f *Facade) { f.queryTool = t } }

// WithArchiver attaches an archiver invoked when a run reaches a terminal
// status.
func WithArchiver(a Archiver) Option { return func(f *Facade) { f.archiver = a } }

// WithWorkLogTTL sets how long an inactive work log stays resident for
// conversational reuse before the purge sweep reclaims it.
func WithWorkLogTTL(ttl time.Duration) Option { return func(f *Facade) { f.ttl = ttl } }

// New creates a facade.
func New(reg *registry.Registry, exec *executor.Manager, model agent.Model, opts ...Option) *Facade {
	f := &Facade{
		registry: reg,
		executor: exec,
		model:    model,
		ttl:      30 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RunRequest describes one workflow run.
type RunRequest struct {
	ExecutionID    string
	Query          string
	Kind           worklog.WorkflowKind
	Explainability bool
}

// Start prepares the work log for req and submits the run to the executor.
// It returns once the run is registered and submitted; it never waits for
// execution. The work log is registered before execution starts so
// concurrent status polls resolve from the moment the run begins.
func (f *Facade) Start(req RunRequest) (*worklog.WorkLog, error) {
	w, reused, err := f.resolve(req)
	if err != nil {
		return nil, err
	}
	if err := f.executor.Execute(req.ExecutionID, func(ctx context.Context) {
		f.execute(ctx, w, req, reused)
	}); err != nil {
		return nil, err
	}
	return w, nil
}

// Run executes req synchronously and always returns a usable work log: on
// any failure the returned work log carries status failed rather than an
// error escaping to the caller. Unknown workflow kinds yield a minimal
// fallback work log.
func (f *Facade) Run(ctx context.Context, req RunRequest) *worklog.WorkLog {
	w, reused, err := f.resolve(req)
	if err != nil {
		slog.Error("Run preparation failed",
			"execution_id", req.ExecutionID, "error", err)
		return f.fallbackWorkLog(req, err)
	}
	f.execute(ctx, w, req, reused)
	return w
}

// resolve finds the live work log for the execution id or creates and
// registers a new one. It never mutates a reused work log; the
// conversational rewind belongs to execute, so a rejected submission leaves
// the previous turn intact.
func (f *Facade) resolve(req RunRequest) (*worklog.WorkLog, bool, error) {
	if f.executor.IsActive(req.ExecutionID) {
		return nil, false, fmt.Errorf("%w: %q", ErrRunActive, req.ExecutionID)
	}

	if existing := f.registry.Get(req.ExecutionID); existing != nil &&
		!existing.Expired(time.Now()) && existing.Kind == req.Kind {
		return existing, true, nil
	}

	w, err := worklog.New(req.ExecutionID, req.Kind, f.ttl)
	if err != nil {
		return nil, false, err
	}
	f.registry.Set(req.ExecutionID, w)
	return w, false, nil
}

// execute is the workflow body run under the executor. All failures are
// converted into a terminal work-log status here; nothing propagates to a
// polling caller as an exception.
func (f *Facade) execute(ctx context.Context, w *worklog.WorkLog, req RunRequest, reused bool) {
	// The conversational rewind runs on the single writer goroutine, after
	// the executor accepted the submission.
	if reused {
		worklog.Reset(w)
		f.refreshExpiry(w)
	}

	log := slog.With("execution_id", req.ExecutionID, "workflow", req.Kind, "turn", w.Turn)
	log.Info("Run started", "query_len", len(req.Query))

	metrics.Default().RunStarted()
	scratch := newRunScratch()
	defer func() {
		// Per-run scratch is detached from the work log and always torn
		// down, whatever the outcome.
		scratch.clear()
		metrics.Default().RunEnded()
	}()

	w.Status = worklog.StatusInProgress

	wf, err := f.buildWorkflow(req)
	if err != nil {
		f.fail(w, log, err)
		return
	}
	scratch.workflow = wf

	for _, step := range wf.Steps {
		// Cooperative cancellation checkpoint: the token and the work log's
		// own status both stop the run here.
		if ctx.Err() != nil {
			f.markCancelled(w, log)
			return
		}
		if w.CancelRequested() {
			log.Info("Run stopped by status flag", "status", w.Status)
			f.finish(w, log)
			return
		}

		if step.ExplainabilityOnly && !req.Explainability {
			if err := worklog.UpdateTaskStatus(w, step.TaskKey, worklog.StatusSkipped); err != nil {
				f.fail(w, log, err)
				return
			}
			continue
		}

		if err := worklog.UpdateTaskStatus(w, step.TaskKey, worklog.StatusInProgress); err != nil {
			f.fail(w, log, err)
			return
		}
		if err := step.Run(ctx, w); err != nil {
			if ctx.Err() != nil {
				// The step failed because the in-flight call was cancelled.
				f.markCancelled(w, log)
				return
			}
			// The step's task keeps whatever status it had; only the
			// overall status records the failure.
			f.fail(w, log, fmt.Errorf("step %s: %w", step.TaskKey, err))
			return
		}
		if err := worklog.UpdateTaskStatus(w, step.TaskKey, worklog.StatusCompleted); err != nil {
			f.fail(w, log, err)
			return
		}
	}

	if ctx.Err() != nil {
		f.markCancelled(w, log)
		return
	}

	if allTasksDone(w) {
		w.Status = worklog.StatusCompleted
	} else {
		// A successfully returning path with a task stuck mid-flight is a
		// workflow bug; refuse to report it as completed.
		log.Warn("Run finished with unfinished tasks, not marking completed")
	}
	f.finish(w, log)
}

// buildWorkflow constructs the step list for the request's kind.
func (f *Facade) buildWorkflow(req RunRequest) (*research.Workflow, error) {
	switch req.Kind {
	case worklog.KindResearchBasic, worklog.KindResearchComprehensive:
		flow := &research.ResearchFlow{Query: req.Query, Model: f.model, Search: f.searchTool}
		return flow.Build(req.Kind)
	case worklog.KindDataQuery:
		flow := &research.DataQueryFlow{Query: req.Query, Model: f.model, QueryTool: f.queryTool}
		return flow.Build(req.Kind)
	default:
		return nil, fmt.Errorf("%w: %q", worklog.ErrUnknownWorkflowKind, req.Kind)
	}
}

func (f *Facade) fail(w *worklog.WorkLog, log *slog.Logger, err error) {
	w.Error = err.Error()
	w.Status = worklog.StatusFailed
	log.Error("Run failed", "error", err)
	f.finish(w, log)
}

func (f *Facade) markCancelled(w *worklog.WorkLog, log *slog.Logger) {
	if !w.Status.IsTerminal() {
		w.Status = worklog.StatusCancelled
	}
	log.Info("Run cancelled")
	f.finish(w, log)
}

// finish records terminal metrics, refreshes the reuse window, and hands the
// run to the archiver.
func (f *Facade) finish(w *worklog.WorkLog, log *slog.Logger) {
	if w.Status.IsTerminal() {
		metrics.Default().RunFinished(string(w.Status))
	}
	f.refreshExpiry(w)

	if f.archiver != nil && w.Status.IsTerminal() {
		// Archive on a background context: the run context may already be
		// cancelled.
		archiveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := f.archiver.ArchiveRun(archiveCtx, w); err != nil {
			log.Warn("Run archiving failed", "error", err)
		}
	}
	log.Info("Run finished", "status", w.Status)
}

// refreshExpiry extends the work log's residency window so a just-used
// conversation stays available for reuse.
func (f *Facade) refreshExpiry(w *worklog.WorkLog) {
	if f.ttl > 0 {
		expires := time.Now().Add(f.ttl)
		w.ExpiresAt = &expires
	}
}

// fallbackWorkLog builds the minimal failed work log returned when the real
// one could never be created.
func (f *Facade) fallbackWorkLog(req RunRequest, cause error) *worklog.WorkLog {
	return &worklog.WorkLog{
		ID:        req.ExecutionID,
		Kind:      req.Kind,
		Status:    worklog.StatusFailed,
		CreatedAt: time.Now(),
		Error:     cause.Error(),
	}
}

// Status returns a snapshot of the work log for id.
func (f *Facade) Status(id string) (worklog.Snapshot, error) {
	w := f.registry.Get(id)
	if w == nil {
		return worklog.Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return w.Snapshot(), nil
}

// Result returns the completed run's payload. Calling before completion is a
// caller error answered with ErrNotReady, not partial data.
func (f *Facade) Result(id string) (worklog.Snapshot, error) {
	w := f.registry.Get(id)
	if w == nil {
		return worklog.Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if w.Status != worklog.StatusCompleted {
		return worklog.Snapshot{}, fmt.Errorf("%w: status is %s", ErrNotReady, w.Status)
	}
	return w.Snapshot(), nil
}

// Cancel requests best-effort cooperative cancellation: the executor's token
// is cancelled and the work log's status flag is set, so the run stops at
// its next checkpoint. Returns whether a tracked task existed.
func (f *Facade) Cancel(id string) bool {
	tracked := f.executor.Cancel(id)
	if w := f.registry.Get(id); w != nil && !w.Status.IsTerminal() {
		w.Status = worklog.StatusCancelled
	}
	return tracked
}

// ActiveRuns returns the execution ids currently executing.
func (f *Facade) ActiveRuns() []string {
	return f.executor.ActiveIDs()
}

// allTasksDone reports whether every top-level task reached completed or was
// deliberately skipped.
func allTasksDone(w *worklog.WorkLog) bool {
	for _, t := range w.Tasks {
		if t.Status != worklog.StatusCompleted && t.Status != worklog.StatusSkipped {
			return false
		}
	}
	return true
}

// runScratch holds per-run state detached from the work log.
type runScratch struct {
	workflow *research.Workflow
}

func newRunScratch() *runScratch { return &runScratch{} }

func (s *runScratch) clear() { s.workflow = nil }
