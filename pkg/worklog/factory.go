package worklog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/regulata/researchd/pkg/datastore"
)

// WorkflowKind selects the canonical task list and data-store layout a new
// work log is created with.
type WorkflowKind string

// Workflow kinds.
const (
	KindResearchBasic         WorkflowKind = "research_basic"
	KindResearchComprehensive WorkflowKind = "research_comprehensive"
	KindDataQuery             WorkflowKind = "data_query"
)

// Valid reports whether k is a known workflow kind.
func (k WorkflowKind) Valid() bool {
	switch k {
	case KindResearchBasic, KindResearchComprehensive, KindDataQuery:
		return true
	}
	return false
}

// iterationDepth returns the number of research iterations a research kind
// performs.
func (k WorkflowKind) iterationDepth() int {
	if k == KindResearchComprehensive {
		return 5
	}
	return 1
}

// Repository keys used by the workflow kinds.
const (
	RepoFindings       = "research_findings"
	RepoReportSections = "report_sections"
	RepoSources        = "sources"
	RepoConversation   = "conversation_memory"

	RepoQueryScratch   = "query_scratch"
	RepoQueryResults   = "query_results"
	RepoDatasetProfile = "dataset_profile"
	RepoExplanations   = "explanations"
)

// resetRepos lists, per workflow kind, the repositories cleared on a
// conversational reset. Repositories not listed survive a reset on purpose:
// they hold cross-turn context (conversation memory, dataset profiles).
var resetRepos = map[WorkflowKind][]string{
	KindResearchBasic:         {RepoFindings, RepoReportSections, RepoSources},
	KindResearchComprehensive: {RepoFindings, RepoReportSections, RepoSources},
	KindDataQuery:             {RepoQueryScratch, RepoQueryResults, RepoExplanations},
}

// New builds the canonical work log for a workflow kind: the expected task
// list, a data store with the kind's repositories defined, and an expiry ttl
// (ttl <= 0 means no expiry). It is a pure constructor with no side effects
// beyond object construction.
func New(id string, kind WorkflowKind, ttl time.Duration) (*WorkLog, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflowKind, kind)
	}

	now := time.Now()
	w := &WorkLog{
		ID:        id,
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: now,
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		w.ExpiresAt = &expires
	}

	switch kind {
	case KindResearchBasic, KindResearchComprehensive:
		w.Tasks = researchTasks(kind.iterationDepth())
		// Research tools exchange bare strings; the wrapping variant keeps
		// every stored entry record-shaped.
		w.DataStore = datastore.New(datastore.WithStringWrapping())
		for _, repo := range []string{RepoFindings, RepoReportSections, RepoSources, RepoConversation} {
			w.DataStore.DefineRepo(repo)
		}
	case KindDataQuery:
		w.Tasks = dataQueryTasks()
		w.DataStore = datastore.New()
		for _, repo := range []string{RepoQueryScratch, RepoQueryResults, RepoDatasetProfile, RepoExplanations} {
			w.DataStore.DefineRepo(repo)
		}
	}

	return w, nil
}

func researchTasks(iterations int) []*FlowTask {
	tasks := []*FlowTask{
		NewFlowTask("initial_research", "Survey the question and gather initial material"),
	}
	for i := 1; i <= iterations; i++ {
		tasks = append(tasks, NewFlowTask(
			fmt.Sprintf("research_iteration_%d", i),
			fmt.Sprintf("Research iteration %d", i),
		))
	}
	tasks = append(tasks, NewFlowTask("generate_research_report", "Compose the research report"))
	return tasks
}

func dataQueryTasks() []*FlowTask {
	return []*FlowTask{
		NewFlowTask("setup", "Load and profile the dataset"),
		NewFlowTask("answer_query", "Run the query against the dataset"),
		NewFlowTask("generate_final_answer", "Phrase the final answer"),
		NewFlowTask("generate_explainability", "Explain how the answer was produced"),
	}
}

// Reset rewinds a work log for a fresh conversational turn under the same
// execution id: overall status back to pending, every task back to pending
// with timestamps cleared, and the kind's reset repositories emptied. Repos
// outside the reset list keep their cross-turn contents. All mutations happen
// synchronously in memory, so a concurrent status reader never observes a
// half-reset task list spread across deferred steps.
func Reset(w *WorkLog) {
	w.Status = StatusPending
	for _, t := range w.Tasks {
		t.reset()
	}
	for _, repo := range resetRepos[w.Kind] {
		if err := w.DataStore.ClearRepo(repo); err != nil {
			// Reset lists only repos the factory defined; reaching this
			// means the store was replaced out from under the work log.
			slog.Error("Reset could not clear repository",
				"work_log_id", w.ID, "repo", repo, "error", err)
		}
	}
	w.ReportPath = ""
	w.FinalAnswer = ""
	w.Error = ""
	w.Turn++
	slog.Info("Work log reset for conversational reuse", "work_log_id", w.ID, "turn", w.Turn)
}
