package research

import (
	"context"
	"fmt"

	"github.com/regulata/researchd/pkg/agent"
	"github.com/regulata/researchd/pkg/worklog"
)

const dataQuerySystemPrompt = "You answer questions about a tabular supplier " +
	"dataset. Work only from the query results you are given; say so when the " +
	"data cannot answer the question."

// DataQueryFlow builds the data-query workflow: profile the dataset, run the
// query, phrase the answer, and optionally explain how it was produced.
// QueryTool executes against the dataset backend; it may be nil for
// model-only operation (e.g. answering from a profile already in the store).
type DataQueryFlow struct {
	Query     string
	Model     agent.Model
	QueryTool agent.Tool
}

// Build returns the data-query workflow.
func (f *DataQueryFlow) Build(kind worklog.WorkflowKind) (*Workflow, error) {
	if kind != worklog.KindDataQuery {
		return nil, fmt.Errorf("%w: %q is not the data-query kind", worklog.ErrUnknownWorkflowKind, kind)
	}
	return &Workflow{
		Kind: kind,
		Steps: []Step{
			{TaskKey: "setup", Run: f.setup},
			{TaskKey: "answer_query", Run: f.answerQuery},
			{TaskKey: "generate_final_answer", Run: f.generateFinalAnswer},
			{TaskKey: "generate_explainability", ExplainabilityOnly: true, Run: f.generateExplainability},
		},
	}, nil
}

func (f *DataQueryFlow) setup(ctx context.Context, w *worklog.WorkLog) error {
	// The dataset profile survives conversational resets; build it once.
	n, err := w.DataStore.RepoLength(worklog.RepoDatasetProfile)
	if err != nil {
		return err
	}
	if n > 0 || f.QueryTool == nil {
		return nil
	}

	value, err := agent.CallTool(ctx, w, f.QueryTool, map[string]any{"action": "profile"})
	if err != nil {
		return fmt.Errorf("dataset profiling: %w", err)
	}
	return w.DataStore.StoreToRepo(worklog.RepoDatasetProfile, "profile", value.StoreForm())
}

func (f *DataQueryFlow) answerQuery(ctx context.Context, w *worklog.WorkLog) error {
	if f.QueryTool == nil {
		return w.DataStore.StoreToRepo(worklog.RepoQueryResults, "result", "no dataset backend attached")
	}

	value, err := agent.CallTool(ctx, w, f.QueryTool, map[string]any{
		"action": "query",
		"query":  f.Query,
	})
	if err != nil {
		return fmt.Errorf("dataset query: %w", err)
	}
	return w.DataStore.StoreToRepo(worklog.RepoQueryResults, "result", value.StoreForm())
}

func (f *DataQueryFlow) generateFinalAnswer(ctx context.Context, w *worklog.WorkLog) error {
	results, err := w.DataStore.RetrieveAllFromRepo(worklog.RepoQueryResults)
	if err != nil {
		return err
	}

	answer, err := f.Model.Complete(ctx, []agent.Message{
		{Role: agent.RoleSystem, Content: dataQuerySystemPrompt},
		{Role: agent.RoleUser, Content: fmt.Sprintf(
			"Question: %s\n\nQuery results: %s\n\nPhrase the final answer.",
			f.Query, summarizeRepo(results))},
	})
	if err != nil {
		return fmt.Errorf("final answer: %w", err)
	}
	w.FinalAnswer = answer
	return nil
}

func (f *DataQueryFlow) generateExplainability(ctx context.Context, w *worklog.WorkLog) error {
	explanation, err := f.Model.Complete(ctx, []agent.Message{
		{Role: agent.RoleSystem, Content: dataQuerySystemPrompt},
		{Role: agent.RoleUser, Content: fmt.Sprintf(
			"Question: %s\n\nTool calls made: %s\n\nExplain, step by step, how the answer was produced.",
			f.Query, describeToolLogs(w.ToolLogs))},
	})
	if err != nil {
		return fmt.Errorf("explainability: %w", err)
	}
	return w.DataStore.StoreToRepo(worklog.RepoExplanations,
		fmt.Sprintf("turn_%d", w.Turn), explanation)
}

func describeToolLogs(logs []*worklog.ToolLogEntry) string {
	if len(logs) == 0 {
		return "(none)"
	}
	out := ""
	for _, entry := range logs {
		out += fmt.Sprintf("- %s at %s with %v\n",
			entry.Tool, entry.Timestamp.Format("15:04:05"), entry.Params)
	}
	return out
}
