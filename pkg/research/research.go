package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/regulata/researchd/pkg/agent"
	"github.com/regulata/researchd/pkg/worklog"
)

const researchSystemPrompt = "You are a research assistant answering questions " +
	"about regulatory and supplier datasets. Be precise and cite the material " +
	"you were given."

// ResearchFlow builds the research workflows: an initial survey, a number of
// refinement iterations set by the workflow kind, and report generation.
// search is optional; when nil the flow is model-only.
type ResearchFlow struct {
	Query  string
	Model  agent.Model
	Search agent.Tool
}

// Build returns the workflow for kind, which must be a research kind.
func (f *ResearchFlow) Build(kind worklog.WorkflowKind) (*Workflow, error) {
	var iterations int
	switch kind {
	case worklog.KindResearchBasic:
		iterations = 1
	case worklog.KindResearchComprehensive:
		iterations = 5
	default:
		return nil, fmt.Errorf("%w: %q is not a research kind", worklog.ErrUnknownWorkflowKind, kind)
	}

	steps := []Step{{TaskKey: "initial_research", Run: f.initialResearch}}
	for i := 1; i <= iterations; i++ {
		steps = append(steps, Step{
			TaskKey: fmt.Sprintf("research_iteration_%d", i),
			Run:     f.iteration(i),
		})
	}
	steps = append(steps, Step{TaskKey: "generate_research_report", Run: f.generateReport})

	return &Workflow{Kind: kind, Steps: steps}, nil
}

func (f *ResearchFlow) initialResearch(ctx context.Context, w *worklog.WorkLog) error {
	if f.Search != nil {
		value, err := agent.CallTool(ctx, w, f.Search, map[string]any{"query": f.Query})
		if err != nil {
			return fmt.Errorf("initial search: %w", err)
		}
		if err := w.DataStore.StoreToRepo(worklog.RepoSources, "initial", value.StoreForm()); err != nil {
			return err
		}
	}

	reply, err := f.Model.Complete(ctx, []agent.Message{
		{Role: agent.RoleSystem, Content: researchSystemPrompt},
		{Role: agent.RoleUser, Content: "Survey this question and list the angles worth researching: " + f.Query},
	})
	if err != nil {
		return fmt.Errorf("initial research: %w", err)
	}

	if err := w.DataStore.StoreToRepo(worklog.RepoFindings, "initial", reply); err != nil {
		return err
	}
	return w.DataStore.StoreToRepo(worklog.RepoConversation,
		fmt.Sprintf("turn_%d_query", w.Turn), f.Query)
}

func (f *ResearchFlow) iteration(n int) func(ctx context.Context, w *worklog.WorkLog) error {
	return func(ctx context.Context, w *worklog.WorkLog) error {
		findings, err := w.DataStore.RetrieveAllFromRepo(worklog.RepoFindings)
		if err != nil {
			return err
		}

		if f.Search != nil {
			value, err := agent.CallTool(ctx, w, f.Search, map[string]any{
				"query":     f.Query,
				"iteration": n,
			})
			if err != nil {
				return fmt.Errorf("iteration %d search: %w", n, err)
			}
			key := fmt.Sprintf("iteration_%d", n)
			if err := w.DataStore.StoreToRepo(worklog.RepoSources, key, value.StoreForm()); err != nil {
				return err
			}
		}

		reply, err := f.Model.Complete(ctx, []agent.Message{
			{Role: agent.RoleSystem, Content: researchSystemPrompt},
			{Role: agent.RoleUser, Content: fmt.Sprintf(
				"Question: %s\n\nFindings so far: %s\n\nDeepen the research: what is still missing, and what do the findings imply?",
				f.Query, summarizeRepo(findings))},
		})
		if err != nil {
			return fmt.Errorf("research iteration %d: %w", n, err)
		}

		return w.DataStore.StoreToRepo(worklog.RepoFindings, fmt.Sprintf("iteration_%d", n), reply)
	}
}

func (f *ResearchFlow) generateReport(ctx context.Context, w *worklog.WorkLog) error {
	findings, err := w.DataStore.RetrieveAllFromRepo(worklog.RepoFindings)
	if err != nil {
		return err
	}

	report, err := f.Model.Complete(ctx, []agent.Message{
		{Role: agent.RoleSystem, Content: researchSystemPrompt},
		{Role: agent.RoleUser, Content: fmt.Sprintf(
			"Question: %s\n\nResearch findings: %s\n\nWrite the final research report.",
			f.Query, summarizeRepo(findings))},
	})
	if err != nil {
		return fmt.Errorf("report generation: %w", err)
	}

	if err := w.DataStore.StoreToRepo(worklog.RepoReportSections, "report", report); err != nil {
		return err
	}
	w.FinalAnswer = report
	return nil
}

// summarizeRepo flattens a repo snapshot into prompt material.
func summarizeRepo(entries map[string]any) string {
	if len(entries) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for key, value := range entries {
		fmt.Fprintf(&b, "- %s: %v\n", key, value)
	}
	return b.String()
}
