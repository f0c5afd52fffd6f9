package research

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulata/researchd/pkg/agent"
	"github.com/regulata/researchd/pkg/worklog"
)

type scriptedModel struct {
	replies []string
	calls   int
	err     error
}

func (m *scriptedModel) Complete(ctx context.Context, messages []agent.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	reply := fmt.Sprintf("reply %d", m.calls)
	if m.calls < len(m.replies) {
		reply = m.replies[m.calls]
	}
	m.calls++
	return reply, nil
}

type scriptedTool struct {
	name  string
	value agent.ToolValue
	calls int
}

func (t *scriptedTool) Name() string { return t.name }

func (t *scriptedTool) Invoke(ctx context.Context, args map[string]any) (agent.ToolValue, error) {
	t.calls++
	return t.value, nil
}

func runWorkflow(t *testing.T, wf *Workflow, w *worklog.WorkLog) {
	t.Helper()
	for _, step := range wf.Steps {
		require.NoError(t, step.Run(context.Background(), w), "step %s", step.TaskKey)
	}
}

func TestResearchFlowStepsMatchTaskList(t *testing.T) {
	flow := &ResearchFlow{Query: "q", Model: &scriptedModel{}}

	wf, err := flow.Build(worklog.KindResearchBasic)
	require.NoError(t, err)
	require.Len(t, wf.Steps, 3)
	assert.Equal(t, "initial_research", wf.Steps[0].TaskKey)
	assert.Equal(t, "research_iteration_1", wf.Steps[1].TaskKey)
	assert.Equal(t, "generate_research_report", wf.Steps[2].TaskKey)

	wf, err = flow.Build(worklog.KindResearchComprehensive)
	require.NoError(t, err)
	assert.Len(t, wf.Steps, 7)

	_, err = flow.Build(worklog.KindDataQuery)
	assert.ErrorIs(t, err, worklog.ErrUnknownWorkflowKind)
}

func TestResearchFlowPopulatesStoreAndResult(t *testing.T) {
	w, err := worklog.New("exec-1", worklog.KindResearchBasic, 0)
	require.NoError(t, err)

	model := &scriptedModel{replies: []string{"survey", "deeper", "final report"}}
	search := &scriptedTool{name: "web_search", value: agent.TextValue("hits")}
	flow := &ResearchFlow{Query: "is supplier X compliant?", Model: model, Search: search}

	wf, err := flow.Build(worklog.KindResearchBasic)
	require.NoError(t, err)
	runWorkflow(t, wf, w)

	assert.Equal(t, "final report", w.FinalAnswer)
	assert.Equal(t, 3, model.calls)
	assert.Equal(t, 2, search.calls) // initial + one iteration

	findings, err := w.DataStore.RetrieveAllFromRepo(worklog.RepoFindings)
	require.NoError(t, err)
	assert.Len(t, findings, 2)

	sections, err := w.DataStore.RetrieveAllFromRepo(worklog.RepoReportSections)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"data": "final report"}, sections["report"])

	// Tool log carries one entry per search invocation.
	assert.Len(t, w.ToolLogs, 2)

	// Conversation memory records the turn's query.
	memory, err := w.DataStore.RetrieveAllFromRepo(worklog.RepoConversation)
	require.NoError(t, err)
	assert.Contains(t, memory, "turn_0_query")
}

func TestResearchFlowModelOnly(t *testing.T) {
	w, err := worklog.New("exec-1", worklog.KindResearchBasic, 0)
	require.NoError(t, err)

	flow := &ResearchFlow{Query: "q", Model: &scriptedModel{}}
	wf, err := flow.Build(worklog.KindResearchBasic)
	require.NoError(t, err)
	runWorkflow(t, wf, w)

	assert.Empty(t, w.ToolLogs)
	assert.NotEmpty(t, w.FinalAnswer)
}

func TestResearchFlowPropagatesModelError(t *testing.T) {
	w, err := worklog.New("exec-1", worklog.KindResearchBasic, 0)
	require.NoError(t, err)

	flow := &ResearchFlow{Query: "q", Model: &scriptedModel{err: errors.New("boom")}}
	wf, err := flow.Build(worklog.KindResearchBasic)
	require.NoError(t, err)

	err = wf.Steps[0].Run(context.Background(), w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial research")
}

func TestDataQueryFlowSteps(t *testing.T) {
	flow := &DataQueryFlow{Query: "q", Model: &scriptedModel{}}

	wf, err := flow.Build(worklog.KindDataQuery)
	require.NoError(t, err)
	require.Len(t, wf.Steps, 4)
	assert.Equal(t, "setup", wf.Steps[0].TaskKey)
	assert.True(t, wf.Steps[3].ExplainabilityOnly)

	_, err = flow.Build(worklog.KindResearchBasic)
	assert.ErrorIs(t, err, worklog.ErrUnknownWorkflowKind)
}

func TestDataQueryFlowWithTool(t *testing.T) {
	w, err := worklog.New("exec-1", worklog.KindDataQuery, 0)
	require.NoError(t, err)

	tool := &scriptedTool{
		name:  "dataset_query",
		value: agent.TableValue(agent.TableHandle{Name: "suppliers", Rows: 12}),
	}
	flow := &DataQueryFlow{Query: "how many suppliers?", Model: &scriptedModel{replies: []string{"12 suppliers", "explained"}}, QueryTool: tool}

	wf, err := flow.Build(worklog.KindDataQuery)
	require.NoError(t, err)
	runWorkflow(t, wf, w)

	assert.Equal(t, "12 suppliers", w.FinalAnswer)
	assert.Equal(t, 2, tool.calls) // profile + query

	profile, err := w.DataStore.RepoLength(worklog.RepoDatasetProfile)
	require.NoError(t, err)
	assert.Equal(t, 1, profile)

	explanations, err := w.DataStore.RetrieveAllFromRepo(worklog.RepoExplanations)
	require.NoError(t, err)
	assert.Contains(t, explanations, "turn_0")
}

func TestDataQuerySetupSkipsExistingProfile(t *testing.T) {
	w, err := worklog.New("exec-1", worklog.KindDataQuery, 0)
	require.NoError(t, err)
	require.NoError(t, w.DataStore.StoreToRepo(worklog.RepoDatasetProfile, "profile", "cached"))

	tool := &scriptedTool{name: "dataset_query", value: agent.TextValue("x")}
	flow := &DataQueryFlow{Query: "q", Model: &scriptedModel{}, QueryTool: tool}
	wf, err := flow.Build(worklog.KindDataQuery)
	require.NoError(t, err)

	require.NoError(t, wf.Steps[0].Run(context.Background(), w))
	assert.Equal(t, 0, tool.calls, "profile survives across turns")
}
