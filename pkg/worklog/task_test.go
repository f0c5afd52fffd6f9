package worklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByKeySearchesSubtasks(t *testing.T) {
	root := NewFlowTask("root", "root task")
	child := NewFlowTask("child", "child task")
	grandchild := NewFlowTask("grandchild", "nested task")
	child.Subtasks = append(child.Subtasks, grandchild)
	root.Subtasks = append(root.Subtasks, child)

	matches := root.FindByKey("grandchild")
	require.Len(t, matches, 1)
	assert.Same(t, grandchild, matches[0])

	assert.Empty(t, root.FindByKey("nope"))
}

func TestFindByKeyReturnsAllMatches(t *testing.T) {
	// Duplicate keys across branches are tolerated by lookup; every match
	// is returned in depth-first order.
	left := NewFlowTask("branch", "left branch")
	left.Subtasks = append(left.Subtasks, NewFlowTask("step", "left step"))
	right := NewFlowTask("other", "right branch")
	right.Subtasks = append(right.Subtasks, NewFlowTask("step", "right step"))

	matches := FindTasks([]*FlowTask{left, right}, "step")
	require.Len(t, matches, 2)
	assert.Equal(t, "left step", matches[0].Description)
	assert.Equal(t, "right step", matches[1].Description)
}

func TestFindOne(t *testing.T) {
	tasks := []*FlowTask{
		NewFlowTask("setup", "setup"),
		NewFlowTask("answer_query", "answer"),
	}

	task, err := FindOne(tasks, "setup")
	require.NoError(t, err)
	assert.Equal(t, "setup", task.Key)

	_, err = FindOne(tasks, "missing")
	assert.ErrorIs(t, err, ErrTaskKeyNotFound)

	tasks = append(tasks, NewFlowTask("setup", "duplicate"))
	_, err = FindOne(tasks, "setup")
	assert.ErrorIs(t, err, ErrTaskKeyAmbiguous)
}
