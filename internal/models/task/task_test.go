package task_test

import (
	"taskBoard/internal/models/task"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsValid(t *testing.T) {
	for _, s := range task.Statuses() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, task.Status("in progress").IsValid())
	assert.False(t, task.Status("").IsValid())
}

func TestTask_CloneDoesNotShareSlices(t *testing.T) {
	original := task.Task{
		ID:         1,
		AssignedTo: []task.Assignee{{Name: "Anton Mayer", Color: "#FF7A00"}},
		Subtasks:   []task.Subtask{{Title: "Icons"}},
	}

	clone := original.Clone()
	clone.AssignedTo[0].Name = "Changed"
	clone.Subtasks[0].Done = true

	assert.Equal(t, "Anton Mayer", original.AssignedTo[0].Name)
	assert.False(t, original.Subtasks[0].Done)
}

func TestTask_Unassign(t *testing.T) {
	tk := task.Task{AssignedTo: []task.Assignee{
		{Name: "Anton Mayer"}, {Name: "Anja Schulz"}, {Name: "Anton Mayer"},
	}}

	removed := tk.Unassign("Anton Mayer")

	assert.Equal(t, 2, removed)
	assert.False(t, tk.IsAssigned("Anton Mayer"))
	assert.True(t, tk.IsAssigned("Anja Schulz"))
	assert.Equal(t, 0, tk.Unassign("Nobody"))
}

func TestTask_Apply(t *testing.T) {
	tk := task.Task{Title: "Old", Priority: task.PriorityLow, Status: task.StatusDone}

	tk.Apply(
		task.WithTitle("New"),
		task.WithPriority(""),
		task.WithSubtasks([]task.Subtask{{Title: "a", Done: true}, {Title: "b"}}),
	)

	assert.Equal(t, "New", tk.Title)
	assert.Equal(t, task.PriorityLow, tk.Priority)
	assert.Equal(t, task.StatusDone, tk.Status)
	assert.Equal(t, 1, tk.CompletedSubtasks())
}
