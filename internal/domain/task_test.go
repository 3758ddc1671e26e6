package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTask(t *testing.T) *Task {
	t.Helper()
	task, err := NewTask(
		uuid.New(), "Write minutes", "summarize the meeting", nil,
		PriorityMiddle, StatusNotStarted, uuid.New())
	require.NoError(t, err)
	return task
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("valid task", func(t *testing.T) {
		t.Parallel()
		deadline := time.Now().Add(24 * time.Hour)
		task, err := NewTask(
			uuid.New(), "Title", "Description", &deadline,
			PriorityHigh, StatusInProgress, uuid.New())
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.False(t, task.CreatedAt.IsZero())
	})

	t.Run("deadline is optional", func(t *testing.T) {
		t.Parallel()
		task := validTask(t)
		assert.Nil(t, task.Deadline)
	})

	cases := []struct {
		name     string
		mutate   func(*Task)
		sentinel error
	}{
		{"empty title", func(task *Task) { task.Title = "" }, ErrValidation},
		{"title too long", func(task *Task) {
			task.Title = string(make([]byte, TaskTitleMaxLen+1))
		}, ErrValidation},
		{"empty description", func(task *Task) { task.Description = "" }, ErrEmptyContent},
		{"bad priority", func(task *Task) { task.Priority = "urgent" }, ErrInvalidPriority},
		{"bad status", func(task *Task) { task.Status = "paused" }, ErrInvalidStatus},
		{"nil group", func(task *Task) { task.GroupID = uuid.Nil }, ErrInvalidID},
		{"nil assignee", func(task *Task) { task.AssigneeID = uuid.Nil }, ErrInvalidID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			task := validTask(t)
			tc.mutate(task)
			err := task.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestPriorityAndStatusValues(t *testing.T) {
	t.Parallel()

	assert.True(t, PriorityHigh.IsValid())
	assert.True(t, PriorityMiddle.IsValid())
	assert.True(t, PriorityLow.IsValid())
	assert.False(t, Priority("critical").IsValid())
	assert.False(t, Priority("").IsValid())

	assert.True(t, StatusNotStarted.IsValid())
	assert.True(t, StatusInProgress.IsValid())
	assert.True(t, StatusDone.IsValid())
	assert.False(t, Status("blocked").IsValid())
	assert.False(t, Status("").IsValid())

	// Wire values are load-bearing: clients filter on them.
	assert.Equal(t, "not-started-yet", string(StatusNotStarted))
	assert.Equal(t, "in-progress", string(StatusInProgress))
	assert.Equal(t, "done", string(StatusDone))
	assert.Equal(t, "high", string(PriorityHigh))
	assert.Equal(t, "middle", string(PriorityMiddle))
	assert.Equal(t, "low", string(PriorityLow))
}

func TestTaskPatch(t *testing.T) {
	t.Parallel()

	t.Run("IsEmpty", func(t *testing.T) {
		t.Parallel()
		assert.True(t, (&TaskPatch{}).IsEmpty())
		title := "x"
		assert.False(t, (&TaskPatch{Title: &title}).IsEmpty())
	})

	t.Run("nil fields leave the task untouched", func(t *testing.T) {
		t.Parallel()
		task := validTask(t)
		original := *task

		status := StatusDone
		patch := TaskPatch{Status: &status}
		require.NoError(t, patch.Apply(task))

		assert.Equal(t, StatusDone, task.Status)
		assert.Equal(t, original.Title, task.Title)
		assert.Equal(t, original.Description, task.Description)
		assert.Equal(t, original.Priority, task.Priority)
		assert.Equal(t, original.AssigneeID, task.AssigneeID)
	})

	t.Run("every field can be patched", func(t *testing.T) {
		t.Parallel()
		task := validTask(t)
		title := "New title"
		description := "New description"
		deadline := time.Now().Add(time.Hour)
		priority := PriorityLow
		status := StatusInProgress
		assignee := uuid.New()

		patch := TaskPatch{
			Title:       &title,
			Description: &description,
			Deadline:    &deadline,
			Priority:    &priority,
			Status:      &status,
			AssigneeID:  &assignee,
		}
		require.NoError(t, patch.Apply(task))
		assert.Equal(t, title, task.Title)
		assert.Equal(t, description, task.Description)
		assert.Equal(t, &deadline, task.Deadline)
		assert.Equal(t, priority, task.Priority)
		assert.Equal(t, status, task.Status)
		assert.Equal(t, assignee, task.AssigneeID)
	})

	t.Run("apply revalidates", func(t *testing.T) {
		t.Parallel()
		task := validTask(t)
		empty := ""
		err := (&TaskPatch{Title: &empty}).Apply(task)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
