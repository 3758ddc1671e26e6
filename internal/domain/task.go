package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task field limits.
const (
	TaskTitleMaxLen = 100
)

// Priority is the urgency bucket of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMiddle Priority = "middle"
	PriorityLow    Priority = "low"
)

// IsValid reports whether the priority is one of the known values.
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMiddle || p == PriorityLow
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusNotStarted Status = "not-started-yet"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusDone
}

// Task is a unit of work inside a group. The assignee must hold a
// membership in the same group; the reference is a plain foreign key with
// an index on assignee, never a live back-reference collection on the user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	GroupID     uuid.UUID  `json:"group_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	AssigneeID  uuid.UUID  `json:"assignee_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTask creates a new Task in the given group.
func NewTask(
	groupID uuid.UUID,
	title, description string,
	deadline *time.Time,
	priority Priority,
	status Status,
	assigneeID uuid.UUID,
) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		GroupID:     groupID,
		Title:       title,
		Description: description,
		Deadline:    deadline,
		Priority:    priority,
		Status:      status,
		AssigneeID:  assigneeID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.GroupID == uuid.Nil {
		return NewValidationError("group_id", "cannot be empty", ErrInvalidID)
	}
	if len(t.Title) < 1 || len(t.Title) > TaskTitleMaxLen {
		return NewValidationError("title", "must be between 1 and 100 characters", nil)
	}
	if t.Description == "" {
		return NewValidationError("description", "cannot be empty", ErrEmptyContent)
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "must be high, middle or low", ErrInvalidPriority)
	}
	if !t.Status.IsValid() {
		return NewValidationError(
			"status",
			"must be not-started-yet, in-progress or done",
			ErrInvalidStatus,
		)
	}
	if t.AssigneeID == uuid.Nil {
		return NewValidationError("assignee_id", "cannot be empty", ErrInvalidID)
	}
	return nil
}

// TaskPatch carries a partial update. Nil fields are no-ops: they leave the
// current value untouched rather than resetting it.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
}

// IsEmpty reports whether the patch carries no changes at all.
func (p *TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Deadline == nil &&
		p.Priority == nil && p.Status == nil && p.AssigneeID == nil
}

// Apply copies the present patch fields onto the task and revalidates.
func (p *TaskPatch) Apply(t *Task) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Deadline != nil {
		t.Deadline = p.Deadline
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
	return t.Validate()
}

// TaskFilter narrows a task listing. All supplied fields apply
// conjunctively; nil fields match everything.
type TaskFilter struct {
	Status     *Status
	Priority   *Priority
	AssigneeID *uuid.UUID
}

// TaskDetail is a task joined with the resolved assignee projection.
type TaskDetail struct {
	Task
	Assignee MemberProjection `json:"assignee"`
}

// TaskDraft is a task suggestion produced by the AI collaborator before it
// has been validated or persisted. Optional fields that the model omitted
// are filled with defaults at save time.
type TaskDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Status      Status     `json:"status"`
	AssigneeID  uuid.UUID  `json:"assignee_id,omitempty"`
}
