package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the group or assignee row does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// CreateMultiple saves multiple tasks. Callers must run it inside a
	// transaction (WithTx) so a failing draft leaves nothing behind.
	CreateMultiple(ctx context.Context, tasks []*domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetDetail retrieves a task joined with its assignee projection.
	// Returns ErrTaskNotFound if the task does not exist.
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.TaskDetail, error)

	// List returns the group's tasks matching the filter conjunctively,
	// ordered by task ID, each joined with its assignee projection.
	List(ctx context.Context, groupID uuid.UUID, filter domain.TaskFilter) ([]*domain.TaskDetail, error)

	// Update replaces every mutable field of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its ID. Comments on the task must be
	// deleted first, inside the same transaction.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByGroup removes every task of the group and reports how many
	// rows went. Used by group cascade deletion inside a transaction.
	DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error)

	// DeleteByGroupAssignee removes the group's tasks assigned to the
	// given user. Used when a member is removed from a group: their
	// assigned tasks in that group are cleaned up, tasks in other groups
	// are untouched.
	DeleteByGroupAssignee(ctx context.Context, groupID, assigneeID uuid.UUID) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
