package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
)

// CommentStore defines the interface for comment data persistence.
// Comments are append-only: there is no update operation, and deletion
// happens only as part of task or group cascades.
type CommentStore interface {
	// Create saves a new comment to the store.
	// Returns ErrInvalidEntity if the task or author row does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByTask returns the task's comments in creation order, each
	// joined with the author's display projection.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.CommentDetail, error)

	// DeleteByTask removes every comment on the task.
	DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error)

	// DeleteByGroup removes every comment on the group's tasks.
	// Used by group cascade deletion inside a transaction.
	DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error)

	// DeleteByGroupAssignee removes comments on the group's tasks that are
	// assigned to the given user. Runs before DeleteByGroupAssignee on the
	// task store during member removal.
	DeleteByGroupAssignee(ctx context.Context, groupID, assigneeID uuid.UUID) (int64, error)

	// WithTx returns a new CommentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CommentStore
}
