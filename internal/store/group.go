package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
)

// GroupStore defines the interface for group data persistence.
type GroupStore interface {
	// Create saves a new group to the store.
	Create(ctx context.Context, group *domain.Group) error

	// GetByID retrieves a group by its unique ID.
	// Returns ErrGroupNotFound if the group does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)

	// ListByUser returns the groups the user holds a membership in,
	// ordered by creation time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Group, error)

	// Delete removes the group row itself. It does not touch dependent
	// rows; the service layer deletes comments, tasks and memberships
	// first, inside the same transaction. Returns ErrGroupNotFound if the
	// group does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new GroupStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) GroupStore
}
