package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
)

// MembershipStore defines the interface for membership data persistence.
//
// Uniqueness of (user, group) is enforced by a database constraint, not by
// read-then-write: under a concurrent Create for the same pair, exactly one
// caller wins and the other receives ErrMembershipExists.
type MembershipStore interface {
	// Create saves a new membership.
	// Returns ErrMembershipExists if the (user, group) pair already has one.
	// Returns ErrInvalidEntity if the user or group row does not exist.
	Create(ctx context.Context, membership *domain.Membership) error

	// GetByUserAndGroup retrieves the membership joining the user to the group.
	// Returns ErrMembershipNotFound if none exists.
	GetByUserAndGroup(ctx context.Context, userID, groupID uuid.UUID) (*domain.Membership, error)

	// ListByGroup returns the group's members ordered by membership ID,
	// each joined with the user's display projection.
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Member, error)

	// Delete removes a membership by its ID.
	// Returns ErrMembershipNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByGroup removes every membership of the group and reports how
	// many rows went. Used by group cascade deletion inside a transaction.
	DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error)

	// WithTx returns a new MembershipStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) MembershipStore
}
