package store

import (
	"context"
	"database/sql"

	"github.com/taskraft/taskraft-api/internal/domain"
)

// InvitationStore defines the interface for invitation data persistence.
//
// Invitations are append-and-flip: rows are inserted pending, transitioned
// to accepted at most once, and never deleted.
type InvitationStore interface {
	// Create saves a new pending invitation.
	// Returns validation errors from the domain Invitation if data is invalid.
	Create(ctx context.Context, invitation *domain.Invitation) error

	// GetByToken retrieves an invitation by its token.
	// Returns ErrInvitationNotFound if no invitation carries the token.
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)

	// Accept flips the invitation to accepted, but only if it is still
	// pending. It reports whether this call performed the transition:
	// false means another redeemer got there first (or the token is
	// unknown), which callers that already observed the invitation as
	// pending treat as a lost race, not an error.
	Accept(ctx context.Context, token string) (bool, error)

	// WithTx returns a new InvitationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) InvitationStore
}
