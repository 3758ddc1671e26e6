package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// UpsertByExternalID saves the user keyed by their external identity.
	// If a user with the same external ID already exists, its profile
	// fields (display name, email, avatar) are refreshed and the existing
	// row is returned; otherwise a new row is inserted. The operation is
	// idempotent: repeated resolutions of the same identity yield the same
	// user ID. Returns validation errors from the domain User if data is
	// invalid.
	UpsertByExternalID(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically a service.
	WithTx(tx *sql.Tx) UserStore
}
