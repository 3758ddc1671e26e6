package store

import (
	"context"
	"database/sql"
	"time"
)

// LoginState is the short-lived pending-login context created when the
// identity exchange begins. It binds the OAuth state parameter to an
// optional invitation token so redemption can complete once the external
// identity resolves.
type LoginState struct {
	State       string
	InviteToken string // empty unless the login began from an invitation link
	ReturnURL   string
	ExpiresAt   time.Time
}

// LoginStateStore persists pending-login contexts. Rows are single-use and
// expire quickly; Consume removes the row it returns.
type LoginStateStore interface {
	// Save persists a pending-login context.
	Save(ctx context.Context, state *LoginState) error

	// Consume atomically retrieves and deletes the context for the given
	// state value. Returns ErrStateNotFound if the state is unknown,
	// already consumed, or expired.
	Consume(ctx context.Context, state string) (*LoginState, error)

	// DeleteExpired removes contexts past their expiry and reports how
	// many rows went.
	DeleteExpired(ctx context.Context) (int64, error)

	// WithTx returns a new LoginStateStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) LoginStateStore
}
