package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/taskraft/taskraft-api/internal/platform/logger"
	"github.com/taskraft/taskraft-api/internal/store"
)

// PostgresLoginStateStore implements the store.LoginStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLoginStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLoginStateStore creates a new PostgreSQL implementation of the
// LoginStateStore interface.
func NewPostgresLoginStateStore(db store.DBTX, log *slog.Logger) *PostgresLoginStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresLoginStateStore{
		db:     db,
		logger: log.With(slog.String("component", "login_state_store")),
	}
}

// Ensure PostgresLoginStateStore implements store.LoginStateStore interface
var _ store.LoginStateStore = (*PostgresLoginStateStore)(nil)

// Save implements store.LoginStateStore.Save.
func (s *PostgresLoginStateStore) Save(ctx context.Context, state *store.LoginState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO login_states (state, invite_token, return_url, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.State,
		state.InviteToken,
		state.ReturnURL,
		state.ExpiresAt,
	)
	if err != nil {
		log.Error("failed to save login state",
			slog.String("error", err.Error()))
		return err
	}

	return nil
}

// Consume implements store.LoginStateStore.Consume. The delete-returning
// form removes the row in the same statement, so a state value can be
// exchanged for its context at most once.
func (s *PostgresLoginStateStore) Consume(
	ctx context.Context,
	state string,
) (*store.LoginState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM login_states
		WHERE state = $1 AND expires_at > $2
		RETURNING state, invite_token, return_url, expires_at
	`

	var ls store.LoginState
	err := s.db.QueryRowContext(ctx, query, state, time.Now().UTC()).Scan(
		&ls.State,
		&ls.InviteToken,
		&ls.ReturnURL,
		&ls.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("login state unknown or expired")
			return nil, store.ErrStateNotFound
		}
		log.Error("failed to consume login state",
			slog.String("error", err.Error()))
		return nil, err
	}

	return &ls, nil
}

// DeleteExpired implements store.LoginStateStore.DeleteExpired.
func (s *PostgresLoginStateStore) DeleteExpired(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM login_states WHERE expires_at <= $1`,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to delete expired login states",
			slog.String("error", err.Error()))
		return 0, err
	}

	return result.RowsAffected()
}

// WithTx implements store.LoginStateStore.WithTx.
func (s *PostgresLoginStateStore) WithTx(tx *sql.Tx) store.LoginStateStore {
	return &PostgresLoginStateStore{
		db:     tx,
		logger: s.logger,
	}
}
