package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/platform/logger"
	"github.com/taskraft/taskraft-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, log *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: log.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// UpsertByExternalID implements store.UserStore.UpsertByExternalID.
// The upsert is keyed by the unique external_id column: a second resolution
// of the same identity refreshes the profile fields and keeps the row.
func (s *PostgresUserStore) UpsertByExternalID(
	ctx context.Context,
	user *domain.User,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("external_id", user.ExternalID))
		return nil, err
	}

	query := `
		INSERT INTO users (id, external_id, display_name, email, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (external_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    email        = EXCLUDED.email,
		    avatar_url   = EXCLUDED.avatar_url
		RETURNING id, external_id, display_name, email, avatar_url, created_at
	`

	var out domain.User
	err := s.db.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.ExternalID,
		user.DisplayName,
		user.Email,
		user.AvatarURL,
		user.CreatedAt,
	).Scan(
		&out.ID,
		&out.ExternalID,
		&out.DisplayName,
		&out.Email,
		&out.AvatarURL,
		&out.CreatedAt,
	)
	if err != nil {
		log.Error("failed to upsert user",
			slog.String("error", err.Error()),
			slog.String("external_id", user.ExternalID))
		return nil, err
	}

	log.Debug("user upserted",
		slog.String("user_id", out.ID.String()),
		slog.String("external_id", out.ExternalID))
	return &out, nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, external_id, display_name, email, avatar_url, created_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.ExternalID,
		&user.DisplayName,
		&user.Email,
		&user.AvatarURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("user_id", id.String()))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, err
	}

	return &user, nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, external_id, display_name, email, avatar_url, created_at
		FROM users
		WHERE email = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.ExternalID,
		&user.DisplayName,
		&user.Email,
		&user.AvatarURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found by email")
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by email",
			slog.String("error", err.Error()))
		return nil, err
	}

	return &user, nil
}

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}
