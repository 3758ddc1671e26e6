package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/platform/logger"
	"github.com/taskraft/taskraft-api/internal/store"
)

// PostgresInvitationStore implements the store.InvitationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresInvitationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInvitationStore creates a new PostgreSQL implementation of the
// InvitationStore interface.
func NewPostgresInvitationStore(db store.DBTX, log *slog.Logger) *PostgresInvitationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresInvitationStore{
		db:     db,
		logger: log.With(slog.String("component", "invitation_store")),
	}
}

// Ensure PostgresInvitationStore implements store.InvitationStore interface
var _ store.InvitationStore = (*PostgresInvitationStore)(nil)

// Create implements store.InvitationStore.Create.
func (s *PostgresInvitationStore) Create(ctx context.Context, invitation *domain.Invitation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invitation.Validate(); err != nil {
		log.Warn("invitation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return err
	}

	query := `
		INSERT INTO invitations (id, group_id, email, token, accepted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		invitation.ID,
		invitation.GroupID,
		invitation.Email,
		invitation.Token,
		invitation.Accepted,
		invitation.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return err
	}

	log.Info("invitation created",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("group_id", invitation.GroupID.String()))
	return nil
}

// GetByToken implements store.InvitationStore.GetByToken.
func (s *PostgresInvitationStore) GetByToken(
	ctx context.Context,
	token string,
) (*domain.Invitation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, group_id, email, token, accepted, created_at
		FROM invitations
		WHERE token = $1
	`

	var inv domain.Invitation
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&inv.ID,
		&inv.GroupID,
		&inv.Email,
		&inv.Token,
		&inv.Accepted,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("invitation not found by token")
			return nil, store.ErrInvitationNotFound
		}
		log.Error("failed to get invitation by token",
			slog.String("error", err.Error()))
		return nil, err
	}

	return &inv, nil
}

// Accept implements store.InvitationStore.Accept. The transition is a
// conditional write: only a still-pending row flips, so of any number of
// concurrent redeemers exactly one observes true.
func (s *PostgresInvitationStore) Accept(ctx context.Context, token string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE invitations
		SET accepted = TRUE
		WHERE token = $1 AND accepted = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		log.Error("failed to accept invitation",
			slog.String("error", err.Error()))
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()))
		return false, err
	}

	if rowsAffected == 0 {
		log.Debug("invitation already accepted or unknown token")
		return false, nil
	}

	log.Info("invitation accepted")
	return true, nil
}

// WithTx implements store.InvitationStore.WithTx.
func (s *PostgresInvitationStore) WithTx(tx *sql.Tx) store.InvitationStore {
	return &PostgresInvitationStore{
		db:     tx,
		logger: s.logger,
	}
}
