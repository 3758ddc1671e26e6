package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/platform/logger"
	"github.com/taskraft/taskraft-api/internal/store"
)

// PostgresMembershipStore implements the store.MembershipStore interface
// using a PostgreSQL database as the storage backend.
//
// The memberships table carries UNIQUE (user_id, group_id); racing inserts
// for the same pair surface as store.ErrMembershipExists on the loser.
type PostgresMembershipStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMembershipStore creates a new PostgreSQL implementation of the
// MembershipStore interface.
func NewPostgresMembershipStore(db store.DBTX, log *slog.Logger) *PostgresMembershipStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresMembershipStore{
		db:     db,
		logger: log.With(slog.String("component", "membership_store")),
	}
}

// Ensure PostgresMembershipStore implements store.MembershipStore interface
var _ store.MembershipStore = (*PostgresMembershipStore)(nil)

// Create implements store.MembershipStore.Create.
func (s *PostgresMembershipStore) Create(ctx context.Context, membership *domain.Membership) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := membership.Validate(); err != nil {
		log.Warn("membership validation failed during create",
			slog.String("error", err.Error()),
			slog.String("membership_id", membership.ID.String()))
		return err
	}

	query := `
		INSERT INTO memberships (id, user_id, group_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.UserID,
		membership.GroupID,
		membership.Role,
		membership.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("membership already exists",
				slog.String("user_id", membership.UserID.String()),
				slog.String("group_id", membership.GroupID.String()))
			return store.ErrMembershipExists
		}
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during membership creation",
				slog.String("error", err.Error()),
				slog.String("user_id", membership.UserID.String()),
				slog.String("group_id", membership.GroupID.String()))
			return fmt.Errorf("%w: user or group does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create membership",
			slog.String("error", err.Error()),
			slog.String("membership_id", membership.ID.String()))
		return err
	}

	log.Info("membership created",
		slog.String("membership_id", membership.ID.String()),
		slog.String("user_id", membership.UserID.String()),
		slog.String("group_id", membership.GroupID.String()),
		slog.String("role", string(membership.Role)))
	return nil
}

// GetByUserAndGroup implements store.MembershipStore.GetByUserAndGroup.
func (s *PostgresMembershipStore) GetByUserAndGroup(
	ctx context.Context,
	userID, groupID uuid.UUID,
) (*domain.Membership, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, group_id, role, created_at
		FROM memberships
		WHERE user_id = $1 AND group_id = $2
	`

	var m domain.Membership
	var role string
	err := s.db.QueryRowContext(ctx, query, userID, groupID).Scan(
		&m.ID,
		&m.UserID,
		&m.GroupID,
		&role,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("membership not found",
				slog.String("user_id", userID.String()),
				slog.String("group_id", groupID.String()))
			return nil, store.ErrMembershipNotFound
		}
		log.Error("failed to get membership",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("group_id", groupID.String()))
		return nil, err
	}

	m.Role = domain.Role(role)
	return &m, nil
}

// ListByGroup implements store.MembershipStore.ListByGroup.
func (s *PostgresMembershipStore) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*domain.Member, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT m.id, m.user_id, m.group_id, m.role, m.created_at,
		       u.display_name, u.avatar_url
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.id
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		log.Error("failed to list members",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var members []*domain.Member
	for rows.Next() {
		var member domain.Member
		var role string
		err := rows.Scan(
			&member.ID,
			&member.UserID,
			&member.GroupID,
			&role,
			&member.CreatedAt,
			&member.User.DisplayName,
			&member.User.AvatarURL,
		)
		if err != nil {
			log.Error("failed to scan member row",
				slog.String("error", err.Error()))
			return nil, err
		}
		member.Role = domain.Role(role)
		member.User.ID = member.UserID
		members = append(members, &member)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if members == nil {
		members = []*domain.Member{}
	}
	return members, nil
}

// Delete implements store.MembershipStore.Delete.
func (s *PostgresMembershipStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete membership",
			slog.String("error", err.Error()),
			slog.String("membership_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("membership_id", id.String()))
		return err
	}
	if rowsAffected == 0 {
		return store.ErrMembershipNotFound
	}

	log.Info("membership deleted", slog.String("membership_id", id.String()))
	return nil
}

// DeleteByGroup implements store.MembershipStore.DeleteByGroup.
func (s *PostgresMembershipStore) DeleteByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM memberships WHERE group_id = $1`, groupID)
	if err != nil {
		log.Error("failed to delete memberships by group",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()))
		return 0, err
	}

	return result.RowsAffected()
}

// WithTx implements store.MembershipStore.WithTx.
func (s *PostgresMembershipStore) WithTx(tx *sql.Tx) store.MembershipStore {
	return &PostgresMembershipStore{
		db:     tx,
		logger: s.logger,
	}
}
