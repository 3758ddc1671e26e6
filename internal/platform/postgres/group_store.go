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

// PostgresGroupStore implements the store.GroupStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGroupStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGroupStore creates a new PostgreSQL implementation of the
// GroupStore interface.
func NewPostgresGroupStore(db store.DBTX, log *slog.Logger) *PostgresGroupStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresGroupStore{
		db:     db,
		logger: log.With(slog.String("component", "group_store")),
	}
}

// Ensure PostgresGroupStore implements store.GroupStore interface
var _ store.GroupStore = (*PostgresGroupStore)(nil)

// Create implements store.GroupStore.Create.
func (s *PostgresGroupStore) Create(ctx context.Context, group *domain.Group) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := group.Validate(); err != nil {
		log.Warn("group validation failed during create",
			slog.String("error", err.Error()),
			slog.String("group_id", group.ID.String()))
		return err
	}

	query := `
		INSERT INTO groups (id, name, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, group.ID, group.Name, group.CreatedAt)
	if err != nil {
		log.Error("failed to create group",
			slog.String("error", err.Error()),
			slog.String("group_id", group.ID.String()))
		return err
	}

	log.Info("group created",
		slog.String("group_id", group.ID.String()))
	return nil
}

// GetByID implements store.GroupStore.GetByID.
func (s *PostgresGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, created_at
		FROM groups
		WHERE id = $1
	`

	var group domain.Group
	err := s.db.QueryRowContext(ctx, query, id).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("group not found", slog.String("group_id", id.String()))
			return nil, store.ErrGroupNotFound
		}
		log.Error("failed to get group by ID",
			slog.String("error", err.Error()),
			slog.String("group_id", id.String()))
		return nil, err
	}

	return &group, nil
}

// ListByUser implements store.GroupStore.ListByUser.
func (s *PostgresGroupStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Group, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT g.id, g.name, g.created_at
		FROM groups g
		JOIN memberships m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list groups by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var groups []*domain.Group
	for rows.Next() {
		var group domain.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt); err != nil {
			log.Error("failed to scan group row",
				slog.String("error", err.Error()))
			return nil, err
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if groups == nil {
		groups = []*domain.Group{}
	}
	return groups, nil
}

// Delete implements store.GroupStore.Delete.
func (s *PostgresGroupStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete group",
			slog.String("error", err.Error()),
			slog.String("group_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("group_id", id.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("group not found for delete", slog.String("group_id", id.String()))
		return store.ErrGroupNotFound
	}

	log.Info("group deleted", slog.String("group_id", id.String()))
	return nil
}

// WithTx implements store.GroupStore.WithTx.
func (s *PostgresGroupStore) WithTx(tx *sql.Tx) store.GroupStore {
	return &PostgresGroupStore{
		db:     tx,
		logger: s.logger,
	}
}
