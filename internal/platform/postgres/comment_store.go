package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/platform/logger"
	"github.com/taskraft/taskraft-api/internal/store"
)

// PostgresCommentStore implements the store.CommentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommentStore creates a new PostgreSQL implementation of the
// CommentStore interface.
func NewPostgresCommentStore(db store.DBTX, log *slog.Logger) *PostgresCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresCommentStore{
		db:     db,
		logger: log.With(slog.String("component", "comment_store")),
	}
}

// Ensure PostgresCommentStore implements store.CommentStore interface
var _ store.CommentStore = (*PostgresCommentStore)(nil)

// Create implements store.CommentStore.Create.
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	query := `
		INSERT INTO comments (id, task_id, author_id, contents, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		comment.ID,
		comment.TaskID,
		comment.AuthorID,
		comment.Contents,
		comment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during comment creation",
				slog.String("error", err.Error()),
				slog.String("task_id", comment.TaskID.String()))
			return fmt.Errorf("%w: task or author does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	log.Info("comment created",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", comment.TaskID.String()))
	return nil
}

// ListByTask implements store.CommentStore.ListByTask.
func (s *PostgresCommentStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.CommentDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id, c.task_id, c.author_id, c.contents, c.created_at,
		       u.display_name, u.avatar_url
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.task_id = $1
		ORDER BY c.created_at, c.id
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var comments []*domain.CommentDetail
	for rows.Next() {
		var detail domain.CommentDetail
		err := rows.Scan(
			&detail.ID,
			&detail.TaskID,
			&detail.AuthorID,
			&detail.Contents,
			&detail.CreatedAt,
			&detail.Author.DisplayName,
			&detail.Author.AvatarURL,
		)
		if err != nil {
			log.Error("failed to scan comment row",
				slog.String("error", err.Error()))
			return nil, err
		}
		detail.Author.ID = detail.AuthorID
		comments = append(comments, &detail)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if comments == nil {
		comments = []*domain.CommentDetail{}
	}
	return comments, nil
}

// DeleteByTask implements store.CommentStore.DeleteByTask.
func (s *PostgresCommentStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE task_id = $1`, taskID)
	if err != nil {
		log.Error("failed to delete comments by task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return 0, err
	}

	return result.RowsAffected()
}

// DeleteByGroup implements store.CommentStore.DeleteByGroup.
func (s *PostgresCommentStore) DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM comments
		WHERE task_id IN (SELECT id FROM tasks WHERE group_id = $1)
	`
	result, err := s.db.ExecContext(ctx, query, groupID)
	if err != nil {
		log.Error("failed to delete comments by group",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()))
		return 0, err
	}

	return result.RowsAffected()
}

// DeleteByGroupAssignee implements store.CommentStore.DeleteByGroupAssignee.
func (s *PostgresCommentStore) DeleteByGroupAssignee(
	ctx context.Context,
	groupID, assigneeID uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM comments
		WHERE task_id IN (
			SELECT id FROM tasks WHERE group_id = $1 AND assignee_id = $2
		)
	`
	result, err := s.db.ExecContext(ctx, query, groupID, assigneeID)
	if err != nil {
		log.Error("failed to delete comments by group assignee",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()),
			slog.String("assignee_id", assigneeID.String()))
		return 0, err
	}

	return result.RowsAffected()
}

// WithTx implements store.CommentStore.WithTx.
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &PostgresCommentStore{
		db:     tx,
		logger: s.logger,
	}
}
