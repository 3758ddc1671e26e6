package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/platform/logger"
	"github.com/taskraft/taskraft-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface.
func NewPostgresTaskStore(db store.DBTX, log *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, group_id, title, description, deadline, priority, status, assignee_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.GroupID,
		task.Title,
		task.Description,
		task.Deadline,
		task.Priority,
		task.Status,
		task.AssigneeID,
		task.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.String("group_id", task.GroupID.String()))
			return fmt.Errorf("%w: group or assignee does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("group_id", task.GroupID.String()),
		slog.String("assignee_id", task.AssigneeID.String()))
	return nil
}

// CreateMultiple implements store.TaskStore.CreateMultiple.
// Each task is validated and inserted in turn; callers wrap the call in a
// transaction so a failing draft leaves nothing behind.
func (s *PostgresTaskStore) CreateMultiple(ctx context.Context, tasks []*domain.Task) error {
	for _, task := range tasks {
		if err := s.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

const taskDetailColumns = `
	t.id, t.group_id, t.title, t.description, t.deadline, t.priority, t.status, t.assignee_id, t.created_at,
	u.display_name, u.avatar_url
`

func scanTaskDetail(scan func(dest ...any) error) (*domain.TaskDetail, error) {
	var detail domain.TaskDetail
	var deadline sql.NullTime
	var priority, status string
	err := scan(
		&detail.ID,
		&detail.GroupID,
		&detail.Title,
		&detail.Description,
		&deadline,
		&priority,
		&status,
		&detail.AssigneeID,
		&detail.CreatedAt,
		&detail.Assignee.DisplayName,
		&detail.Assignee.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		t := deadline.Time
		detail.Deadline = &t
	}
	detail.Priority = domain.Priority(priority)
	detail.Status = domain.Status(status)
	detail.Assignee.ID = detail.AssigneeID
	return &detail, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, group_id, title, description, deadline, priority, status, assignee_id, created_at
		FROM tasks
		WHERE id = $1
	`

	var task domain.Task
	var deadline sql.NullTime
	var priority, status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.GroupID,
		&task.Title,
		&task.Description,
		&deadline,
		&priority,
		&status,
		&task.AssigneeID,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	if deadline.Valid {
		t := deadline.Time
		task.Deadline = &t
	}
	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	return &task, nil
}

// GetDetail implements store.TaskStore.GetDetail.
func (s *PostgresTaskStore) GetDetail(ctx context.Context, id uuid.UUID) (*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskDetailColumns + `
		FROM tasks t
		JOIN users u ON u.id = t.assignee_id
		WHERE t.id = $1
	`

	row := s.db.QueryRowContext(ctx, query, id)
	detail, err := scanTaskDetail(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task detail",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return detail, nil
}

// List implements store.TaskStore.List. Filter fields are applied
// conjunctively; the WHERE clause is assembled from the supplied ones only.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	groupID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var sb strings.Builder
	sb.WriteString(`
		SELECT ` + taskDetailColumns + `
		FROM tasks t
		JOIN users u ON u.id = t.assignee_id
		WHERE t.group_id = $1`)
	args := []any{groupID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		sb.WriteString(" AND t.status = $" + strconv.Itoa(len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		sb.WriteString(" AND t.priority = $" + strconv.Itoa(len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		sb.WriteString(" AND t.assignee_id = $" + strconv.Itoa(len(args)))
	}
	sb.WriteString(" ORDER BY t.id")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.TaskDetail
	for rows.Next() {
		detail, err := scanTaskDetail(rows.Scan)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, detail)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if tasks == nil {
		tasks = []*domain.TaskDetail{}
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, deadline = $3, priority = $4, status = $5, assignee_id = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Deadline,
		task.Priority,
		task.Status,
		task.AssigneeID,
		task.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: assignee does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// DeleteByGroup implements store.TaskStore.DeleteByGroup.
func (s *PostgresTaskStore) DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE group_id = $1`, groupID)
	if err != nil {
		log.Error("failed to delete tasks by group",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()))
		return 0, err
	}

	return result.RowsAffected()
}

// DeleteByGroupAssignee implements store.TaskStore.DeleteByGroupAssignee.
func (s *PostgresTaskStore) DeleteByGroupAssignee(
	ctx context.Context,
	groupID, assigneeID uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE group_id = $1 AND assignee_id = $2`,
		groupID,
		assigneeID,
	)
	if err != nil {
		log.Error("failed to delete tasks by group assignee",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()),
			slog.String("assignee_id", assigneeID.String()))
		return 0, err
	}

	return result.RowsAffected()
}

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}
