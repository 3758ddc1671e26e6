package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/generation"
	"github.com/taskraft/taskraft-api/internal/store"
)

// TaskService manages group-scoped tasks: creation, listing, partial
// updates, deletion and draft generation from meeting minutes.
type TaskService struct {
	db        *sql.DB
	tasks     store.TaskStore
	comments  store.CommentStore
	authz     *Authorizer
	generator generation.Generator
	logger    *slog.Logger
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	comments store.CommentStore,
	authz *Authorizer,
	generator generation.Generator,
	log *slog.Logger,
) (*TaskService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if comments == nil {
		return nil, errors.New("comment store cannot be nil")
	}
	if authz == nil {
		return nil, errors.New("authorizer cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		db:        db,
		tasks:     tasks,
		comments:  comments,
		authz:     authz,
		generator: generator,
		logger:    log.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask creates a task in the group. The actor must be a member and
// the assignee must be a member of the same group.
func (s *TaskService) CreateTask(
	ctx context.Context,
	actorID, groupID uuid.UUID,
	title, description string,
	deadline *time.Time,
	priority domain.Priority,
	status domain.Status,
	assigneeID uuid.UUID,
) (*domain.Task, error) {
	if _, err := s.authz.RequireMembership(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	if err := s.requireAssignee(ctx, assigneeID, groupID); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(groupID, title, description, deadline, priority, status, assigneeID)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewServiceError("create_task", "failed to save task", err)
	}

	s.logger.InfoContext(ctx, "task created",
		slog.String("task_id", task.ID.String()),
		slog.String("group_id", groupID.String()))
	return task, nil
}

// ListTasks returns the group's tasks with assignee projections, optionally
// narrowed by the filter, in creation order.
func (s *TaskService) ListTasks(
	ctx context.Context,
	actorID, groupID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.TaskDetail, error) {
	if _, err := s.authz.RequireMembership(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	details, err := s.tasks.List(ctx, groupID, filter)
	if err != nil {
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}
	return details, nil
}

// GetTask returns a single task with its assignee projection. The actor
// must be a member of the task's group.
func (s *TaskService) GetTask(
	ctx context.Context,
	actorID, taskID uuid.UUID,
) (*domain.TaskDetail, error) {
	task, err := s.loadForMember(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}
	detail, err := s.tasks.GetDetail(ctx, task.ID)
	if err != nil {
		return nil, NewServiceError("get_task", "failed to load task detail", err)
	}
	return detail, nil
}

// UpdateTask applies a partial update to the task. Absent fields keep their
// stored values. Any member of the task's group may update; reassignment
// requires the new assignee to be a member.
func (s *TaskService) UpdateTask(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	task, err := s.loadForMember(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.AssigneeID != nil && *patch.AssigneeID != task.AssigneeID {
		if err := s.requireAssignee(ctx, *patch.AssigneeID, task.GroupID); err != nil {
			return nil, err
		}
	}

	if err := patch.Apply(task); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("update_task", "failed to save task", err)
	}

	s.logger.InfoContext(ctx, "task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("group_id", task.GroupID.String()))
	return task, nil
}

// DeleteTask removes the task and its comments. Only the group owner or the
// task's assignee may delete; other members get ErrForbidden.
func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		return NewServiceError("delete_task", "failed to load task", err)
	}

	membership, err := s.authz.RequireMembership(ctx, actorID, task.GroupID)
	if err != nil {
		return err
	}
	if !membership.IsOwner() && task.AssigneeID != actorID {
		return ErrForbidden
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.comments.WithTx(tx).DeleteByTask(ctx, taskID); err != nil {
			return NewServiceError("delete_task", "failed to delete comments", err)
		}
		if err := s.tasks.WithTx(tx).Delete(ctx, taskID); err != nil {
			if store.IsNotFoundError(err) {
				return err
			}
			return NewServiceError("delete_task", "failed to delete task", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("group_id", task.GroupID.String()),
		slog.String("actor_id", actorID.String()))
	return nil
}

// SuggestTasks asks the generator to propose task drafts from meeting
// minutes. Only the group owner may request drafts. Nothing is persisted;
// the drafts come back for the client to review and save.
func (s *TaskService) SuggestTasks(
	ctx context.Context,
	actorID, groupID uuid.UUID,
	minutesText string,
) ([]*domain.TaskDraft, error) {
	if _, err := s.authz.RequireOwner(ctx, actorID, groupID); err != nil {
		return nil, err
	}

	drafts, err := s.generator.GenerateDrafts(ctx, minutesText)
	if err != nil {
		if errors.Is(err, generation.ErrEmptyMinutes) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "draft generation failed",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()))
		return nil, NewServiceError("suggest_tasks", "failed to generate drafts", err)
	}
	return drafts, nil
}

// SaveDrafts persists reviewed drafts as tasks in one transaction; a
// failing draft leaves nothing behind. Only the group owner may save a
// batch. Drafts without an assignee default to the actor.
func (s *TaskService) SaveDrafts(
	ctx context.Context,
	actorID, groupID uuid.UUID,
	drafts []*domain.TaskDraft,
) ([]*domain.Task, error) {
	if _, err := s.authz.RequireOwner(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, domain.NewValidationError("tasks", "draft list cannot be empty", nil)
	}

	tasks := make([]*domain.Task, 0, len(drafts))
	checked := map[uuid.UUID]bool{actorID: true}
	for _, draft := range drafts {
		assigneeID := draft.AssigneeID
		if assigneeID == uuid.Nil {
			assigneeID = actorID
		}
		if !checked[assigneeID] {
			if err := s.requireAssignee(ctx, assigneeID, groupID); err != nil {
				return nil, err
			}
			checked[assigneeID] = true
		}

		priority := draft.Priority
		if priority == "" {
			priority = domain.PriorityMiddle
		}
		status := draft.Status
		if status == "" {
			status = domain.StatusNotStarted
		}

		task, err := domain.NewTask(
			groupID, draft.Title, draft.Description, draft.Deadline, priority, status, assigneeID)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).CreateMultiple(ctx, tasks); err != nil {
			return NewServiceError("save_drafts", "failed to save tasks", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "drafts saved",
		slog.Int("task_count", len(tasks)),
		slog.String("group_id", groupID.String()))
	return tasks, nil
}

// loadForMember loads a task and checks the actor belongs to its group.
func (s *TaskService) loadForMember(
	ctx context.Context,
	actorID, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("load_task", "failed to load task", err)
	}
	if _, err := s.authz.RequireMembership(ctx, actorID, task.GroupID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) requireAssignee(
	ctx context.Context,
	assigneeID, groupID uuid.UUID,
) error {
	_, err := s.authz.RequireMembership(ctx, assigneeID, groupID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return ErrAssigneeNotMember
		}
		return err
	}
	return nil
}
