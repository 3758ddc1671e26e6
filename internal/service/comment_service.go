package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/store"
)

// CommentService manages the discussion thread attached to a task.
type CommentService struct {
	comments store.CommentStore
	tasks    store.TaskStore
	authz    *Authorizer
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
// It returns an error if any of the required dependencies are nil.
func NewCommentService(
	comments store.CommentStore,
	tasks store.TaskStore,
	authz *Authorizer,
	log *slog.Logger,
) (*CommentService, error) {
	if comments == nil {
		return nil, errors.New("comment store cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if authz == nil {
		return nil, errors.New("authorizer cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CommentService{
		comments: comments,
		tasks:    tasks,
		authz:    authz,
		logger:   log.With(slog.String("component", "comment_service")),
	}, nil
}

// PostComment appends a comment to the task's thread. The actor must be a
// member of the task's group.
func (s *CommentService) PostComment(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	contents string,
) (*domain.Comment, error) {
	if _, err := s.requireTaskMember(ctx, actorID, taskID); err != nil {
		return nil, err
	}

	comment, err := domain.NewComment(taskID, actorID, contents)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, NewServiceError("post_comment", "failed to save comment", err)
	}

	s.logger.InfoContext(ctx, "comment posted",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", taskID.String()))
	return comment, nil
}

// ListComments returns the task's comments with author projections, oldest
// first.
func (s *CommentService) ListComments(
	ctx context.Context,
	actorID, taskID uuid.UUID,
) ([]*domain.CommentDetail, error) {
	if _, err := s.requireTaskMember(ctx, actorID, taskID); err != nil {
		return nil, err
	}

	details, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("list_comments", "failed to list comments", err)
	}
	return details, nil
}

func (s *CommentService) requireTaskMember(
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
