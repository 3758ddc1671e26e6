package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/store"
)

// GroupService manages group lifecycle and membership. Destructive
// operations cascade inside a single transaction so a group never loses
// part of its children.
type GroupService struct {
	db          *sql.DB
	groups      store.GroupStore
	memberships store.MembershipStore
	tasks       store.TaskStore
	comments    store.CommentStore
	authz       *Authorizer
	logger      *slog.Logger
}

// NewGroupService creates a GroupService.
// It returns an error if any of the required dependencies are nil.
func NewGroupService(
	db *sql.DB,
	groups store.GroupStore,
	memberships store.MembershipStore,
	tasks store.TaskStore,
	comments store.CommentStore,
	authz *Authorizer,
	log *slog.Logger,
) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if groups == nil {
		return nil, errors.New("group store cannot be nil")
	}
	if memberships == nil {
		return nil, errors.New("membership store cannot be nil")
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
	if log == nil {
		log = slog.Default()
	}
	return &GroupService{
		db:          db,
		groups:      groups,
		memberships: memberships,
		tasks:       tasks,
		comments:    comments,
		authz:       authz,
		logger:      log.With(slog.String("component", "group_service")),
	}, nil
}

// CreateGroup creates a group and makes the actor its owner. The group row
// and the owner membership commit together; a group is never visible
// without its owner.
func (s *GroupService) CreateGroup(
	ctx context.Context,
	actorID uuid.UUID,
	name string,
) (*domain.Group, error) {
	group, err := domain.NewGroup(name)
	if err != nil {
		return nil, err
	}

	ownership, err := domain.NewMembership(actorID, group.ID, domain.RoleOwner)
	if err != nil {
		return nil, NewServiceError("create_group", "failed to build owner membership", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.groups.WithTx(tx).Create(ctx, group); err != nil {
			return NewServiceError("create_group", "failed to save group", err)
		}
		if err := s.memberships.WithTx(tx).Create(ctx, ownership); err != nil {
			return NewServiceError("create_group", "failed to save owner membership", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "group created",
		slog.String("group_id", group.ID.String()),
		slog.String("owner_id", actorID.String()))
	return group, nil
}

// ListGroups returns the groups the actor belongs to.
func (s *GroupService) ListGroups(ctx context.Context, actorID uuid.UUID) ([]*domain.Group, error) {
	groups, err := s.groups.ListByUser(ctx, actorID)
	if err != nil {
		return nil, NewServiceError("list_groups", "failed to list groups", err)
	}
	return groups, nil
}

// GetGroup returns a group the actor belongs to. Non-members get
// ErrNotMember regardless of whether the group exists.
func (s *GroupService) GetGroup(
	ctx context.Context,
	actorID, groupID uuid.UUID,
) (*domain.Group, error) {
	if _, err := s.authz.RequireMembership(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("get_group", "failed to load group", err)
	}
	return group, nil
}

// ListMembers returns the group's members with their profile projections,
// in joining order.
func (s *GroupService) ListMembers(
	ctx context.Context,
	actorID, groupID uuid.UUID,
) ([]*domain.Member, error) {
	if _, err := s.authz.RequireMembership(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	members, err := s.memberships.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, NewServiceError("list_members", "failed to list members", err)
	}
	return members, nil
}

// RemoveMember removes targetID from the group. Only the owner may remove
// members, and the owner cannot remove themselves. Tasks assigned to the
// removed member in this group are deleted along with their comments, all
// in one transaction.
func (s *GroupService) RemoveMember(
	ctx context.Context,
	actorID, groupID, targetID uuid.UUID,
) error {
	if _, err := s.authz.RequireOwner(ctx, actorID, groupID); err != nil {
		return err
	}
	if actorID == targetID {
		return ErrSelfRemoval
	}

	target, err := s.memberships.GetByUserAndGroup(ctx, targetID, groupID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		return NewServiceError("remove_member", "failed to load target membership", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		// Comments hang off tasks, so they go first.
		if _, err := s.comments.WithTx(tx).DeleteByGroupAssignee(ctx, groupID, targetID); err != nil {
			return NewServiceError("remove_member", "failed to delete assignee comments", err)
		}
		if _, err := s.tasks.WithTx(tx).DeleteByGroupAssignee(ctx, groupID, targetID); err != nil {
			return NewServiceError("remove_member", "failed to delete assignee tasks", err)
		}
		if err := s.memberships.WithTx(tx).Delete(ctx, target.ID); err != nil {
			return NewServiceError("remove_member", "failed to delete membership", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "member removed",
		slog.String("group_id", groupID.String()),
		slog.String("target_id", targetID.String()),
		slog.String("actor_id", actorID.String()))
	return nil
}

// DeleteGroup removes the group and everything it owns: comments, tasks and
// memberships, then the group row itself, in one transaction. Invitations
// are kept as an audit trail; their tokens become unredeemable once the
// group is gone.
func (s *GroupService) DeleteGroup(ctx context.Context, actorID, groupID uuid.UUID) error {
	if _, err := s.authz.RequireOwner(ctx, actorID, groupID); err != nil {
		return err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.comments.WithTx(tx).DeleteByGroup(ctx, groupID); err != nil {
			return NewServiceError("delete_group", "failed to delete comments", err)
		}
		if _, err := s.tasks.WithTx(tx).DeleteByGroup(ctx, groupID); err != nil {
			return NewServiceError("delete_group", "failed to delete tasks", err)
		}
		if _, err := s.memberships.WithTx(tx).DeleteByGroup(ctx, groupID); err != nil {
			return NewServiceError("delete_group", "failed to delete memberships", err)
		}
		if err := s.groups.WithTx(tx).Delete(ctx, groupID); err != nil {
			if store.IsNotFoundError(err) {
				return err
			}
			return NewServiceError("delete_group", "failed to delete group", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "group deleted",
		slog.String("group_id", groupID.String()),
		slog.String("actor_id", actorID.String()))
	return nil
}
