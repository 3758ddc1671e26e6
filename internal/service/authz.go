package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/store"
)

// Authorizer answers membership questions for group-scoped operations.
// Every service method that touches a group-owned resource routes its
// permission check through here so the rules stay in one place.
type Authorizer struct {
	memberships store.MembershipStore
}

// NewAuthorizer creates an Authorizer backed by the given membership store.
func NewAuthorizer(memberships store.MembershipStore) (*Authorizer, error) {
	if memberships == nil {
		return nil, errors.New("membership store cannot be nil")
	}
	return &Authorizer{memberships: memberships}, nil
}

// RequireMembership returns the caller's membership in the group, or
// ErrNotMember if no membership exists.
func (a *Authorizer) RequireMembership(
	ctx context.Context,
	userID, groupID uuid.UUID,
) (*domain.Membership, error) {
	membership, err := a.memberships.GetByUserAndGroup(ctx, userID, groupID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	return membership, nil
}

// RequireOwner returns the caller's membership in the group, or ErrNotMember
// if no membership exists, or ErrNotOwner if the membership lacks the owner
// role.
func (a *Authorizer) RequireOwner(
	ctx context.Context,
	userID, groupID uuid.UUID,
) (*domain.Membership, error) {
	membership, err := a.RequireMembership(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if !membership.IsOwner() {
		return nil, ErrNotOwner
	}
	return membership, nil
}
