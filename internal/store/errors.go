package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrGroupNotFound indicates that the requested group does not exist.
	ErrGroupNotFound = fmt.Errorf("%w: group", ErrNotFound)

	// ErrMembershipNotFound indicates that no membership joins the user to the group.
	ErrMembershipNotFound = fmt.Errorf("%w: membership", ErrNotFound)

	// ErrTaskNotFound indicates that the requested task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrCommentNotFound indicates that the requested comment does not exist.
	ErrCommentNotFound = fmt.Errorf("%w: comment", ErrNotFound)

	// ErrInvitationNotFound indicates that no invitation carries the given token.
	ErrInvitationNotFound = fmt.Errorf("%w: invitation", ErrNotFound)

	// ErrStateNotFound indicates that the login state token is unknown or expired.
	ErrStateNotFound = fmt.Errorf("%w: login state", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrMembershipExists indicates that a membership for that (user, group)
	// pair already exists. Under a concurrent add, the losing caller sees
	// this rather than a second row.
	ErrMembershipExists = fmt.Errorf("%w: membership", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
