// Package service provides application-level services for groups, tasks,
// comments and invitations.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Store-level not-found and duplicate errors pass through unwrapped so the
//    API layer can map them with store.IsNotFoundError / store.IsDuplicateError
// 3. Unexpected errors are wrapped in ServiceError with operation context
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotMember indicates the acting user does not belong to the group
	// that owns the resource. API layer should map this to HTTP 403 Forbidden.
	ErrNotMember = errors.New("user is not a member of the group")

	// ErrNotOwner indicates the operation requires the group owner role.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwner = errors.New("user is not the owner of the group")

	// ErrForbidden indicates the acting user is a member but lacks the
	// specific permission the operation requires.
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrSelfRemoval indicates an owner tried to remove themselves from
	// their own group. API layer should map this to HTTP 400 Bad Request.
	ErrSelfRemoval = errors.New("owner cannot remove themselves from the group")

	// ErrAssigneeNotMember indicates a task references an assignee who does
	// not belong to the task's group.
	ErrAssigneeNotMember = errors.New("assignee is not a member of the group")

	// ErrInvalidInviteToken indicates the invitation token is unknown,
	// already redeemed, issued for a different email address, or points at
	// a group that no longer exists. The reason is deliberately not
	// distinguished so that tokens cannot be probed.
	ErrInvalidInviteToken = errors.New("invalid invitation token")

	// ErrInvalidLoginState indicates the OAuth state parameter is unknown
	// or expired.
	ErrInvalidLoginState = errors.New("invalid or expired login state")

	// ErrEmptyPatch indicates a task update carried no fields to change.
	ErrEmptyPatch = errors.New("update contains no fields")

	// ErrCollaborator indicates a downstream collaborator (generator,
	// mailer, identity provider) failed. API layer should map this to
	// HTTP 500 or 502 depending on the surface.
	ErrCollaborator = errors.New("collaborator operation failed")
)

// ServiceError wraps unexpected errors from service operations with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_group", "redeem_invitation")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
