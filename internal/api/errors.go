package api

import (
	"errors"
	"net/http"

	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/generation"
	"github.com/taskraft/taskraft-api/internal/service"
	"github.com/taskraft/taskraft-api/internal/service/auth"
	"github.com/taskraft/taskraft-api/internal/store"
)

// isDomainValidationError reports whether the error chain contains a
// domain.ValidationError, whichever sentinel it wraps.
func isDomainValidationError(err error) bool {
	var validationErr *domain.ValidationError
	return errors.As(err, &validationErr)
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Not found errors - the sentinel wrappers all unwrap to ErrNotFound
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrMembershipExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		isDomainValidationError(err),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrSelfRemoval),
		errors.Is(err, service.ErrAssigneeNotMember),
		errors.Is(err, service.ErrInvalidInviteToken),
		errors.Is(err, service.ErrInvalidLoginState),
		errors.Is(err, service.ErrEmptyPatch),
		errors.Is(err, generation.ErrEmptyMinutes):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	// Authorization errors
	case errors.Is(err, service.ErrNotMember):
		return "You are not a member of this group"

	case errors.Is(err, service.ErrNotOwner):
		return "Only the group owner can do this"

	case errors.Is(err, service.ErrForbidden):
		return "You are not allowed to do this"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrGroupNotFound):
		return "Group not found"

	case errors.Is(err, store.ErrMembershipNotFound):
		return "Member not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrCommentNotFound):
		return "Comment not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrMembershipExists):
		return "User is already a member of this group"

	// Bad request errors
	case errors.Is(err, service.ErrSelfRemoval):
		return "Owner cannot leave their own group"

	case errors.Is(err, service.ErrAssigneeNotMember):
		return "Assignee must be a member of the group"

	case errors.Is(err, service.ErrInvalidInviteToken):
		return "Invalid invitation token"

	case errors.Is(err, service.ErrInvalidLoginState):
		return "Login session expired, please try again"

	case errors.Is(err, service.ErrEmptyPatch):
		return "Update contains no fields"

	case errors.Is(err, generation.ErrEmptyMinutes):
		return "Meeting minutes text cannot be empty"

	case errors.Is(err, domain.ErrValidation), isDomainValidationError(err):
		// Domain validation messages name the offending field and carry no
		// internal details, so they are safe to surface.
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return validationErr.Error()
		}
		return "Invalid request data"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}
