package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsWrapValidation(t *testing.T) {
	t.Parallel()

	// Every specific sentinel must match the broad class too, so callers
	// can check errors.Is(err, ErrValidation) without knowing which rule
	// fired.
	sentinels := []error{
		ErrInvalidID,
		ErrInvalidEmail,
		ErrEmptyContent,
		ErrInvalidRole,
		ErrInvalidPriority,
		ErrInvalidStatus,
	}
	for _, sentinel := range sentinels {
		assert.ErrorIs(t, sentinel, ErrValidation, sentinel.Error())
	}
}

func TestValidationErrorChain(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the broad class", func(t *testing.T) {
		err := NewValidationError("title", "cannot be empty", nil)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "validation failed for title: cannot be empty", err.Error())
	})

	t.Run("specific sentinel keeps both matches", func(t *testing.T) {
		err := NewValidationError("priority", "unknown value", ErrInvalidPriority)
		assert.ErrorIs(t, err, ErrInvalidPriority)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("field is recoverable via As", func(t *testing.T) {
		var validationErr *ValidationError
		err := NewValidationError("name", "too long", nil)
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "name", validationErr.Field)
	})
}
