package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("sub-123", "Alice", "alice@example.com", "https://img/a.png")
		require.NoError(t, err)
		assert.Equal(t, "sub-123", user.ExternalID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("display name and avatar are optional", func(t *testing.T) {
		t.Parallel()
		_, err := NewUser("sub-123", "", "alice@example.com", "")
		assert.NoError(t, err)
	})

	t.Run("external id is required", func(t *testing.T) {
		t.Parallel()
		_, err := NewUser("", "Alice", "alice@example.com", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("email format", func(t *testing.T) {
		t.Parallel()
		bad := []string{"", "plain", "@example.com", "alice@", "alice@nodot", "alice@dot."}
		for _, email := range bad {
			_, err := NewUser("sub", "Alice", email, "")
			assert.Error(t, err, "email %q should be rejected", email)
		}
		good := []string{"alice@example.com", "a@b.co", "first.last@sub.example.org"}
		for _, email := range good {
			_, err := NewUser("sub", "Alice", email, "")
			assert.NoError(t, err, "email %q should be accepted", email)
		}
	})
}

func TestProject(t *testing.T) {
	t.Parallel()
	user, err := NewUser("sub-123", "Alice", "alice@example.com", "https://img/a.png")
	require.NoError(t, err)

	projection := user.Project()
	assert.Equal(t, user.ID, projection.ID)
	assert.Equal(t, "Alice", projection.DisplayName)
	assert.Equal(t, "https://img/a.png", projection.AvatarURL)
}

func TestIdentityFromUser(t *testing.T) {
	t.Parallel()
	user, err := NewUser("sub-123", "Alice", "alice@example.com", "https://img/a.png")
	require.NoError(t, err)

	identity := IdentityFromUser(user)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "sub-123", identity.ExternalID)
	assert.Equal(t, "alice@example.com", identity.Email)
}
