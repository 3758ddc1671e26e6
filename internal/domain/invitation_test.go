package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvitation(t *testing.T) {
	t.Parallel()

	t.Run("mints a pending invitation with a url-safe token", func(t *testing.T) {
		t.Parallel()
		inv, err := NewInvitation(uuid.New(), "carol@example.com")
		require.NoError(t, err)
		assert.True(t, inv.IsPending())
		assert.False(t, inv.Accepted)
		// 32 random bytes, base64url without padding.
		assert.Len(t, inv.Token, 43)
		assert.NotContains(t, inv.Token, "=")
		assert.NotContains(t, inv.Token, "+")
		assert.NotContains(t, inv.Token, "/")
	})

	t.Run("tokens are unique", func(t *testing.T) {
		t.Parallel()
		a, err := NewInvitation(uuid.New(), "a@example.com")
		require.NoError(t, err)
		b, err := NewInvitation(uuid.New(), "b@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, a.Token, b.Token)
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		t.Parallel()
		_, err := NewInvitation(uuid.New(), "not-an-email")
		assert.ErrorIs(t, err, ErrInvalidEmail)

		_, err = NewInvitation(uuid.New(), "")
		assert.Error(t, err)
	})

	t.Run("rejects a nil group", func(t *testing.T) {
		t.Parallel()
		_, err := NewInvitation(uuid.Nil, "carol@example.com")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestInvitationLifecycle(t *testing.T) {
	t.Parallel()
	inv, err := NewInvitation(uuid.New(), "carol@example.com")
	require.NoError(t, err)

	assert.True(t, inv.IsPending())
	inv.Accepted = true
	assert.False(t, inv.IsPending())
}

func TestInvitationMatchesEmail(t *testing.T) {
	t.Parallel()
	inv, err := NewInvitation(uuid.New(), "carol@example.com")
	require.NoError(t, err)

	assert.True(t, inv.MatchesEmail("carol@example.com"))

	// Matching is byte-exact: no case folding, no trimming.
	assert.False(t, inv.MatchesEmail("Carol@example.com"))
	assert.False(t, inv.MatchesEmail(" carol@example.com"))
	assert.False(t, inv.MatchesEmail("dave@example.com"))
	assert.False(t, inv.MatchesEmail(""))
}
