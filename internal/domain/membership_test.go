package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMembership(t *testing.T) {
	t.Parallel()

	t.Run("valid membership", func(t *testing.T) {
		t.Parallel()
		m, err := NewMembership(uuid.New(), uuid.New(), RoleMember)
		require.NoError(t, err)
		assert.Equal(t, RoleMember, m.Role)
		assert.False(t, m.IsOwner())
	})

	t.Run("owner role", func(t *testing.T) {
		t.Parallel()
		m, err := NewMembership(uuid.New(), uuid.New(), RoleOwner)
		require.NoError(t, err)
		assert.True(t, m.IsOwner())
	})

	t.Run("invalid role", func(t *testing.T) {
		t.Parallel()
		_, err := NewMembership(uuid.New(), uuid.New(), Role("admin"))
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("nil ids", func(t *testing.T) {
		t.Parallel()
		_, err := NewMembership(uuid.Nil, uuid.New(), RoleMember)
		assert.ErrorIs(t, err, ErrInvalidID)
		_, err = NewMembership(uuid.New(), uuid.Nil, RoleMember)
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestRoleIsValid(t *testing.T) {
	t.Parallel()
	assert.True(t, RoleOwner.IsValid())
	assert.True(t, RoleMember.IsValid())
	assert.False(t, Role("admin").IsValid())
	assert.False(t, Role("").IsValid())
}
