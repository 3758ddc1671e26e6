package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/service"
	"github.com/taskraft/taskraft-api/internal/store"
)

func newGroupService(t *testing.T, f *fixture) *service.GroupService {
	t.Helper()
	svc, err := service.NewGroupService(
		f.db, f.groups, f.memberships, f.tasks, f.comments, f.authz, discardLogger())
	require.NoError(t, err)
	return svc
}

func TestGroupService_CreateGroup(t *testing.T) {
	t.Parallel()

	t.Run("creates group with actor as owner", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		actor := f.state.addUser(t, "Alice", "alice@example.com")

		group, err := svc.CreateGroup(context.Background(), actor.ID, "Design Team")
		require.NoError(t, err)
		assert.Equal(t, "Design Team", group.Name)

		membership, err := f.memberships.GetByUserAndGroup(
			context.Background(), actor.ID, group.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleOwner, membership.Role)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		actor := f.state.addUser(t, "Alice", "alice@example.com")

		_, err := svc.CreateGroup(context.Background(), actor.ID, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGroupService_ListGroups(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newGroupService(t, f)
	alice := f.state.addUser(t, "Alice", "alice@example.com")
	bob := f.state.addUser(t, "Bob", "bob@example.com")
	mine := f.addGroup(t, "Mine", alice)
	f.addGroup(t, "Theirs", bob)

	groups, err := svc.ListGroups(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, mine.ID, groups[0].ID)
}

func TestGroupService_GetGroup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newGroupService(t, f)
	alice := f.state.addUser(t, "Alice", "alice@example.com")
	outsider := f.state.addUser(t, "Mallory", "mallory@example.com")
	group := f.addGroup(t, "Team", alice)

	got, err := svc.GetGroup(context.Background(), alice.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.ID)

	_, err = svc.GetGroup(context.Background(), outsider.ID, group.ID)
	assert.ErrorIs(t, err, service.ErrNotMember)
}

func TestGroupService_ListMembers(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newGroupService(t, f)
	alice := f.state.addUser(t, "Alice", "alice@example.com")
	bob := f.state.addUser(t, "Bob", "bob@example.com")
	group := f.addGroup(t, "Team", alice)
	f.addMember(t, bob, group, domain.RoleMember)

	members, err := svc.ListMembers(context.Background(), alice.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Alice", members[0].User.DisplayName)
	assert.Equal(t, "Bob", members[1].User.DisplayName)
}

func TestGroupService_RemoveMember(t *testing.T) {
	t.Parallel()

	t.Run("deletes the member's assigned tasks and their comments", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		owner := f.state.addUser(t, "Alice", "alice@example.com")
		bob := f.state.addUser(t, "Bob", "bob@example.com")
		group := f.addGroup(t, "Team", owner)
		f.addMember(t, bob, group, domain.RoleMember)

		bobTask := f.addTask(t, group, "Bob's task", bob)
		ownerTask := f.addTask(t, group, "Owner's task", owner)
		f.addComment(t, bobTask, owner, "note on bob's task")
		kept := f.addComment(t, ownerTask, bob, "bob commenting elsewhere")

		err := svc.RemoveMember(context.Background(), owner.ID, group.ID, bob.ID)
		require.NoError(t, err)

		_, err = f.memberships.GetByUserAndGroup(context.Background(), bob.ID, group.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = f.tasks.GetByID(context.Background(), bobTask.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = f.tasks.GetByID(context.Background(), ownerTask.ID)
		assert.NoError(t, err)

		// Bob's comment on a surviving task stays.
		comments, err := f.comments.ListByTask(context.Background(), ownerTask.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, kept.ID, comments[0].ID)

		orphans, err := f.comments.ListByTask(context.Background(), bobTask.ID)
		require.NoError(t, err)
		assert.Empty(t, orphans)
	})

	t.Run("does not touch the member's tasks in other groups", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		owner := f.state.addUser(t, "Alice", "alice@example.com")
		bob := f.state.addUser(t, "Bob", "bob@example.com")
		group := f.addGroup(t, "Team", owner)
		other := f.addGroup(t, "Side Project", bob)
		f.addMember(t, bob, group, domain.RoleMember)
		elsewhere := f.addTask(t, other, "Bob elsewhere", bob)

		err := svc.RemoveMember(context.Background(), owner.ID, group.ID, bob.ID)
		require.NoError(t, err)

		_, err = f.tasks.GetByID(context.Background(), elsewhere.ID)
		assert.NoError(t, err)
	})

	t.Run("only the owner may remove", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		owner := f.state.addUser(t, "Alice", "alice@example.com")
		bob := f.state.addUser(t, "Bob", "bob@example.com")
		carol := f.state.addUser(t, "Carol", "carol@example.com")
		group := f.addGroup(t, "Team", owner)
		f.addMember(t, bob, group, domain.RoleMember)
		f.addMember(t, carol, group, domain.RoleMember)

		err := svc.RemoveMember(context.Background(), bob.ID, group.ID, carol.ID)
		assert.ErrorIs(t, err, service.ErrNotOwner)
	})

	t.Run("owner cannot remove themselves", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		owner := f.state.addUser(t, "Alice", "alice@example.com")
		group := f.addGroup(t, "Team", owner)

		err := svc.RemoveMember(context.Background(), owner.ID, group.ID, owner.ID)
		assert.ErrorIs(t, err, service.ErrSelfRemoval)
	})

	t.Run("target must be a member", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		owner := f.state.addUser(t, "Alice", "alice@example.com")
		group := f.addGroup(t, "Team", owner)

		err := svc.RemoveMember(context.Background(), owner.ID, group.ID, uuid.New())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestGroupService_DeleteGroup(t *testing.T) {
	t.Parallel()

	t.Run("cascades through comments, tasks and memberships", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		owner := f.state.addUser(t, "Alice", "alice@example.com")
		bob := f.state.addUser(t, "Bob", "bob@example.com")
		group := f.addGroup(t, "Team", owner)
		other := f.addGroup(t, "Keep", owner)
		f.addMember(t, bob, group, domain.RoleMember)
		task := f.addTask(t, group, "Doomed", bob)
		f.addComment(t, task, owner, "doomed too")
		survivor := f.addTask(t, other, "Survivor", owner)

		err := svc.DeleteGroup(context.Background(), owner.ID, group.ID)
		require.NoError(t, err)

		_, err = f.groups.GetByID(context.Background(), group.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = f.tasks.GetByID(context.Background(), task.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = f.memberships.GetByUserAndGroup(context.Background(), bob.ID, group.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		comments, err := f.comments.ListByTask(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)

		// The other group is untouched.
		_, err = f.tasks.GetByID(context.Background(), survivor.ID)
		assert.NoError(t, err)
	})

	t.Run("keeps invitations as an audit trail", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		owner := f.state.addUser(t, "Alice", "alice@example.com")
		group := f.addGroup(t, "Team", owner)
		invitation, err := domain.NewInvitation(group.ID, "bob@example.com")
		require.NoError(t, err)
		require.NoError(t, f.invitations.Create(context.Background(), invitation))

		require.NoError(t, svc.DeleteGroup(context.Background(), owner.ID, group.ID))

		got, err := f.invitations.GetByToken(context.Background(), invitation.Token)
		require.NoError(t, err)
		assert.False(t, got.Accepted)
	})

	t.Run("members cannot delete", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newGroupService(t, f)
		owner := f.state.addUser(t, "Alice", "alice@example.com")
		bob := f.state.addUser(t, "Bob", "bob@example.com")
		group := f.addGroup(t, "Team", owner)
		f.addMember(t, bob, group, domain.RoleMember)

		err := svc.DeleteGroup(context.Background(), bob.ID, group.ID)
		assert.ErrorIs(t, err, service.ErrNotOwner)

		_, err = f.groups.GetByID(context.Background(), group.ID)
		assert.NoError(t, err)
	})
}
