package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/platform/mailer"
	"github.com/taskraft/taskraft-api/internal/service"
	"github.com/taskraft/taskraft-api/internal/store"
)

// stubDriver is a database/sql driver that supports only transaction
// begin/commit/rollback. The in-memory fakes ignore the *sql.Tx they are
// handed, so the services' transaction orchestration can run without a
// database.
type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) { return &stubConn{}, nil }

type stubConn struct{}

func (*stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("stub driver does not support statements")
}
func (*stubConn) Close() error              { return nil }
func (*stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("servicetest", stubDriver{})
}

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("servicetest", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// stateDB is the shared backing state for the in-memory fake stores.
type stateDB struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*domain.User
	groups      map[uuid.UUID]*domain.Group
	memberships []*domain.Membership
	tasks       []*domain.Task
	comments    []*domain.Comment
	invitations map[string]*domain.Invitation
	loginStates map[string]*store.LoginState
}

func newStateDB() *stateDB {
	return &stateDB{
		users:       make(map[uuid.UUID]*domain.User),
		groups:      make(map[uuid.UUID]*domain.Group),
		invitations: make(map[string]*domain.Invitation),
		loginStates: make(map[string]*store.LoginState),
	}
}

func (s *stateDB) addUser(t *testing.T, displayName, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(uuid.New().String(), displayName, email, "")
	require.NoError(t, err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return user
}

func (s *stateDB) membershipFor(userID, groupID uuid.UUID) *domain.Membership {
	for _, m := range s.memberships {
		if m.UserID == userID && m.GroupID == groupID {
			return m
		}
	}
	return nil
}

func (s *stateDB) projectionFor(userID uuid.UUID) domain.MemberProjection {
	if u, ok := s.users[userID]; ok {
		return u.Project()
	}
	return domain.MemberProjection{ID: userID}
}

// fakeUserStore implements store.UserStore.
type fakeUserStore struct{ state *stateDB }

var _ store.UserStore = (*fakeUserStore)(nil)

func (f *fakeUserStore) UpsertByExternalID(
	ctx context.Context,
	user *domain.User,
) (*domain.User, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for _, existing := range f.state.users {
		if existing.ExternalID == user.ExternalID {
			existing.DisplayName = user.DisplayName
			existing.Email = user.Email
			existing.AvatarURL = user.AvatarURL
			return existing, nil
		}
	}
	f.state.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if u, ok := f.state.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for _, u := range f.state.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return f }

// fakeGroupStore implements store.GroupStore.
type fakeGroupStore struct{ state *stateDB }

var _ store.GroupStore = (*fakeGroupStore)(nil)

func (f *fakeGroupStore) Create(ctx context.Context, group *domain.Group) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.groups[group.ID] = group
	return nil
}

func (f *fakeGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if g, ok := f.state.groups[id]; ok {
		return g, nil
	}
	return nil, store.ErrGroupNotFound
}

func (f *fakeGroupStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Group, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	groups := make([]*domain.Group, 0)
	for _, m := range f.state.memberships {
		if m.UserID == userID {
			if g, ok := f.state.groups[m.GroupID]; ok {
				groups = append(groups, g)
			}
		}
	}
	return groups, nil
}

func (f *fakeGroupStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if _, ok := f.state.groups[id]; !ok {
		return store.ErrGroupNotFound
	}
	delete(f.state.groups, id)
	return nil
}

func (f *fakeGroupStore) WithTx(tx *sql.Tx) store.GroupStore { return f }

// fakeMembershipStore implements store.MembershipStore.
type fakeMembershipStore struct{ state *stateDB }

var _ store.MembershipStore = (*fakeMembershipStore)(nil)

func (f *fakeMembershipStore) Create(ctx context.Context, membership *domain.Membership) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if f.state.membershipFor(membership.UserID, membership.GroupID) != nil {
		return store.ErrMembershipExists
	}
	if _, ok := f.state.groups[membership.GroupID]; !ok {
		return store.ErrInvalidEntity
	}
	if _, ok := f.state.users[membership.UserID]; !ok {
		return store.ErrInvalidEntity
	}
	f.state.memberships = append(f.state.memberships, membership)
	return nil
}

func (f *fakeMembershipStore) GetByUserAndGroup(
	ctx context.Context,
	userID, groupID uuid.UUID,
) (*domain.Membership, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if m := f.state.membershipFor(userID, groupID); m != nil {
		return m, nil
	}
	return nil, store.ErrMembershipNotFound
}

func (f *fakeMembershipStore) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*domain.Member, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	members := make([]*domain.Member, 0)
	for _, m := range f.state.memberships {
		if m.GroupID == groupID {
			members = append(members, &domain.Member{
				Membership: *m,
				User:       f.state.projectionFor(m.UserID),
			})
		}
	}
	return members, nil
}

func (f *fakeMembershipStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for i, m := range f.state.memberships {
		if m.ID == id {
			f.state.memberships = append(f.state.memberships[:i], f.state.memberships[i+1:]...)
			return nil
		}
	}
	return store.ErrMembershipNotFound
}

func (f *fakeMembershipStore) DeleteByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) (int64, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	kept := f.state.memberships[:0]
	var deleted int64
	for _, m := range f.state.memberships {
		if m.GroupID == groupID {
			deleted++
		} else {
			kept = append(kept, m)
		}
	}
	f.state.memberships = kept
	return deleted, nil
}

func (f *fakeMembershipStore) WithTx(tx *sql.Tx) store.MembershipStore { return f }

// fakeTaskStore implements store.TaskStore.
type fakeTaskStore struct{ state *stateDB }

var _ store.TaskStore = (*fakeTaskStore)(nil)

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if _, ok := f.state.groups[task.GroupID]; !ok {
		return store.ErrInvalidEntity
	}
	if _, ok := f.state.users[task.AssigneeID]; !ok {
		return store.ErrInvalidEntity
	}
	f.state.tasks = append(f.state.tasks, task)
	return nil
}

func (f *fakeTaskStore) CreateMultiple(ctx context.Context, tasks []*domain.Task) error {
	for _, task := range tasks {
		if err := f.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for _, task := range f.state.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (f *fakeTaskStore) GetDetail(ctx context.Context, id uuid.UUID) (*domain.TaskDetail, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for _, task := range f.state.tasks {
		if task.ID == id {
			return &domain.TaskDetail{
				Task:     *task,
				Assignee: f.state.projectionFor(task.AssigneeID),
			}, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (f *fakeTaskStore) List(
	ctx context.Context,
	groupID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.TaskDetail, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	details := make([]*domain.TaskDetail, 0)
	for _, task := range f.state.tasks {
		if task.GroupID != groupID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		if filter.AssigneeID != nil && task.AssigneeID != *filter.AssigneeID {
			continue
		}
		details = append(details, &domain.TaskDetail{
			Task:     *task,
			Assignee: f.state.projectionFor(task.AssigneeID),
		})
	}
	return details, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for i, existing := range f.state.tasks {
		if existing.ID == task.ID {
			f.state.tasks[i] = task
			return nil
		}
	}
	return store.ErrTaskNotFound
}

func (f *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for i, task := range f.state.tasks {
		if task.ID == id {
			f.state.tasks = append(f.state.tasks[:i], f.state.tasks[i+1:]...)
			return nil
		}
	}
	return store.ErrTaskNotFound
}

func (f *fakeTaskStore) DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	kept := f.state.tasks[:0]
	var deleted int64
	for _, task := range f.state.tasks {
		if task.GroupID == groupID {
			deleted++
		} else {
			kept = append(kept, task)
		}
	}
	f.state.tasks = kept
	return deleted, nil
}

func (f *fakeTaskStore) DeleteByGroupAssignee(
	ctx context.Context,
	groupID, assigneeID uuid.UUID,
) (int64, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	kept := f.state.tasks[:0]
	var deleted int64
	for _, task := range f.state.tasks {
		if task.GroupID == groupID && task.AssigneeID == assigneeID {
			deleted++
		} else {
			kept = append(kept, task)
		}
	}
	f.state.tasks = kept
	return deleted, nil
}

func (f *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return f }

// fakeCommentStore implements store.CommentStore.
type fakeCommentStore struct{ state *stateDB }

var _ store.CommentStore = (*fakeCommentStore)(nil)

func (f *fakeCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.comments = append(f.state.comments, comment)
	return nil
}

func (f *fakeCommentStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.CommentDetail, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	details := make([]*domain.CommentDetail, 0)
	for _, c := range f.state.comments {
		if c.TaskID == taskID {
			details = append(details, &domain.CommentDetail{
				Comment: *c,
				Author:  f.state.projectionFor(c.AuthorID),
			})
		}
	}
	return details, nil
}

func (f *fakeCommentStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	return f.deleteWhere(func(c *domain.Comment) bool { return c.TaskID == taskID }), nil
}

func (f *fakeCommentStore) DeleteByGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	taskGroups := f.taskGroupIndex()
	return f.deleteWhere(func(c *domain.Comment) bool {
		return taskGroups[c.TaskID] == groupID
	}), nil
}

func (f *fakeCommentStore) DeleteByGroupAssignee(
	ctx context.Context,
	groupID, assigneeID uuid.UUID,
) (int64, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	assigned := make(map[uuid.UUID]bool)
	for _, task := range f.state.tasks {
		if task.GroupID == groupID && task.AssigneeID == assigneeID {
			assigned[task.ID] = true
		}
	}
	return f.deleteWhere(func(c *domain.Comment) bool { return assigned[c.TaskID] }), nil
}

func (f *fakeCommentStore) taskGroupIndex() map[uuid.UUID]uuid.UUID {
	index := make(map[uuid.UUID]uuid.UUID)
	for _, task := range f.state.tasks {
		index[task.ID] = task.GroupID
	}
	return index
}

func (f *fakeCommentStore) deleteWhere(match func(*domain.Comment) bool) int64 {
	kept := f.state.comments[:0]
	var deleted int64
	for _, c := range f.state.comments {
		if match(c) {
			deleted++
		} else {
			kept = append(kept, c)
		}
	}
	f.state.comments = kept
	return deleted
}

func (f *fakeCommentStore) WithTx(tx *sql.Tx) store.CommentStore { return f }

// fakeInvitationStore implements store.InvitationStore. The beforeAccept
// hook lets tests interleave a concurrent redeemer between the service's
// pending pre-check and the accept transition.
type fakeInvitationStore struct {
	state        *stateDB
	beforeAccept func()
}

var _ store.InvitationStore = (*fakeInvitationStore)(nil)

func (f *fakeInvitationStore) Create(ctx context.Context, invitation *domain.Invitation) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.invitations[invitation.Token] = invitation
	return nil
}

func (f *fakeInvitationStore) GetByToken(
	ctx context.Context,
	token string,
) (*domain.Invitation, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if inv, ok := f.state.invitations[token]; ok {
		snapshot := *inv
		return &snapshot, nil
	}
	return nil, store.ErrInvitationNotFound
}

func (f *fakeInvitationStore) Accept(ctx context.Context, token string) (bool, error) {
	if f.beforeAccept != nil {
		f.beforeAccept()
	}
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	inv, ok := f.state.invitations[token]
	if !ok || inv.Accepted {
		return false, nil
	}
	inv.Accepted = true
	return true, nil
}

func (f *fakeInvitationStore) WithTx(tx *sql.Tx) store.InvitationStore { return f }

// fakeLoginStateStore implements store.LoginStateStore.
type fakeLoginStateStore struct{ state *stateDB }

var _ store.LoginStateStore = (*fakeLoginStateStore)(nil)

func (f *fakeLoginStateStore) Save(ctx context.Context, loginState *store.LoginState) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.loginStates[loginState.State] = loginState
	return nil
}

func (f *fakeLoginStateStore) Consume(
	ctx context.Context,
	stateValue string,
) (*store.LoginState, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if ls, ok := f.state.loginStates[stateValue]; ok {
		delete(f.state.loginStates, stateValue)
		return ls, nil
	}
	return nil, store.ErrStateNotFound
}

func (f *fakeLoginStateStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeLoginStateStore) WithTx(tx *sql.Tx) store.LoginStateStore { return f }

// stubGenerator implements generation.Generator with canned output.
type stubGenerator struct {
	drafts []*domain.TaskDraft
	err    error
}

func (g *stubGenerator) GenerateDrafts(
	ctx context.Context,
	minutesText string,
) ([]*domain.TaskDraft, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.drafts, nil
}

// recordingMailer implements mailer.Mailer and captures sent emails.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []mailer.Email
	sendErr error
}

var _ mailer.Mailer = (*recordingMailer)(nil)

func (m *recordingMailer) Send(ctx context.Context, email mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, email)
	return nil
}

// fixture bundles the fakes and the authorizer that the services under
// test share.
type fixture struct {
	db          *sql.DB
	state       *stateDB
	users       *fakeUserStore
	groups      *fakeGroupStore
	memberships *fakeMembershipStore
	tasks       *fakeTaskStore
	comments    *fakeCommentStore
	invitations *fakeInvitationStore
	loginStates *fakeLoginStateStore
	authz       *service.Authorizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	state := newStateDB()
	memberships := &fakeMembershipStore{state: state}
	authz, err := service.NewAuthorizer(memberships)
	require.NoError(t, err)
	return &fixture{
		db:          newStubDB(t),
		state:       state,
		users:       &fakeUserStore{state: state},
		groups:      &fakeGroupStore{state: state},
		memberships: memberships,
		tasks:       &fakeTaskStore{state: state},
		comments:    &fakeCommentStore{state: state},
		invitations: &fakeInvitationStore{state: state},
		loginStates: &fakeLoginStateStore{state: state},
		authz:       authz,
	}
}

// addGroup seeds a group with the given owner, bypassing the services.
func (f *fixture) addGroup(t *testing.T, name string, owner *domain.User) *domain.Group {
	t.Helper()
	group, err := domain.NewGroup(name)
	require.NoError(t, err)
	f.state.mu.Lock()
	f.state.groups[group.ID] = group
	f.state.mu.Unlock()
	f.addMember(t, owner, group, domain.RoleOwner)
	return group
}

func (f *fixture) addMember(
	t *testing.T,
	user *domain.User,
	group *domain.Group,
	role domain.Role,
) *domain.Membership {
	t.Helper()
	membership, err := domain.NewMembership(user.ID, group.ID, role)
	require.NoError(t, err)
	f.state.mu.Lock()
	f.state.memberships = append(f.state.memberships, membership)
	f.state.mu.Unlock()
	return membership
}

func (f *fixture) addTask(
	t *testing.T,
	group *domain.Group,
	title string,
	assignee *domain.User,
) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(
		group.ID, title, "seeded for test", nil,
		domain.PriorityMiddle, domain.StatusNotStarted, assignee.ID)
	require.NoError(t, err)
	f.state.mu.Lock()
	f.state.tasks = append(f.state.tasks, task)
	f.state.mu.Unlock()
	return task
}

func (f *fixture) addComment(
	t *testing.T,
	task *domain.Task,
	author *domain.User,
	contents string,
) *domain.Comment {
	t.Helper()
	comment, err := domain.NewComment(task.ID, author.ID, contents)
	require.NoError(t, err)
	f.state.mu.Lock()
	f.state.comments = append(f.state.comments, comment)
	f.state.mu.Unlock()
	return comment
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
