package forum

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
)

func addInput(username, role string) ParticipantInput {
	return ParticipantInput{Username: ptr(username), Role: ptr(role)}
}

func TestCreateForumAddsOperator(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	forum := f.forum(t, "ann")

	assert.Equal(t, 1, forum.Participants)
	assert.Equal(t, "ann", forum.Author)
	assert.True(t, forum.IsActive)
	p, ok := f.participant(t, ann, forum.ID)
	require.True(t, ok)
	assert.Equal(t, models.RoleOperator, p.Role)
}

func TestCreateForumRollsBackWhenOperatorFails(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	f.store.faults["CreateParticipant"] = repository.ErrNotApplied

	env := f.svc.CreateForum(context.Background(), "ann", ForumInput{
		Topic: ptr("Gophers"), Description: ptr("Go"), IsPrivate: ptr(true),
	})
	assertEnvelope(t, env, 422, "Cannot create the forum operator, please try again later")

	list, err := f.store.Store.ListForums(context.Background(), models.Page{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, []string{"create forum"}, f.rollbacks.ops)
}

func TestCreateForumValidation(t *testing.T) {
	f := newFixture(t)
	env := f.svc.CreateForum(context.Background(), "ann", ForumInput{Topic: ptr("Go")})
	assert.Equal(t, 400, env.StatusCode)
	assert.Equal(t, []string{
		"Field 'description' expected to be nonEmptyString. Got: undefined",
		"Field 'isPrivate' expected to be boolean. Got: undefined",
	}, env.Fields)

	env = f.svc.CreateForum(context.Background(), "ghost", ForumInput{Topic: ptr("Go"), Description: ptr("Go"), IsPrivate: ptr(false)})
	assertEnvelope(t, env, 422, "Invalid request")
}

func TestAddParticipantIncrementsCount(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	bob := f.register(t, "bob")
	forum := f.forum(t, "ann")

	p := f.join(t, "ann", forum.ID, "bob", "Participant")
	assert.Equal(t, bob.ID, p.UserID)
	assert.Equal(t, models.RoleParticipant, p.Role)
	assert.Equal(t, 2, f.count(t, forum.ID))
	assert.Empty(t, f.rollbacks.ops)
}

func TestAddParticipantDuplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	f.register(t, "bob")
	forum := f.forum(t, "ann")
	f.join(t, "ann", forum.ID, "bob", "Viewer")

	env := f.svc.AddParticipant(context.Background(), "ann", forum.ID, addInput("bob", "Viewer"))
	assert.Equal(t, 409, env.StatusCode)
	assert.Equal(t, "Conflict", env.Message)
	assert.Equal(t, "bob is a member of this forum already", env.Error())
	assert.Equal(t, 2, f.count(t, forum.ID))
}

func TestAddParticipantValidationOrder(t *testing.T) {
	f := newFixture(t)
	env := f.svc.AddParticipant(context.Background(), "ann", "bad", ParticipantInput{})
	assert.Equal(t, 400, env.StatusCode)
	assert.Equal(t, []string{
		"Field 'forumId' expected to be uuid. Got: bad",
		"Field 'username' expected to be nonEmptyString. Got: undefined",
		"Field 'role' expected to be nonEmptyString. Got: undefined",
	}, env.Fields)
}

func TestAddParticipantPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ann")
	f.register(t, "bob")
	f.register(t, "cid")
	f.register(t, "dan")
	forum := f.forum(t, "ann")
	f.join(t, "ann", forum.ID, "bob", "Administrator")
	f.join(t, "ann", forum.ID, "cid", "Participant")

	tests := []struct {
		name      string
		requestor string
		in        ParticipantInput
		code      int
		msg       string
	}{
		{"unknown requestor", "ghost", addInput("dan", "Viewer"), 422, "Invalid request"},
		{"not a member", "dan", addInput("dan", "Viewer"), 403, "dan is not a member of this forum"},
		{"insufficient role", "cid", addInput("dan", "Viewer"), 403, "cid does not have the required role permissions"},
		{"unknown role", "ann", addInput("dan", "King"), 422, "Forum participant role: 'King' is incorrect"},
		{"transfer by non operator", "bob", addInput("dan", "Operator"), 403, "bob is not the current forum operator"},
		{"unknown participant", "bob", addInput("ghost", "Viewer"), 422, "Invalid participant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := f.svc.AddParticipant(ctx, tt.requestor, forum.ID, tt.in)
			assertEnvelope(t, env, tt.code, tt.msg)
		})
	}
	assert.Equal(t, 3, f.count(t, forum.ID))
}

func TestAddParticipantInactiveTargets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ann")
	bob := f.register(t, "bob")
	f.register(t, "cid")
	forum := f.forum(t, "ann")

	require.Equal(t, 200, f.svc.DeactivateAccount(ctx, "bob", bob.ID).StatusCode)
	env := f.svc.AddParticipant(ctx, "ann", forum.ID, addInput("bob", "Viewer"))
	assertEnvelope(t, env, 422, "Invalid participant")

	forum.IsActive = false
	_, err := f.store.Store.UpdateForum(ctx, forum)
	require.NoError(t, err)
	env = f.svc.AddParticipant(ctx, "ann", forum.ID, addInput("cid", "Viewer"))
	assertEnvelope(t, env, 422, "Invalid forum")

	// An inactive forum can still get a new operator.
	f.join(t, "ann", forum.ID, "cid", "Operator")
}

func TestOperatorTransfer(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	bob := f.register(t, "bob")
	forum := f.forum(t, "ann")

	p := f.join(t, "ann", forum.ID, "bob", "Operator")
	assert.Equal(t, models.RoleOperator, p.Role)

	old, ok := f.participant(t, ann, forum.ID)
	require.True(t, ok)
	assert.Equal(t, models.RoleAdministrator, old.Role)
	current, ok := f.participant(t, bob, forum.ID)
	require.True(t, ok)
	assert.Equal(t, models.RoleOperator, current.Role)
	assert.Equal(t, 2, f.count(t, forum.ID))
}

func TestOperatorTransferRollsBackWhenForumUpdateFails(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	bob := f.register(t, "bob")
	forum := f.forum(t, "ann")
	before, _ := f.participant(t, ann, forum.ID)
	f.store.faults["AdjustParticipants"] = repository.ErrNotApplied

	env := f.svc.AddParticipant(context.Background(), "ann", forum.ID, addInput("bob", "Operator"))
	assertEnvelope(t, env, 422, "Cannot update the forum, please try again later")

	after, ok := f.participant(t, ann, forum.ID)
	require.True(t, ok)
	assert.Equal(t, before, after)
	_, ok = f.participant(t, bob, forum.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, f.count(t, forum.ID))
	require.Equal(t, []string{"add participant"}, f.rollbacks.ops)
	assert.NoError(t, f.rollbacks.errs[0])
}

func TestOperatorTransferRollsBackWhenCreateFails(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	f.register(t, "bob")
	forum := f.forum(t, "ann")
	f.store.faults["CreateParticipant"] = repository.ErrDuplicate

	env := f.svc.AddParticipant(context.Background(), "ann", forum.ID, addInput("bob", "Operator"))
	assertEnvelope(t, env, 422, "Cannot add the participant, please try again later")

	p, _ := f.participant(t, ann, forum.ID)
	assert.Equal(t, models.RoleOperator, p.Role)
	assert.Equal(t, []string{"add participant"}, f.rollbacks.ops)
}

func TestOperatorDemoteFailureStops(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	bob := f.register(t, "bob")
	forum := f.forum(t, "ann")
	f.store.faults["UpdateParticipant"] = repository.ErrNotApplied

	env := f.svc.AddParticipant(context.Background(), "ann", forum.ID, addInput("bob", "Operator"))
	assertEnvelope(t, env, 422, "Cannot modify current operator")

	_, ok := f.participant(t, bob, forum.ID)
	assert.False(t, ok)
	p, _ := f.participant(t, ann, forum.ID)
	assert.Equal(t, models.RoleOperator, p.Role)
	assert.Empty(t, f.rollbacks.ops)
}

func TestAddParticipantUnexpectedErrorSkipsRollback(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	bob := f.register(t, "bob")
	forum := f.forum(t, "ann")
	f.store.faults["AdjustParticipants"] = errors.New("connection reset by peer")

	env := f.svc.AddParticipant(context.Background(), "ann", forum.ID, addInput("bob", "Viewer"))
	assertEnvelope(t, env, 500, "connection reset by peer")
	assert.Equal(t, "Internal_Server_Error", env.Message)

	_, ok := f.participant(t, bob, forum.ID)
	assert.True(t, ok)
	assert.Empty(t, f.rollbacks.ops)
}

func TestAddParticipantCreateFailureWithoutTransferRecordsNoRollback(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	f.register(t, "bob")
	forum := f.forum(t, "ann")
	f.store.faults["CreateParticipant"] = repository.ErrNotApplied

	env := f.svc.AddParticipant(context.Background(), "ann", forum.ID, addInput("bob", "Viewer"))
	assertEnvelope(t, env, 422, "Cannot add the participant, please try again later")

	assert.Empty(t, f.rollbacks.ops)
	for _, e := range f.hook.AllEntries() {
		assert.NotEqual(t, "rolled back", e.Message)
	}
	assert.Equal(t, 1, f.count(t, forum.ID))
}

func TestConcurrentMembershipChangesKeepCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ann")
	forum := f.forum(t, "ann")

	const n = 20
	users := make([]models.User, n)
	for i := range users {
		users[i] = f.register(t, fmt.Sprintf("user%02d", i))
	}
	f.store.readDelay = 2 * time.Millisecond

	codes := make([]int, n)
	var g errgroup.Group
	for i, u := range users {
		g.Go(func() error {
			codes[i] = f.svc.AddParticipant(ctx, "ann", forum.ID, addInput(u.Username, "Participant")).StatusCode
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, c := range codes {
		assert.Equal(t, 200, c)
	}
	rows, err := f.store.Store.ListParticipants(ctx, forum.ID, models.Page{})
	require.NoError(t, err)
	assert.Len(t, rows, n+1)
	assert.Equal(t, n+1, f.count(t, forum.ID))

	for i, u := range users[:n/2] {
		g.Go(func() error {
			codes[i] = f.svc.RemoveParticipant(ctx, u.Username, forum.ID, u.ID).StatusCode
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, c := range codes[:n/2] {
		assert.Equal(t, 200, c)
	}
	rows, err = f.store.Store.ListParticipants(ctx, forum.ID, models.Page{})
	require.NoError(t, err)
	assert.Len(t, rows, n/2+1)
	assert.Equal(t, n/2+1, f.count(t, forum.ID))
}

func TestRemoveParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ann")
	bob := f.register(t, "bob")
	cid := f.register(t, "cid")
	forum := f.forum(t, "ann")
	f.join(t, "ann", forum.ID, "bob", "Administrator")
	f.join(t, "ann", forum.ID, "cid", "Participant")

	env := f.svc.RemoveParticipant(ctx, "cid", forum.ID, bob.ID)
	assertEnvelope(t, env, 403, "cid does not have the required role permissions")

	env = f.svc.RemoveParticipant(ctx, "bob", forum.ID, cid.ID)
	require.Equal(t, 200, env.StatusCode, env.Error())
	assert.Equal(t, "cid", env.Payload)
	assert.Equal(t, 2, f.count(t, forum.ID))

	env = f.svc.RemoveParticipant(ctx, "bob", forum.ID, cid.ID)
	assertEnvelope(t, env, 404, "Participant is not found")

	// Members may always leave.
	env = f.svc.RemoveParticipant(ctx, "bob", forum.ID, bob.ID)
	require.Equal(t, 200, env.StatusCode, env.Error())
	assert.Equal(t, 1, f.count(t, forum.ID))
}

func TestRemoveOperatorForbidden(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	forum := f.forum(t, "ann")

	env := f.svc.RemoveParticipant(context.Background(), "ann", forum.ID, ann.ID)
	assert.Equal(t, 403, env.StatusCode)
	assert.Equal(t, "Forum Operator cannot be removed", env.Error())
	assert.Equal(t, 1, f.count(t, forum.ID))
}

func TestRemoveParticipantRestoresRowWhenForumUpdateFails(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	bob := f.register(t, "bob")
	forum := f.forum(t, "ann")
	before := f.join(t, "ann", forum.ID, "bob", "Participant")
	f.store.faults["AdjustParticipants"] = repository.ErrNotApplied

	env := f.svc.RemoveParticipant(context.Background(), "ann", forum.ID, bob.ID)
	assertEnvelope(t, env, 422, "Cannot update the forum, please try again later")

	after, ok := f.participant(t, bob, forum.ID)
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, 2, f.count(t, forum.ID))
	assert.Equal(t, []string{"remove participant"}, f.rollbacks.ops)
}

func TestFailedRollbackIsReported(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	bob := f.register(t, "bob")
	forum := f.forum(t, "ann")
	f.join(t, "ann", forum.ID, "bob", "Participant")
	f.store.faults["AdjustParticipants"] = repository.ErrNotApplied
	f.store.faults["CreateParticipant"] = errors.New("disk full")

	env := f.svc.RemoveParticipant(context.Background(), "ann", forum.ID, bob.ID)
	assertEnvelope(t, env, 422, "Cannot update the forum, please try again later")

	require.Len(t, f.rollbacks.errs, 1)
	assert.ErrorContains(t, f.rollbacks.errs[0], "disk full")
	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "rollback incomplete", entry.Message)
}

func TestListParticipants(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")
	f.register(t, "bob")
	forum := f.forum(t, "ann")
	f.join(t, "ann", forum.ID, "bob", "Viewer")

	env := f.svc.ListParticipants(context.Background(), forum.ID, PageQuery{Limit: ptr("1")})
	require.Equal(t, 200, env.StatusCode, env.Error())
	list := env.Payload.([]models.Participant)
	require.Len(t, list, 1)
	assert.Equal(t, "ann", list[0].Username)

	env = f.svc.ListParticipants(context.Background(), forum.ID, PageQuery{Limit: ptr("500")})
	assert.Equal(t, []string{"Field 'limit' expected to be number between 1 and 100. Got: 500"}, env.Fields)
}
