package forum

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gus-tavo01/forums-api-sub000/internal/auth"
	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository/memory"
	"github.com/gus-tavo01/forums-api-sub000/internal/response"
)

// faultyStore fails the named methods with the configured error.
// readDelay widens the window between reading a forum or topic and
// writing its counter.
type faultyStore struct {
	*memory.Store
	faults    map[string]error
	readDelay time.Duration
}

func (f *faultyStore) fault(method string) error { return f.faults[method] }

func (f *faultyStore) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	if err := f.fault("CreateAccount"); err != nil {
		return models.Account{}, err
	}
	return f.Store.CreateAccount(ctx, a)
}

func (f *faultyStore) AccountByUsername(ctx context.Context, username string) (models.Account, error) {
	if err := f.fault("AccountByUsername"); err != nil {
		return models.Account{}, err
	}
	return f.Store.AccountByUsername(ctx, username)
}

func (f *faultyStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if err := f.fault("CreateUser"); err != nil {
		return models.User{}, err
	}
	return f.Store.CreateUser(ctx, u)
}

func (f *faultyStore) ForumByID(ctx context.Context, id string) (models.Forum, error) {
	time.Sleep(f.readDelay)
	return f.Store.ForumByID(ctx, id)
}

func (f *faultyStore) AdjustParticipants(ctx context.Context, forumID string, delta int) (models.Forum, error) {
	if err := f.fault("AdjustParticipants"); err != nil {
		return models.Forum{}, err
	}
	return f.Store.AdjustParticipants(ctx, forumID, delta)
}

func (f *faultyStore) DeleteForum(ctx context.Context, id string) error {
	if err := f.fault("DeleteForum"); err != nil {
		return err
	}
	return f.Store.DeleteForum(ctx, id)
}

func (f *faultyStore) TopicByID(ctx context.Context, id string) (models.Topic, error) {
	time.Sleep(f.readDelay)
	return f.Store.TopicByID(ctx, id)
}

func (f *faultyStore) AdjustComments(ctx context.Context, topicID string, delta int) (models.Topic, error) {
	if err := f.fault("AdjustComments"); err != nil {
		return models.Topic{}, err
	}
	return f.Store.AdjustComments(ctx, topicID, delta)
}

func (f *faultyStore) CreateParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	if err := f.fault("CreateParticipant"); err != nil {
		return models.Participant{}, err
	}
	return f.Store.CreateParticipant(ctx, p)
}

func (f *faultyStore) UpdateParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	if err := f.fault("UpdateParticipant"); err != nil {
		return models.Participant{}, err
	}
	return f.Store.UpdateParticipant(ctx, p)
}

func (f *faultyStore) DeleteParticipant(ctx context.Context, id string) error {
	if err := f.fault("DeleteParticipant"); err != nil {
		return err
	}
	return f.Store.DeleteParticipant(ctx, id)
}

type rollbackRecorder struct {
	ops  []string
	errs []error
}

func (r *rollbackRecorder) RecordRollback(op string, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

type fixture struct {
	svc       *Service
	store     *faultyStore
	rollbacks *rollbackRecorder
	hook      *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &faultyStore{Store: memory.New(), faults: map[string]error{}}
	rec := &rollbackRecorder{}
	logger, hook := test.NewNullLogger()
	svc := NewService(Deps{
		Store:     store,
		Hasher:    auth.Hasher{Cost: 4},
		Tokens:    auth.NewTokens("secret", time.Hour),
		Logger:    logger,
		Rollbacks: rec,
	})
	return &fixture{svc: svc, store: store, rollbacks: rec, hook: hook}
}

func ptr[T any](v T) *T { return &v }

func registration(username string) RegisterInput {
	return RegisterInput{
		Username:    ptr(username),
		Password:    ptr("password1"),
		Email:       ptr(username + "@example.com"),
		DateOfBirth: ptr("1990-01-02"),
	}
}

func (f *fixture) register(t *testing.T, username string) models.User {
	t.Helper()
	env := f.svc.Register(context.Background(), registration(username))
	require.Equal(t, 201, env.StatusCode, env.Error())
	return env.Payload.(models.User)
}

func (f *fixture) forum(t *testing.T, author string) models.Forum {
	t.Helper()
	env := f.svc.CreateForum(context.Background(), author, ForumInput{
		Topic:       ptr("Gophers"),
		Description: ptr("All things Go"),
		IsPrivate:   ptr(false),
	})
	require.Equal(t, 201, env.StatusCode, env.Error())
	return env.Payload.(models.Forum)
}

func (f *fixture) join(t *testing.T, requestor, forumID, username, role string) models.Participant {
	t.Helper()
	env := f.svc.AddParticipant(context.Background(), requestor, forumID, ParticipantInput{Username: ptr(username), Role: ptr(role)})
	require.Equal(t, 200, env.StatusCode, env.Error())
	return env.Payload.(models.Participant)
}

func (f *fixture) participant(t *testing.T, user models.User, forumID string) (models.Participant, bool) {
	t.Helper()
	p, err := f.store.Store.ParticipantByUserAndForum(context.Background(), user.ID, forumID)
	return p, err == nil
}

func (f *fixture) count(t *testing.T, forumID string) int {
	t.Helper()
	fo, err := f.store.Store.ForumByID(context.Background(), forumID)
	require.NoError(t, err)
	return fo.Participants
}

func assertEnvelope(t *testing.T, env response.Envelope, code int, msg string) {
	t.Helper()
	assert.Equal(t, code, env.StatusCode)
	assert.Equal(t, msg, env.Error())
}
