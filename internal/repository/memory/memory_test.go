package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
)

func TestAccountsAreUniqueByUsername(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.CreateAccount(ctx, models.Account{Username: "ann", IsActive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreateDate.IsZero())

	_, err = s.CreateAccount(ctx, models.Account{Username: "ann"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := s.AccountByUsername(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.AccountByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestParticipantRestoreKeepsID(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreateParticipant(ctx, models.Participant{UserID: "u1", ForumID: "f1", Role: models.RoleViewer})
	require.NoError(t, err)

	_, err = s.CreateParticipant(ctx, models.Participant{UserID: "u1", ForumID: "f1", Role: models.RoleViewer})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, s.DeleteParticipant(ctx, p.ID))
	assert.ErrorIs(t, s.DeleteParticipant(ctx, p.ID), repository.ErrNotApplied)

	restored, err := s.CreateParticipant(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, p, restored)
}

func TestUpdateMissingRowIsNotApplied(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.UpdateForum(ctx, models.Forum{ID: "nope"})
	assert.ErrorIs(t, err, repository.ErrNotApplied)
	_, err = s.UpdateParticipant(ctx, models.Participant{ID: "nope"})
	assert.ErrorIs(t, err, repository.ErrNotApplied)
}

func TestAdjustCounters(t *testing.T) {
	ctx := context.Background()
	s := New()
	f, err := s.CreateForum(ctx, models.Forum{Topic: "f", IsActive: true, Participants: 1})
	require.NoError(t, err)
	topic, err := s.CreateTopic(ctx, models.Topic{ForumID: f.ID})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.AdjustParticipants(ctx, f.ID, 1)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.AdjustComments(ctx, topic.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.ForumByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 51, got.Participants)
	gotTopic, err := s.TopicByID(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, gotTopic.Comments)

	_, err = s.AdjustParticipants(ctx, f.ID, -52)
	assert.ErrorIs(t, err, repository.ErrNotApplied)
	_, err = s.AdjustComments(ctx, "nope", 1)
	assert.ErrorIs(t, err, repository.ErrNotApplied)
}

func TestListForumsPaginatesActiveOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 5; i++ {
		_, err := s.CreateForum(ctx, models.Forum{Topic: "f", IsActive: i != 0})
		require.NoError(t, err)
	}

	all, err := s.ListForums(ctx, models.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	second, err := s.ListForums(ctx, models.Page{Number: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, second, 1)

	empty, err := s.ListForums(ctx, models.Page{Number: 9, Limit: 3})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCommentsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()
	c, err := s.CreateComment(ctx, models.Comment{TopicID: "t1", Message: "hi"})
	require.NoError(t, err)

	c.Likes = append(c.Likes, "u1")
	stored, err := s.CommentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Likes)
}
