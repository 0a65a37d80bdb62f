package forum

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
	"github.com/gus-tavo01/forums-api-sub000/internal/response"
	"github.com/gus-tavo01/forums-api-sub000/internal/saga"
)

// CreateForum creates a forum owned by the requestor, who becomes its
// operator. The forum is deleted again if the operator row cannot be added.
func (s *Service) CreateForum(ctx context.Context, requestor string, in ForumInput) response.Envelope {
	const op = "create forum"
	if env, ok := s.check(ctx, op, in.schema()); !ok {
		return env
	}

	user, found, err := lookup(s.users.UserByUsername(ctx, requestor))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid request")
	}

	now := s.now()
	forum, err := s.forums.CreateForum(ctx, models.Forum{
		Topic:        *in.Topic,
		Description:  *in.Description,
		Author:       user.Username,
		IsPrivate:    *in.IsPrivate,
		IsActive:     true,
		Participants: 1,
		LastActivity: now,
	})
	if err != nil {
		if repository.IsWriteFailure(err) {
			return response.UnprocessableEntity("Cannot create the forum, please try again later")
		}
		return s.fail(op, err)
	}
	var undo saga.Stack
	undo.Push("delete forum", func(ctx context.Context) error {
		return s.forums.DeleteForum(ctx, forum.ID)
	})

	_, err = s.participants.CreateParticipant(ctx, models.Participant{
		Username:     user.Username,
		UserID:       user.ID,
		ForumID:      forum.ID,
		Role:         models.RoleOperator,
		Avatar:       user.Avatar,
		LastActivity: now,
	})
	if err != nil {
		if repository.IsWriteFailure(err) {
			s.rollback(ctx, op, &undo)
			return response.UnprocessableEntity("Cannot create the forum operator, please try again later")
		}
		return s.fail(op, err)
	}
	undo.Forget()

	s.log.WithFields(logrus.Fields{"forum": forum.ID, "author": user.Username}).Info("forum created")
	return response.Created(forum)
}

// ListForums pages through active forums, most recent activity first.
func (s *Service) ListForums(ctx context.Context, q PageQuery) response.Envelope {
	const op = "list forums"
	if env, ok := s.check(ctx, op, q.schema()); !ok {
		return env
	}
	forums, err := s.forums.ListForums(ctx, q.page())
	if err != nil {
		return s.fail(op, err)
	}
	return response.OK(forums)
}

func (s *Service) GetForum(ctx context.Context, forumID string) response.Envelope {
	const op = "get forum"
	if env, ok := s.check(ctx, op, forumParams(forumID)); !ok {
		return env
	}
	forum, found, err := lookup(s.forums.ForumByID(ctx, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.NotFound("Forum is not found")
	}
	return response.OK(forum)
}
