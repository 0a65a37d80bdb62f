package forum

import (
	"context"
	"slices"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
	"github.com/gus-tavo01/forums-api-sub000/internal/response"
)

// CreateComment posts a comment and bumps the topic's comment counter.
// A failed counter update is reported as a server error and the comment
// stays in place.
func (s *Service) CreateComment(ctx context.Context, requestor, forumID, topicID string, in CommentInput) response.Envelope {
	const op = "create comment"
	if env, ok := s.check(ctx, op, topicParams(forumID, topicID), in.schema()); !ok {
		return env
	}

	topic, found, err := s.topicIn(ctx, forumID, topicID)
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid topic")
	}

	comment, err := s.comments.CreateComment(ctx, models.Comment{
		TopicID: topic.ID,
		From:    requestor,
		To:      deref(in.To),
		Message: *in.Message,
	})
	if err != nil {
		if repository.IsWriteFailure(err) {
			return response.UnprocessableEntity("Cannot create the comment, please try again later")
		}
		return s.fail(op, err)
	}

	if _, err := s.topics.AdjustComments(ctx, topic.ID, 1); err != nil {
		return s.fail(op, err)
	}
	return response.Created(comment)
}

func (s *Service) ListComments(ctx context.Context, forumID, topicID string, q PageQuery) response.Envelope {
	const op = "list comments"
	if env, ok := s.check(ctx, op, topicParams(forumID, topicID), q.schema()); !ok {
		return env
	}
	_, found, err := s.topicIn(ctx, forumID, topicID)
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid topic")
	}
	comments, err := s.comments.ListComments(ctx, topicID, q.page())
	if err != nil {
		return s.fail(op, err)
	}
	return response.OK(comments)
}

// React toggles the requestor's like or dislike on a comment. A vote in one
// set clears any vote in the other.
func (s *Service) React(ctx context.Context, requestor, forumID, topicID, commentID, kind string) response.Envelope {
	const op = "react"
	if env, ok := s.check(ctx, op, commentParams(forumID, topicID, commentID), reactionSchema(kind)); !ok {
		return env
	}

	user, found, err := lookup(s.users.UserByUsername(ctx, requestor))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid request")
	}
	comment, found, err := lookup(s.comments.CommentByID(ctx, commentID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found || comment.TopicID != topicID {
		return response.NotFound("Comment is not found")
	}

	chosen, opposite := &comment.Likes, &comment.Dislikes
	if kind == reactionDislike {
		chosen, opposite = opposite, chosen
	}
	*opposite = slices.DeleteFunc(*opposite, func(id string) bool { return id == user.ID })
	if i := slices.Index(*chosen, user.ID); i >= 0 {
		*chosen = slices.Delete(*chosen, i, i+1)
	} else {
		*chosen = append(*chosen, user.ID)
	}

	updated, err := s.comments.UpdateComment(ctx, comment)
	if err != nil {
		if repository.IsWriteFailure(err) {
			return response.UnprocessableEntity("Cannot update the comment, please try again later")
		}
		return s.fail(op, err)
	}
	return response.OK(updated)
}
