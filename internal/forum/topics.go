package forum

import (
	"context"
	"fmt"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
	"github.com/gus-tavo01/forums-api-sub000/internal/response"
)

// CreateTopic opens a topic in a forum. Only the forum author may do so.
func (s *Service) CreateTopic(ctx context.Context, requestor, forumID string, in TopicInput) response.Envelope {
	const op = "create topic"
	if env, ok := s.check(ctx, op, forumParams(forumID), in.schema()); !ok {
		return env
	}

	forum, found, err := lookup(s.forums.ForumByID(ctx, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid forum")
	}
	if forum.Author != requestor {
		return response.Forbidden(fmt.Sprintf("%s is not the author of this forum", requestor))
	}

	topic, err := s.topics.CreateTopic(ctx, models.Topic{
		Name:    *in.Name,
		Content: *in.Content,
		ForumID: forum.ID,
	})
	if err != nil {
		if repository.IsWriteFailure(err) {
			return response.UnprocessableEntity("Cannot create the topic, please try again later")
		}
		return s.fail(op, err)
	}
	return response.Created(topic)
}

func (s *Service) ListTopics(ctx context.Context, forumID string, q PageQuery) response.Envelope {
	const op = "list topics"
	if env, ok := s.check(ctx, op, forumParams(forumID), q.schema()); !ok {
		return env
	}
	_, found, err := lookup(s.forums.ForumByID(ctx, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid forum")
	}
	topics, err := s.topics.ListTopics(ctx, forumID, q.page())
	if err != nil {
		return s.fail(op, err)
	}
	return response.OK(topics)
}

// topicIn resolves a topic and checks it belongs to forumID.
func (s *Service) topicIn(ctx context.Context, forumID, topicID string) (models.Topic, bool, error) {
	topic, found, err := lookup(s.topics.TopicByID(ctx, topicID))
	if err != nil || !found {
		return topic, false, err
	}
	return topic, topic.ForumID == forumID, nil
}

func (s *Service) GetTopic(ctx context.Context, forumID, topicID string) response.Envelope {
	const op = "get topic"
	if env, ok := s.check(ctx, op, topicParams(forumID, topicID)); !ok {
		return env
	}
	topic, found, err := s.topicIn(ctx, forumID, topicID)
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.NotFound("Topic is not found")
	}
	return response.OK(topic)
}

// DeleteTopic removes a topic. Only the forum author may do so.
func (s *Service) DeleteTopic(ctx context.Context, requestor, forumID, topicID string) response.Envelope {
	const op = "delete topic"
	if env, ok := s.check(ctx, op, topicParams(forumID, topicID)); !ok {
		return env
	}

	topic, found, err := s.topicIn(ctx, forumID, topicID)
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.NotFound("Topic is not found")
	}
	forum, found, err := lookup(s.forums.ForumByID(ctx, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid forum")
	}
	if forum.Author != requestor {
		return response.Forbidden(fmt.Sprintf("%s is not the author of this forum", requestor))
	}

	if err := s.topics.DeleteTopic(ctx, topic.ID); err != nil {
		if repository.IsWriteFailure(err) {
			return response.UnprocessableEntity("Cannot delete the topic, please try again later")
		}
		return s.fail(op, err)
	}
	return response.OK(topic.ID)
}
