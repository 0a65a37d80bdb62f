package forum

import (
	"context"

	"github.com/gus-tavo01/forums-api-sub000/internal/response"
)

func (s *Service) ListUsers(ctx context.Context, q PageQuery) response.Envelope {
	const op = "list users"
	if env, ok := s.check(ctx, op, q.schema()); !ok {
		return env
	}
	users, err := s.users.ListUsers(ctx, q.page())
	if err != nil {
		return s.fail(op, err)
	}
	return response.OK(users)
}

func (s *Service) GetUser(ctx context.Context, userID string) response.Envelope {
	const op = "get user"
	if env, ok := s.check(ctx, op, userParams(userID)); !ok {
		return env
	}
	user, found, err := lookup(s.users.UserByID(ctx, userID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.NotFound("User is not found")
	}
	return response.OK(user)
}
