package forum

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
	"github.com/gus-tavo01/forums-api-sub000/internal/response"
	"github.com/gus-tavo01/forums-api-sub000/internal/saga"
)

// member resolves the requestor's participant row for forumID. A non-nil
// envelope ends the request.
func (s *Service) member(ctx context.Context, op, requestor, forumID string) (models.Participant, *response.Envelope) {
	fail := func(env response.Envelope) (models.Participant, *response.Envelope) {
		return models.Participant{}, &env
	}
	user, found, err := lookup(s.users.UserByUsername(ctx, requestor))
	if err != nil {
		return fail(s.fail(op, err))
	}
	if !found {
		return fail(response.UnprocessableEntity("Invalid request"))
	}
	p, found, err := lookup(s.participants.ParticipantByUserAndForum(ctx, user.ID, forumID))
	if err != nil {
		return fail(s.fail(op, err))
	}
	if !found {
		return fail(response.Forbidden(fmt.Sprintf("%s is not a member of this forum", requestor)))
	}
	return p, nil
}

// activeAccount reports whether username has an account that may act.
func (s *Service) activeAccount(ctx context.Context, username string) (bool, error) {
	account, found, err := lookup(s.accounts.AccountByUsername(ctx, username))
	if err != nil || !found {
		return false, err
	}
	return account.IsActive, nil
}

// AddParticipant adds a user to a forum. Requesting the Operator role
// transfers operatorship: the requestor is demoted to Administrator only
// if the new operator is fully added.
func (s *Service) AddParticipant(ctx context.Context, requestor, forumID string, in ParticipantInput) response.Envelope {
	const op = "add participant"
	if env, ok := s.check(ctx, op, forumParams(forumID), in.schema()); !ok {
		return env
	}

	caller, env := s.member(ctx, op, requestor, forumID)
	if env != nil {
		return *env
	}
	if !caller.Role.CanManageParticipants() {
		return response.Forbidden(fmt.Sprintf("%s does not have the required role permissions", requestor))
	}
	role, ok := models.ParseRole(*in.Role)
	if !ok {
		return response.UnprocessableEntity(fmt.Sprintf("Forum participant role: '%s' is incorrect", *in.Role))
	}
	transfer := role == models.RoleOperator
	if transfer && caller.Role != models.RoleOperator {
		return response.Forbidden(fmt.Sprintf("%s is not the current forum operator", requestor))
	}

	username := *in.Username
	active, err := s.activeAccount(ctx, username)
	if err != nil {
		return s.fail(op, err)
	}
	if !active {
		return response.UnprocessableEntity("Invalid participant")
	}
	target, found, err := lookup(s.users.UserByUsername(ctx, username))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid participant")
	}
	_, exists, err := lookup(s.participants.ParticipantByUserAndForum(ctx, target.ID, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if exists {
		return response.Conflict(fmt.Sprintf("%s is a member of this forum already", username))
	}
	forum, found, err := lookup(s.forums.ForumByID(ctx, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found || (!forum.IsActive && !transfer) {
		return response.UnprocessableEntity("Invalid forum")
	}

	var undo saga.Stack
	if transfer {
		demoted := caller
		demoted.Role = models.RoleAdministrator
		if _, err := s.participants.UpdateParticipant(ctx, demoted); err != nil {
			if repository.IsWriteFailure(err) {
				return response.UnprocessableEntity("Cannot modify current operator")
			}
			return s.fail(op, err)
		}
		undo.Push("restore operator", func(ctx context.Context) error {
			_, err := s.participants.UpdateParticipant(ctx, caller)
			return err
		})
	}

	created, err := s.participants.CreateParticipant(ctx, models.Participant{
		Username:     target.Username,
		UserID:       target.ID,
		ForumID:      forumID,
		Role:         role,
		Avatar:       target.Avatar,
		LastActivity: s.now(),
	})
	if err != nil {
		if repository.IsWriteFailure(err) {
			s.rollback(ctx, op, &undo)
			return response.UnprocessableEntity("Cannot add the participant, please try again later")
		}
		return s.fail(op, err)
	}
	undo.Push("remove participant", func(ctx context.Context) error {
		return s.participants.DeleteParticipant(ctx, created.ID)
	})

	if _, err := s.forums.AdjustParticipants(ctx, forumID, 1); err != nil {
		if repository.IsWriteFailure(err) {
			s.rollback(ctx, op, &undo)
			return response.UnprocessableEntity("Cannot update the forum, please try again later")
		}
		return s.fail(op, err)
	}
	undo.Forget()

	s.log.WithFields(logrus.Fields{"forum": forumID, "username": username, "role": role.String()}).Info("participant added")
	return response.OK(created)
}

// RemoveParticipant removes userID's membership of forumID. Members may
// leave on their own; managers may remove anyone but the operator.
func (s *Service) RemoveParticipant(ctx context.Context, requestor, forumID, userID string) response.Envelope {
	const op = "remove participant"
	if env, ok := s.check(ctx, op, memberParams(forumID, userID)); !ok {
		return env
	}

	caller, env := s.member(ctx, op, requestor, forumID)
	if env != nil {
		return *env
	}
	target, found, err := lookup(s.participants.ParticipantByUserAndForum(ctx, userID, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.NotFound("Participant is not found")
	}
	if target.ID != caller.ID && !caller.Role.CanManageParticipants() {
		return response.Forbidden(fmt.Sprintf("%s does not have the required role permissions", requestor))
	}
	if target.Role == models.RoleOperator {
		return response.Forbidden("Forum Operator cannot be removed")
	}

	active, err := s.activeAccount(ctx, target.Username)
	if err != nil {
		return s.fail(op, err)
	}
	if !active {
		return response.UnprocessableEntity("Invalid participant")
	}
	_, found, err = lookup(s.forums.ForumByID(ctx, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid forum")
	}

	var undo saga.Stack
	if err := s.participants.DeleteParticipant(ctx, target.ID); err != nil {
		if repository.IsWriteFailure(err) {
			return response.UnprocessableEntity("Cannot remove the participant, please try again later")
		}
		return s.fail(op, err)
	}
	undo.Push("restore participant", func(ctx context.Context) error {
		_, err := s.participants.CreateParticipant(ctx, target)
		return err
	})

	if _, err := s.forums.AdjustParticipants(ctx, forumID, -1); err != nil {
		if repository.IsWriteFailure(err) {
			s.rollback(ctx, op, &undo)
			return response.UnprocessableEntity("Cannot update the forum, please try again later")
		}
		return s.fail(op, err)
	}
	undo.Forget()

	s.log.WithFields(logrus.Fields{"forum": forumID, "username": target.Username}).Info("participant removed")
	return response.OK(target.Username)
}

// ListParticipants pages through a forum's members, operator first.
func (s *Service) ListParticipants(ctx context.Context, forumID string, q PageQuery) response.Envelope {
	const op = "list participants"
	if env, ok := s.check(ctx, op, forumParams(forumID), q.schema()); !ok {
		return env
	}
	_, found, err := lookup(s.forums.ForumByID(ctx, forumID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.NotFound("Forum is not found")
	}
	list, err := s.participants.ListParticipants(ctx, forumID, q.page())
	if err != nil {
		return s.fail(op, err)
	}
	return response.OK(list)
}
