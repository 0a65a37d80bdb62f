package forum

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
	"github.com/gus-tavo01/forums-api-sub000/internal/response"
	"github.com/gus-tavo01/forums-api-sub000/internal/validation"
)

const invalidLogin = "Invalid username or password"

// Register creates an Account and then its User profile. The two writes
// are not atomic: a failing profile leaves the account in place.
func (s *Service) Register(ctx context.Context, in RegisterInput) response.Envelope {
	const op = "register"
	username := deref(in.Username)

	_, taken, err := lookup(s.accounts.AccountByUsername(ctx, username))
	if err != nil {
		return s.fail(op, err)
	}
	if taken {
		return response.Conflict(fmt.Sprintf("Username '%s' is already taken", username))
	}

	if env, ok := s.check(ctx, op, in.accountSchema()); !ok {
		return env
	}
	hash, err := s.hasher.Hash(deref(in.Password))
	if err != nil {
		return s.fail(op, err)
	}
	account, err := s.accounts.CreateAccount(ctx, models.Account{
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	})
	if repository.IsWriteFailure(err) {
		return response.UnprocessableEntity("Cannot create the account, please try again later")
	}
	if err != nil {
		return s.fail(op, err)
	}

	if env, ok := s.check(ctx, op, in.profileSchema()); !ok {
		return env
	}
	dob, _ := validation.ParseDate(deref(in.DateOfBirth))
	user, err := s.users.CreateUser(ctx, models.User{
		Username:        username,
		Email:           deref(in.Email),
		DateOfBirth:     dob,
		SelfDescription: deref(in.SelfDescription),
		Language:        deref(in.Language),
		Avatar:          deref(in.Avatar),
	})
	if repository.IsWriteFailure(err) {
		return response.UnprocessableEntity("Cannot create the user profile, please try again later")
	}
	if err != nil {
		return s.fail(op, err)
	}

	account.UserID = user.ID
	if _, err := s.accounts.UpdateAccount(ctx, account); err != nil {
		s.log.WithError(err).WithField("username", username).Warn("register: account not linked to profile")
	}

	s.log.WithField("username", username).Info("account registered")
	return response.Created(user)
}

// CreateUser is Register on behalf of an authenticated caller.
func (s *Service) CreateUser(ctx context.Context, requestor string, in RegisterInput) response.Envelope {
	env := s.Register(ctx, in)
	if env.Success() {
		s.log.WithFields(logrus.Fields{"by": requestor, "username": deref(in.Username)}).Info("user created")
	}
	return env
}

func (s *Service) Login(ctx context.Context, in Credentials) response.Envelope {
	const op = "login"
	if env, ok := s.check(ctx, op, in.schema()); !ok {
		return env
	}

	account, found, err := lookup(s.accounts.AccountByUsername(ctx, *in.Username))
	if err != nil {
		return s.fail(op, err)
	}
	if !found || !account.IsActive {
		return response.Unauthorized(invalidLogin)
	}
	if !s.hasher.Compare(account.PasswordHash, *in.Password) {
		s.log.WithField("username", account.Username).Info("login: bad password")
		return response.Unauthorized(invalidLogin)
	}

	token, err := s.tokens.Issue(account.Username)
	if err != nil {
		return s.fail(op, err)
	}
	return response.OK(token)
}

// ResetPassword lets a user change their own password only.
func (s *Service) ResetPassword(ctx context.Context, requestor, userID string, in PasswordInput) response.Envelope {
	const op = "reset password"
	if env, ok := s.check(ctx, op, userParams(userID), in.schema()); !ok {
		return env
	}

	user, found, err := lookup(s.users.UserByID(ctx, userID))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.NotFound("User is not found")
	}
	if user.Username != requestor {
		return response.Forbidden(fmt.Sprintf("%s cannot modify the password of another user", requestor))
	}

	account, found, err := lookup(s.accounts.AccountByUsername(ctx, user.Username))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid account")
	}
	hash, err := s.hasher.Hash(*in.Password)
	if err != nil {
		return s.fail(op, err)
	}
	account.PasswordHash = hash
	if _, err := s.accounts.UpdateAccount(ctx, account); err != nil {
		if repository.IsWriteFailure(err) {
			return response.UnprocessableEntity("Cannot update the password, please try again later")
		}
		return s.fail(op, err)
	}
	return response.OK(user)
}

// DeactivateAccount switches off the caller's own account. Inactive
// accounts can no longer log in or join forums.
func (s *Service) DeactivateAccount(ctx context.Context, requestor, userID string) response.Envelope {
	const op = "deactivate account"
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
	if user.Username != requestor {
		return response.Forbidden(fmt.Sprintf("%s cannot deactivate another user", requestor))
	}

	account, found, err := lookup(s.accounts.AccountByUsername(ctx, user.Username))
	if err != nil {
		return s.fail(op, err)
	}
	if !found {
		return response.UnprocessableEntity("Invalid account")
	}
	account.IsActive = false
	if _, err := s.accounts.UpdateAccount(ctx, account); err != nil {
		if repository.IsWriteFailure(err) {
			return response.UnprocessableEntity("Cannot update the account, please try again later")
		}
		return s.fail(op, err)
	}
	return response.OK(user.Username)
}
