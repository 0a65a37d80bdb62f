// Package forum holds the request orchestration for every API action:
// input validation, authorization, ordered repository calls and the
// compensating writes that undo a partially applied action.
//
// Every exported method returns exactly one response.Envelope. Anticipated
// failures map to 4xx envelopes; unexpected storage errors collapse to a
// 500 envelope carrying the raw error text and never trigger a rollback.
package forum

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gus-tavo01/forums-api-sub000/internal/auth"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
	"github.com/gus-tavo01/forums-api-sub000/internal/response"
	"github.com/gus-tavo01/forums-api-sub000/internal/saga"
	"github.com/gus-tavo01/forums-api-sub000/internal/validation"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	Issue(username string) (auth.Token, error)
}

// RollbackRecorder is notified after every compensating sequence.
type RollbackRecorder interface {
	RecordRollback(operation string, err error)
}

type Deps struct {
	Store     repository.Store
	Hasher    PasswordHasher
	Tokens    TokenIssuer
	Logger    logrus.FieldLogger
	Rollbacks RollbackRecorder
}

type Service struct {
	accounts     repository.Accounts
	users        repository.Users
	forums       repository.Forums
	topics       repository.Topics
	comments     repository.Comments
	participants repository.Participants

	hasher    PasswordHasher
	tokens    TokenIssuer
	log       logrus.FieldLogger
	rollbacks RollbackRecorder
	now       func() time.Time
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Service{
		accounts:     d.Store,
		users:        d.Store,
		forums:       d.Store,
		topics:       d.Store,
		comments:     d.Store,
		participants: d.Store,
		hasher:       d.Hasher,
		tokens:       d.Tokens,
		log:          log,
		rollbacks:    d.Rollbacks,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// lookup separates an absent record from a storage error.
func lookup[T any](v T, err error) (T, bool, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// check validates independent schemas concurrently, merging failures in
// argument order. ok is false when the returned envelope must be sent.
func (s *Service) check(ctx context.Context, op string, schemas ...validation.Schema) (env response.Envelope, ok bool) {
	res, err := validation.Concurrently(ctx, schemas...)
	if err != nil {
		return s.fail(op, err), false
	}
	if !res.IsValid {
		return response.BadRequest(res.Fields), false
	}
	return response.Envelope{}, true
}

// fail logs an unexpected error and returns it verbatim in a 500 envelope.
func (s *Service) fail(op string, err error) response.Envelope {
	s.log.WithError(err).WithField("op", op).Error("unexpected failure")
	return response.InternalServerError(err.Error())
}

// rollback runs the pending compensating actions. Failures are logged and
// recorded but do not change the envelope the caller returns. An empty
// stack is a no-op.
func (s *Service) rollback(ctx context.Context, op string, undo *saga.Stack) {
	if undo.Len() == 0 {
		return
	}
	steps := undo.Names()
	err := undo.Rollback(ctx)
	entry := s.log.WithFields(logrus.Fields{"op": op, "steps": steps})
	if err != nil {
		entry.WithError(err).Error("rollback incomplete")
	} else {
		entry.Warn("rolled back")
	}
	if s.rollbacks != nil {
		s.rollbacks.RecordRollback(op, err)
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
