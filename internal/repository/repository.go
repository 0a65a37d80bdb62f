// Package repository declares the storage ports used by the forum service.
// Implementations live in the postgres and memory sub-packages.
package repository

import (
	"context"
	"errors"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotApplied means a write completed without changing anything,
	// usually because the target row vanished.
	ErrNotApplied = errors.New("write not applied")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
)

// IsWriteFailure reports whether err is an anticipated write failure as
// opposed to an unexpected storage error.
func IsWriteFailure(err error) bool {
	return errors.Is(err, ErrNotApplied) || errors.Is(err, ErrDuplicate)
}

type Accounts interface {
	CreateAccount(ctx context.Context, a models.Account) (models.Account, error)
	AccountByUsername(ctx context.Context, username string) (models.Account, error)
	UpdateAccount(ctx context.Context, a models.Account) (models.Account, error)
}

type Users interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context, page models.Page) ([]models.User, error)
}

type Forums interface {
	CreateForum(ctx context.Context, f models.Forum) (models.Forum, error)
	ForumByID(ctx context.Context, id string) (models.Forum, error)
	UpdateForum(ctx context.Context, f models.Forum) (models.Forum, error)
	// AdjustParticipants adds delta to the forum's participant counter in a
	// single write. A missing forum or a counter that would drop below zero
	// yields ErrNotApplied.
	AdjustParticipants(ctx context.Context, forumID string, delta int) (models.Forum, error)
	DeleteForum(ctx context.Context, id string) error
	ListForums(ctx context.Context, page models.Page) ([]models.Forum, error)
}

type Topics interface {
	CreateTopic(ctx context.Context, t models.Topic) (models.Topic, error)
	TopicByID(ctx context.Context, id string) (models.Topic, error)
	UpdateTopic(ctx context.Context, t models.Topic) (models.Topic, error)
	// AdjustComments is AdjustParticipants for a topic's comment counter.
	AdjustComments(ctx context.Context, topicID string, delta int) (models.Topic, error)
	DeleteTopic(ctx context.Context, id string) error
	ListTopics(ctx context.Context, forumID string, page models.Page) ([]models.Topic, error)
}

type Comments interface {
	CreateComment(ctx context.Context, c models.Comment) (models.Comment, error)
	CommentByID(ctx context.Context, id string) (models.Comment, error)
	UpdateComment(ctx context.Context, c models.Comment) (models.Comment, error)
	ListComments(ctx context.Context, topicID string, page models.Page) ([]models.Comment, error)
}

type Participants interface {
	// CreateParticipant keeps a non-empty ID, which lets a removed row be
	// restored exactly.
	CreateParticipant(ctx context.Context, p models.Participant) (models.Participant, error)
	ParticipantByID(ctx context.Context, id string) (models.Participant, error)
	ParticipantByUserAndForum(ctx context.Context, userID, forumID string) (models.Participant, error)
	UpdateParticipant(ctx context.Context, p models.Participant) (models.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
	ListParticipants(ctx context.Context, forumID string, page models.Page) ([]models.Participant, error)
}

// Store groups every port. Both implementations satisfy it.
type Store interface {
	Accounts
	Users
	Forums
	Topics
	Comments
	Participants
}
