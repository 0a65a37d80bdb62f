package forum

import (
	"strconv"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	v "github.com/gus-tavo01/forums-api-sub000/internal/validation"
)

// Pointer fields distinguish a missing JSON property from an empty one.

type Credentials struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type RegisterInput struct {
	Username        *string `json:"username"`
	Password        *string `json:"password"`
	Email           *string `json:"email"`
	DateOfBirth     *string `json:"dateOfBirth"`
	SelfDescription *string `json:"selfDescription"`
	Language        *string `json:"language"`
	Avatar          *string `json:"avatar"`
}

type PasswordInput struct {
	Password *string `json:"password"`
}

type ForumInput struct {
	Topic       *string `json:"topic"`
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"isPrivate"`
}

type TopicInput struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
}

type CommentInput struct {
	Message *string `json:"message"`
	To      *string `json:"to"`
}

type ParticipantInput struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
}

// PageQuery carries the raw page and limit query parameters.
type PageQuery struct {
	Page  *string
	Limit *string
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var (
	idRules       = []v.Rule{v.NonEmptyString, v.UUID}
	usernameRules = []v.Rule{v.NonEmptyString, v.Length(3, 30)}
	passwordRules = []v.Rule{v.NonEmptyString, v.Length(6, 64)}
	optionalText  = []v.Rule{v.Optional, v.NonEmptyString}
)

func idParams(names ...string) func(values ...string) v.Schema {
	return func(values ...string) v.Schema {
		s := make(v.Schema, 0, len(names))
		for i, n := range names {
			s = append(s, v.Field{Name: n, Value: values[i], Rules: idRules})
		}
		return s
	}
}

var (
	forumParams   = idParams("forumId")
	userParams    = idParams("userId")
	topicParams   = idParams("forumId", "topicId")
	memberParams  = idParams("forumId", "userId")
	commentParams = idParams("forumId", "topicId", "commentId")
)

func (c Credentials) schema() v.Schema {
	return v.Schema{
		{Name: "username", Value: c.Username, Rules: []v.Rule{v.NonEmptyString}},
		{Name: "password", Value: c.Password, Rules: []v.Rule{v.NonEmptyString}},
	}
}

func (r RegisterInput) accountSchema() v.Schema {
	return v.Schema{
		{Name: "username", Value: r.Username, Rules: usernameRules},
		{Name: "password", Value: r.Password, Rules: passwordRules},
	}
}

func (r RegisterInput) profileSchema() v.Schema {
	return v.Schema{
		{Name: "email", Value: r.Email, Rules: []v.Rule{v.NonEmptyString, v.Email}},
		{Name: "dateOfBirth", Value: r.DateOfBirth, Rules: []v.Rule{v.NonEmptyString, v.Date}},
		{Name: "selfDescription", Value: r.SelfDescription, Rules: []v.Rule{v.Optional, v.Length(1, 500)}},
		{Name: "language", Value: r.Language, Rules: []v.Rule{v.Optional, v.Length(2, 10)}},
		{Name: "avatar", Value: r.Avatar, Rules: optionalText},
	}
}

func (p PasswordInput) schema() v.Schema {
	return v.Schema{{Name: "password", Value: p.Password, Rules: passwordRules}}
}

func (f ForumInput) schema() v.Schema {
	return v.Schema{
		{Name: "topic", Value: f.Topic, Rules: []v.Rule{v.NonEmptyString, v.Length(1, 120)}},
		{Name: "description", Value: f.Description, Rules: []v.Rule{v.NonEmptyString}},
		{Name: "isPrivate", Value: f.IsPrivate, Rules: []v.Rule{v.Boolean}},
	}
}

func (t TopicInput) schema() v.Schema {
	return v.Schema{
		{Name: "name", Value: t.Name, Rules: []v.Rule{v.NonEmptyString, v.Length(1, 120)}},
		{Name: "content", Value: t.Content, Rules: []v.Rule{v.NonEmptyString}},
	}
}

func (c CommentInput) schema() v.Schema {
	return v.Schema{
		{Name: "message", Value: c.Message, Rules: []v.Rule{v.NonEmptyString, v.Length(1, 2000)}},
		{Name: "to", Value: c.To, Rules: optionalText},
	}
}

// schema only checks presence. The role value is checked after
// authorization.
func (p ParticipantInput) schema() v.Schema {
	return v.Schema{
		{Name: "username", Value: p.Username, Rules: []v.Rule{v.NonEmptyString}},
		{Name: "role", Value: p.Role, Rules: []v.Rule{v.NonEmptyString}},
	}
}

func (q PageQuery) schema() v.Schema {
	return v.Schema{
		{Name: "page", Value: q.Page, Rules: []v.Rule{v.Optional, v.Numeric, v.IntRange(1, 1<<20)}},
		{Name: "limit", Value: q.Limit, Rules: []v.Rule{v.Optional, v.Numeric, v.IntRange(1, maxPageLimit)}},
	}
}

// page assumes schema() passed.
func (q PageQuery) page() models.Page {
	p := models.Page{Number: 1, Limit: defaultPageLimit}
	if q.Page != nil {
		if n, err := strconv.Atoi(*q.Page); err == nil {
			p.Number = n
		}
	}
	if q.Limit != nil {
		if n, err := strconv.Atoi(*q.Limit); err == nil {
			p.Limit = n
		}
	}
	return p
}

const (
	reactionLike    = "like"
	reactionDislike = "dislike"
)

func reactionSchema(kind string) v.Schema {
	return v.Schema{{
		Name:  "reaction",
		Value: kind,
		Rules: []v.Rule{v.NonEmptyString, v.OneOf([]string{reactionLike, reactionDislike}, nil)},
	}}
}
