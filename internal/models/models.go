package models

import "time"

// Account holds login credentials. PasswordHash never leaves the server.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	UserID       string    `json:"userId,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreateDate   time.Time `json:"createDate"`
	UpdateDate   time.Time `json:"updateDate"`
}

// User is the public profile that mirrors an Account by username.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	DateOfBirth     time.Time `json:"dateOfBirth"`
	SelfDescription string    `json:"selfDescription,omitempty"`
	Language        string    `json:"language,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	CreateDate      time.Time `json:"createDate"`
	UpdateDate      time.Time `json:"updateDate"`
}

// Forum.Participants is maintained by hand and must match the number of
// Participant rows referencing the forum.
type Forum struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	Description  string    `json:"description"`
	Author       string    `json:"author"`
	IsPrivate    bool      `json:"isPrivate"`
	IsActive     bool      `json:"isActive"`
	Participants int       `json:"participants"`
	CreateDate   time.Time `json:"createDate"`
	UpdateDate   time.Time `json:"updateDate"`
	LastActivity time.Time `json:"lastActivity"`
}

type Topic struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	ForumID    string    `json:"forumId"`
	Comments   int       `json:"comments"`
	CreateDate time.Time `json:"createDate"`
	UpdateDate time.Time `json:"updateDate"`
}

// Comment.Likes and Comment.Dislikes hold voter user ids.
type Comment struct {
	ID         string    `json:"id"`
	TopicID    string    `json:"topicId"`
	From       string    `json:"from"`
	To         string    `json:"to,omitempty"`
	Message    string    `json:"message"`
	Likes      []string  `json:"likes"`
	Dislikes   []string  `json:"dislikes"`
	CreateDate time.Time `json:"createDate"`
}

type Participant struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	UserID       string    `json:"userId"`
	ForumID      string    `json:"forumId"`
	Role         Role      `json:"role"`
	Avatar       string    `json:"avatar,omitempty"`
	LastActivity time.Time `json:"lastActivity"`
}

// Page selects a window of a listing. Number starts at 1.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
