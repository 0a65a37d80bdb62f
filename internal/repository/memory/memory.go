// Package memory is an in-process repository used when no database is
// configured and by tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	mu           sync.RWMutex
	accounts     map[string]models.Account
	users        map[string]models.User
	forums       map[string]models.Forum
	topics       map[string]models.Topic
	comments     map[string]models.Comment
	participants map[string]models.Participant

	now func() time.Time
}

func New() *Store {
	return &Store{
		accounts:     map[string]models.Account{},
		users:        map[string]models.User{},
		forums:       map[string]models.Forum{},
		topics:       map[string]models.Topic{},
		comments:     map[string]models.Comment{},
		participants: map[string]models.Participant{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func window[T any](all []T, page models.Page) []T {
	if all == nil {
		all = []T{}
	}
	if page.Limit <= 0 {
		return all
	}
	start := page.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := min(start+page.Limit, len(all))
	return all[start:end]
}

// --- Accounts ---------------------------------------------------------------

func (s *Store) CreateAccount(_ context.Context, a models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Username == a.Username {
			return models.Account{}, repository.ErrDuplicate
		}
	}
	a.ID = newID(a.ID)
	now := s.now()
	a.CreateDate, a.UpdateDate = now, now
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) AccountByUsername(_ context.Context, username string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return models.Account{}, repository.ErrNotFound
}

func (s *Store) UpdateAccount(_ context.Context, a models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[a.ID]
	if !ok {
		return models.Account{}, repository.ErrNotApplied
	}
	a.CreateDate = existing.CreateDate
	a.UpdateDate = s.now()
	s.accounts[a.ID] = a
	return a, nil
}

// --- Users ------------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return models.User{}, repository.ErrDuplicate
		}
	}
	u.ID = newID(u.ID)
	now := s.now()
	u.CreateDate, u.UpdateDate = now, now
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UserByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context, page models.Page) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	slices.SortFunc(all, func(a, b models.User) int { return cmp.Compare(a.Username, b.Username) })
	return window(all, page), nil
}

// --- Forums -----------------------------------------------------------------

func (s *Store) CreateForum(_ context.Context, f models.Forum) (models.Forum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = newID(f.ID)
	if _, ok := s.forums[f.ID]; ok {
		return models.Forum{}, repository.ErrDuplicate
	}
	now := s.now()
	f.CreateDate, f.UpdateDate = now, now
	if f.LastActivity.IsZero() {
		f.LastActivity = now
	}
	s.forums[f.ID] = f
	return f, nil
}

func (s *Store) ForumByID(_ context.Context, id string) (models.Forum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forums[id]
	if !ok {
		return models.Forum{}, repository.ErrNotFound
	}
	return f, nil
}

func (s *Store) UpdateForum(_ context.Context, f models.Forum) (models.Forum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.forums[f.ID]
	if !ok {
		return models.Forum{}, repository.ErrNotApplied
	}
	f.CreateDate = existing.CreateDate
	f.UpdateDate = s.now()
	s.forums[f.ID] = f
	return f, nil
}

func (s *Store) AdjustParticipants(_ context.Context, forumID string, delta int) (models.Forum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forums[forumID]
	if !ok || f.Participants+delta < 0 {
		return models.Forum{}, repository.ErrNotApplied
	}
	now := s.now()
	f.Participants += delta
	f.UpdateDate, f.LastActivity = now, now
	s.forums[forumID] = f
	return f, nil
}

func (s *Store) DeleteForum(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forums[id]; !ok {
		return repository.ErrNotApplied
	}
	delete(s.forums, id)
	return nil
}

func (s *Store) ListForums(_ context.Context, page models.Page) ([]models.Forum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.Forum, 0, len(s.forums))
	for _, f := range s.forums {
		if f.IsActive {
			all = append(all, f)
		}
	}
	slices.SortFunc(all, func(a, b models.Forum) int { return b.LastActivity.Compare(a.LastActivity) })
	return window(all, page), nil
}

// --- Topics -----------------------------------------------------------------

func (s *Store) CreateTopic(_ context.Context, t models.Topic) (models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = newID(t.ID)
	if _, ok := s.topics[t.ID]; ok {
		return models.Topic{}, repository.ErrDuplicate
	}
	now := s.now()
	t.CreateDate, t.UpdateDate = now, now
	s.topics[t.ID] = t
	return t, nil
}

func (s *Store) TopicByID(_ context.Context, id string) (models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	if !ok {
		return models.Topic{}, repository.ErrNotFound
	}
	return t, nil
}

func (s *Store) UpdateTopic(_ context.Context, t models.Topic) (models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.topics[t.ID]
	if !ok {
		return models.Topic{}, repository.ErrNotApplied
	}
	t.CreateDate = existing.CreateDate
	t.UpdateDate = s.now()
	s.topics[t.ID] = t
	return t, nil
}

func (s *Store) AdjustComments(_ context.Context, topicID string, delta int) (models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[topicID]
	if !ok || t.Comments+delta < 0 {
		return models.Topic{}, repository.ErrNotApplied
	}
	t.Comments += delta
	t.UpdateDate = s.now()
	s.topics[topicID] = t
	return t, nil
}

func (s *Store) DeleteTopic(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[id]; !ok {
		return repository.ErrNotApplied
	}
	delete(s.topics, id)
	return nil
}

func (s *Store) ListTopics(_ context.Context, forumID string, page models.Page) ([]models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []models.Topic
	for _, t := range s.topics {
		if t.ForumID == forumID {
			all = append(all, t)
		}
	}
	slices.SortFunc(all, func(a, b models.Topic) int { return b.CreateDate.Compare(a.CreateDate) })
	return window(all, page), nil
}

// --- Comments ---------------------------------------------------------------

func cloneComment(c models.Comment) models.Comment {
	c.Likes = append([]string{}, c.Likes...)
	c.Dislikes = append([]string{}, c.Dislikes...)
	return c
}

func (s *Store) CreateComment(_ context.Context, c models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = newID(c.ID)
	if _, ok := s.comments[c.ID]; ok {
		return models.Comment{}, repository.ErrDuplicate
	}
	c.CreateDate = s.now()
	c = cloneComment(c)
	s.comments[c.ID] = c
	return cloneComment(c), nil
}

func (s *Store) CommentByID(_ context.Context, id string) (models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repository.ErrNotFound
	}
	return cloneComment(c), nil
}

func (s *Store) UpdateComment(_ context.Context, c models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.comments[c.ID]
	if !ok {
		return models.Comment{}, repository.ErrNotApplied
	}
	c.CreateDate = existing.CreateDate
	c = cloneComment(c)
	s.comments[c.ID] = c
	return cloneComment(c), nil
}

func (s *Store) ListComments(_ context.Context, topicID string, page models.Page) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []models.Comment
	for _, c := range s.comments {
		if c.TopicID == topicID {
			all = append(all, cloneComment(c))
		}
	}
	slices.SortFunc(all, func(a, b models.Comment) int { return a.CreateDate.Compare(b.CreateDate) })
	return window(all, page), nil
}

// --- Participants -----------------------------------------------------------

func (s *Store) CreateParticipant(_ context.Context, p models.Participant) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.participants {
		if existing.UserID == p.UserID && existing.ForumID == p.ForumID {
			return models.Participant{}, repository.ErrDuplicate
		}
	}
	p.ID = newID(p.ID)
	if _, ok := s.participants[p.ID]; ok {
		return models.Participant{}, repository.ErrDuplicate
	}
	if p.LastActivity.IsZero() {
		p.LastActivity = s.now()
	}
	s.participants[p.ID] = p
	return p, nil
}

func (s *Store) ParticipantByID(_ context.Context, id string) (models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return models.Participant{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *Store) ParticipantByUserAndForum(_ context.Context, userID, forumID string) (models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.participants {
		if p.UserID == userID && p.ForumID == forumID {
			return p, nil
		}
	}
	return models.Participant{}, repository.ErrNotFound
}

func (s *Store) UpdateParticipant(_ context.Context, p models.Participant) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; !ok {
		return models.Participant{}, repository.ErrNotApplied
	}
	s.participants[p.ID] = p
	return p, nil
}

func (s *Store) DeleteParticipant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; !ok {
		return repository.ErrNotApplied
	}
	delete(s.participants, id)
	return nil
}

func (s *Store) ListParticipants(_ context.Context, forumID string, page models.Page) ([]models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []models.Participant
	for _, p := range s.participants {
		if p.ForumID == forumID {
			all = append(all, p)
		}
	}
	slices.SortFunc(all, func(a, b models.Participant) int {
		if c := cmp.Compare(a.Role, b.Role); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	return window(all, page), nil
}
