package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
)

const topicColumns = `id, name, content, forum_id, comments, create_date, update_date`

func scanTopic(row scanner) (models.Topic, error) {
	var t models.Topic
	err := row.Scan(&t.ID, &t.Name, &t.Content, &t.ForumID, &t.Comments, &t.CreateDate, &t.UpdateDate)
	return t, err
}

func (s *Store) CreateTopic(ctx context.Context, t models.Topic) (models.Topic, error) {
	t.ID = newID(t.ID)
	now := s.now()
	t.CreateDate, t.UpdateDate = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topics (id, name, content, forum_id, comments, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.Name, t.Content, t.ForumID, t.Comments, t.CreateDate, t.UpdateDate)
	if err != nil {
		return models.Topic{}, writeErr("create topic", err)
	}
	return t, nil
}

func (s *Store) TopicByID(ctx context.Context, id string) (models.Topic, error) {
	t, err := scanTopic(s.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = $1`, id))
	if err != nil {
		return models.Topic{}, readErr("topic by id", err)
	}
	return t, nil
}

func (s *Store) UpdateTopic(ctx context.Context, t models.Topic) (models.Topic, error) {
	t.UpdateDate = s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE topics
		SET name = $2, content = $3, comments = $4, update_date = $5
		WHERE id = $1
	`, t.ID, t.Name, t.Content, t.Comments, t.UpdateDate)
	if err != nil {
		return models.Topic{}, writeErr("update topic", err)
	}
	if err := mustAffect("update topic", res); err != nil {
		return models.Topic{}, err
	}
	return t, nil
}

func (s *Store) AdjustComments(ctx context.Context, topicID string, delta int) (models.Topic, error) {
	t, err := scanTopic(s.db.QueryRowContext(ctx, `
		UPDATE topics
		SET comments = comments + $2, update_date = $3
		WHERE id = $1 AND comments + $2 >= 0
		RETURNING `+topicColumns,
		topicID, delta, s.now()))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Topic{}, fmt.Errorf("adjust comments: %w", repository.ErrNotApplied)
	}
	if err != nil {
		return models.Topic{}, writeErr("adjust comments", err)
	}
	return t, nil
}

func (s *Store) DeleteTopic(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete topic", err)
	}
	return mustAffect("delete topic", res)
}

func (s *Store) ListTopics(ctx context.Context, forumID string, page models.Page) ([]models.Topic, error) {
	limit, offset := pageArgs(page)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+topicColumns+`
		FROM topics
		WHERE forum_id = $1
		ORDER BY create_date DESC
		LIMIT $2 OFFSET $3
	`, forumID, limit, offset)
	if err != nil {
		return nil, readErr("list topics", err)
	}
	defer rows.Close()

	out := []models.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, readErr("list topics", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
