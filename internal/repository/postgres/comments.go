package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
)

const commentColumns = `id, topic_id, from_user, COALESCE(to_user, ''), message, likes, dislikes, create_date`

func scanComment(row scanner) (models.Comment, error) {
	var (
		c               models.Comment
		likes, dislikes []byte
	)
	if err := row.Scan(&c.ID, &c.TopicID, &c.From, &c.To, &c.Message, &likes, &dislikes, &c.CreateDate); err != nil {
		return models.Comment{}, err
	}
	c.Likes, c.Dislikes = []string{}, []string{}
	if len(likes) > 0 {
		if err := json.Unmarshal(likes, &c.Likes); err != nil {
			return models.Comment{}, fmt.Errorf("decode likes: %w", err)
		}
	}
	if len(dislikes) > 0 {
		if err := json.Unmarshal(dislikes, &c.Dislikes); err != nil {
			return models.Comment{}, fmt.Errorf("decode dislikes: %w", err)
		}
	}
	return c, nil
}

func encodeVoters(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return json.Marshal(v)
}

func (s *Store) CreateComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.ID = newID(c.ID)
	c.CreateDate = s.now()
	if c.Likes == nil {
		c.Likes = []string{}
	}
	if c.Dislikes == nil {
		c.Dislikes = []string{}
	}
	likes, err := encodeVoters(c.Likes)
	if err != nil {
		return models.Comment{}, err
	}
	dislikes, err := encodeVoters(c.Dislikes)
	if err != nil {
		return models.Comment{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO comments (id, topic_id, from_user, to_user, message, likes, dislikes, create_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.TopicID, c.From, nullString(c.To), c.Message, likes, dislikes, c.CreateDate)
	if err != nil {
		return models.Comment{}, writeErr("create comment", err)
	}
	return c, nil
}

func (s *Store) CommentByID(ctx context.Context, id string) (models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return models.Comment{}, readErr("comment by id", err)
	}
	return c, nil
}

func (s *Store) UpdateComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	likes, err := encodeVoters(c.Likes)
	if err != nil {
		return models.Comment{}, err
	}
	dislikes, err := encodeVoters(c.Dislikes)
	if err != nil {
		return models.Comment{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE comments
		SET message = $2, likes = $3, dislikes = $4
		WHERE id = $1
	`, c.ID, c.Message, likes, dislikes)
	if err != nil {
		return models.Comment{}, writeErr("update comment", err)
	}
	if err := mustAffect("update comment", res); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

func (s *Store) ListComments(ctx context.Context, topicID string, page models.Page) ([]models.Comment, error) {
	limit, offset := pageArgs(page)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE topic_id = $1
		ORDER BY create_date
		LIMIT $2 OFFSET $3
	`, topicID, limit, offset)
	if err != nil {
		return nil, readErr("list comments", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, readErr("list comments", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
