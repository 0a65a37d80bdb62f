package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
)

const forumColumns = `id, topic, description, author, is_private, is_active, participants, create_date, update_date, last_activity`

func scanForum(row scanner) (models.Forum, error) {
	var f models.Forum
	err := row.Scan(&f.ID, &f.Topic, &f.Description, &f.Author, &f.IsPrivate, &f.IsActive, &f.Participants, &f.CreateDate, &f.UpdateDate, &f.LastActivity)
	return f, err
}

func (s *Store) CreateForum(ctx context.Context, f models.Forum) (models.Forum, error) {
	f.ID = newID(f.ID)
	now := s.now()
	f.CreateDate, f.UpdateDate = now, now
	if f.LastActivity.IsZero() {
		f.LastActivity = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forums (id, topic, description, author, is_private, is_active, participants, create_date, update_date, last_activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, f.ID, f.Topic, f.Description, f.Author, f.IsPrivate, f.IsActive, f.Participants, f.CreateDate, f.UpdateDate, f.LastActivity)
	if err != nil {
		return models.Forum{}, writeErr("create forum", err)
	}
	return f, nil
}

func (s *Store) ForumByID(ctx context.Context, id string) (models.Forum, error) {
	f, err := scanForum(s.db.QueryRowContext(ctx, `SELECT `+forumColumns+` FROM forums WHERE id = $1`, id))
	if err != nil {
		return models.Forum{}, readErr("forum by id", err)
	}
	return f, nil
}

func (s *Store) UpdateForum(ctx context.Context, f models.Forum) (models.Forum, error) {
	f.UpdateDate = s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE forums
		SET topic = $2, description = $3, is_private = $4, is_active = $5,
		    participants = $6, update_date = $7, last_activity = $8
		WHERE id = $1
	`, f.ID, f.Topic, f.Description, f.IsPrivate, f.IsActive, f.Participants, f.UpdateDate, f.LastActivity)
	if err != nil {
		return models.Forum{}, writeErr("update forum", err)
	}
	if err := mustAffect("update forum", res); err != nil {
		return models.Forum{}, err
	}
	return f, nil
}

func (s *Store) AdjustParticipants(ctx context.Context, forumID string, delta int) (models.Forum, error) {
	f, err := scanForum(s.db.QueryRowContext(ctx, `
		UPDATE forums
		SET participants = participants + $2, update_date = $3, last_activity = $3
		WHERE id = $1 AND participants + $2 >= 0
		RETURNING `+forumColumns,
		forumID, delta, s.now()))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Forum{}, fmt.Errorf("adjust participants: %w", repository.ErrNotApplied)
	}
	if err != nil {
		return models.Forum{}, writeErr("adjust participants", err)
	}
	return f, nil
}

func (s *Store) DeleteForum(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forums WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete forum", err)
	}
	return mustAffect("delete forum", res)
}

func (s *Store) ListForums(ctx context.Context, page models.Page) ([]models.Forum, error) {
	limit, offset := pageArgs(page)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+forumColumns+`
		FROM forums
		WHERE is_active
		ORDER BY last_activity DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, readErr("list forums", err)
	}
	defer rows.Close()

	out := []models.Forum{}
	for rows.Next() {
		f, err := scanForum(rows)
		if err != nil {
			return nil, readErr("list forums", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
