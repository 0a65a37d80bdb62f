package postgres

import (
	"context"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
)

const participantColumns = `id, username, user_id, forum_id, role, COALESCE(avatar, ''), last_activity`

func scanParticipant(row scanner) (models.Participant, error) {
	var p models.Participant
	err := row.Scan(&p.ID, &p.Username, &p.UserID, &p.ForumID, &p.Role, &p.Avatar, &p.LastActivity)
	return p, err
}

func (s *Store) CreateParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	p.ID = newID(p.ID)
	if p.LastActivity.IsZero() {
		p.LastActivity = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (id, username, user_id, forum_id, role, avatar, last_activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Username, p.UserID, p.ForumID, p.Role, nullString(p.Avatar), p.LastActivity)
	if err != nil {
		return models.Participant{}, writeErr("create participant", err)
	}
	return p, nil
}

func (s *Store) ParticipantByID(ctx context.Context, id string) (models.Participant, error) {
	p, err := scanParticipant(s.db.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = $1`, id))
	if err != nil {
		return models.Participant{}, readErr("participant by id", err)
	}
	return p, nil
}

func (s *Store) ParticipantByUserAndForum(ctx context.Context, userID, forumID string) (models.Participant, error) {
	p, err := scanParticipant(s.db.QueryRowContext(ctx, `
		SELECT `+participantColumns+`
		FROM participants
		WHERE user_id = $1 AND forum_id = $2
	`, userID, forumID))
	if err != nil {
		return models.Participant{}, readErr("participant by user and forum", err)
	}
	return p, nil
}

func (s *Store) UpdateParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE participants
		SET role = $2, avatar = $3, last_activity = $4
		WHERE id = $1
	`, p.ID, p.Role, nullString(p.Avatar), p.LastActivity)
	if err != nil {
		return models.Participant{}, writeErr("update participant", err)
	}
	if err := mustAffect("update participant", res); err != nil {
		return models.Participant{}, err
	}
	return p, nil
}

func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete participant", err)
	}
	return mustAffect("delete participant", res)
}

func (s *Store) ListParticipants(ctx context.Context, forumID string, page models.Page) ([]models.Participant, error) {
	limit, offset := pageArgs(page)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+participantColumns+`
		FROM participants
		WHERE forum_id = $1
		ORDER BY CASE role
		    WHEN 'Operator' THEN 1
		    WHEN 'Administrator' THEN 2
		    WHEN 'Participant' THEN 3
		    ELSE 4
		END, username
		LIMIT $2 OFFSET $3
	`, forumID, limit, offset)
	if err != nil {
		return nil, readErr("list participants", err)
	}
	defer rows.Close()

	out := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, readErr("list participants", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
