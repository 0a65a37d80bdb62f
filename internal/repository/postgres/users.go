package postgres

import (
	"context"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
)

const userColumns = `id, username, email, date_of_birth, COALESCE(self_description, ''), COALESCE(language, ''), COALESCE(avatar, ''), create_date, update_date`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.DateOfBirth, &u.SelfDescription, &u.Language, &u.Avatar, &u.CreateDate, &u.UpdateDate)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.ID = newID(u.ID)
	now := s.now()
	u.CreateDate, u.UpdateDate = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, date_of_birth, self_description, language, avatar, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Username, u.Email, u.DateOfBirth, nullString(u.SelfDescription), nullString(u.Language), nullString(u.Avatar), u.CreateDate, u.UpdateDate)
	if err != nil {
		return models.User{}, writeErr("create user", err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return models.User{}, readErr("user by id", err)
	}
	return u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return models.User{}, readErr("user by username", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context, page models.Page) ([]models.User, error) {
	limit, offset := pageArgs(page)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY username
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, readErr("list users", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, readErr("list users", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
