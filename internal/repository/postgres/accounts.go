package postgres

import (
	"context"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
)

const accountColumns = `id, username, password_hash, COALESCE(user_id::text, ''), is_active, create_date, update_date`

func scanAccount(row scanner) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.UserID, &a.IsActive, &a.CreateDate, &a.UpdateDate)
	return a, err
}

func (s *Store) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	a.ID = newID(a.ID)
	now := s.now()
	a.CreateDate, a.UpdateDate = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, password_hash, user_id, is_active, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Username, a.PasswordHash, nullString(a.UserID), a.IsActive, a.CreateDate, a.UpdateDate)
	if err != nil {
		return models.Account{}, writeErr("create account", err)
	}
	return a, nil
}

func (s *Store) AccountByUsername(ctx context.Context, username string) (models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	a, err := scanAccount(row)
	if err != nil {
		return models.Account{}, readErr("account by username", err)
	}
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	a.UpdateDate = s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $2, user_id = $3, is_active = $4, update_date = $5
		WHERE id = $1
	`, a.ID, a.PasswordHash, nullString(a.UserID), a.IsActive, a.UpdateDate)
	if err != nil {
		return models.Account{}, writeErr("update account", err)
	}
	if err := mustAffect("update account", res); err != nil {
		return models.Account{}, err
	}
	return a, nil
}
