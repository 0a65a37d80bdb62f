// Package postgres implements the repository ports on PostgreSQL through
// database/sql and the pgx driver.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gus-tavo01/forums-api-sub000/internal/models"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
)

const uniqueViolation = "23505"

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type scanner interface {
	Scan(dest ...any) error
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// writeErr maps driver errors on INSERT/UPDATE/DELETE to repository errors.
func writeErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// readErr maps sql.ErrNoRows to repository.ErrNotFound.
func readErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mustAffect turns a zero-row write into repository.ErrNotApplied.
func mustAffect(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotApplied)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// pageArgs returns LIMIT and OFFSET arguments. A NULL limit returns every row.
func pageArgs(page models.Page) (any, int) {
	if page.Limit <= 0 {
		return nil, 0
	}
	return page.Limit, page.Offset()
}
