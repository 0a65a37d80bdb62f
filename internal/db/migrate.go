package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// Migrate applies the schema file in a single statement batch. The schema
// only uses IF NOT EXISTS, so running it on every start is safe.
func Migrate(ctx context.Context, db *sql.DB, schemaPath string) error {
	b, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
