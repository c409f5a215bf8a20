package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	type                TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL,
	has_specification   BOOLEAN NOT NULL DEFAULT FALSE,
	has_market_enhanced BOOLEAN NOT NULL DEFAULT FALSE,
	created_at          TEXT,
	features_core       INTEGER,
	features_advanced   INTEGER,
	market_tam          TEXT,
	market_sam          TEXT,
	indexed_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS projects_type_idx ON projects (type);
`

// EnsureSchema creates the project index table when it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
