package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT        NOT NULL,
		id         TEXT        NOT NULL,
		data       JSONB       NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_order_idx ON documents (collection, created_at, id)`,
	`CREATE TABLE IF NOT EXISTS recheck_audit (
		event_id    TEXT        PRIMARY KEY,
		user_id     TEXT        NOT NULL,
		operator    TEXT        NOT NULL DEFAULT '',
		producer    TEXT        NOT NULL DEFAULT '',
		occurred_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS recheck_audit_user_idx ON recheck_audit (user_id, occurred_at DESC)`,
}

// Migrate creates the tables used by the document store and the audit trail.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
