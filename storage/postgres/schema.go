package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	kind        TEXT        NOT NULL,
	record_id   TEXT        NOT NULL,
	payload     JSONB       NOT NULL,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, record_id)
);
CREATE INDEX IF NOT EXISTS records_kind_idx ON records (kind, inserted_at);
`

// EnsureSchema creates the required table and index if they do not exist.
// It is safe to call on every startup (all statements use IF NOT EXISTS).
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
