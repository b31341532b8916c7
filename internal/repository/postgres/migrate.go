package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the notebook tables if they do not exist. Ownership
// columns are nullable on purpose: rows created before multi-tenancy have
// neither owner and stay readable by everyone.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notebooks (
			id          TEXT PRIMARY KEY,
			name        VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			archived    BOOLEAN NOT NULL DEFAULT FALSE,
			user_id     TEXT,
			team_id     TEXT,
			created_by  TEXT,
			created     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			id      TEXT PRIMARY KEY,
			title   VARCHAR(255) NOT NULL,
			created TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id          TEXT PRIMARY KEY,
			notebook_id TEXT NOT NULL REFERENCES notebooks(id) ON DELETE CASCADE,
			title       VARCHAR(255) NOT NULL,
			content     TEXT NOT NULL DEFAULT '',
			created     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS notebook_sources (
			notebook_id TEXT NOT NULL REFERENCES notebooks(id) ON DELETE CASCADE,
			source_id   TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
			PRIMARY KEY (notebook_id, source_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notebooks_user_id ON notebooks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notebooks_team_id ON notebooks(team_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
