package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE harvest_run_status AS ENUM ('running', 'succeeded', 'failed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS harvest_runs (
		id UUID PRIMARY KEY,
		channel TEXT NOT NULL,
		status harvest_run_status NOT NULL DEFAULT 'running',
		parse_username BOOLEAN NOT NULL DEFAULT FALSE,
		parse_bio BOOLEAN NOT NULL DEFAULT FALSE,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		participant_count INTEGER NOT NULL DEFAULT 0,
		artifact_name TEXT NOT NULL DEFAULT '',
		error_detail TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_harvest_runs_started ON harvest_runs (started_at DESC)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
