package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool using the provided DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Schema is the DDL for the render job table.
const Schema = `
CREATE TABLE IF NOT EXISTS report_jobs (
	id TEXT PRIMARY KEY,
	format TEXT NOT NULL,
	descriptor TEXT NOT NULL,
	output_key TEXT,
	status TEXT NOT NULL,
	pages INTEGER NOT NULL DEFAULT 0,
	messages TEXT[] NOT NULL DEFAULT '{}',
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_jobs_status ON report_jobs(status);`

// EnsureSchema creates the report_jobs table if needed so the server and the
// worker can start against an empty database.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
