package store

import "database/sql"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS evaluation_runs (
    id TEXT PRIMARY KEY,
    schedule_name TEXT,
    trigger_type TEXT NOT NULL,
    expr TEXT,
    range_start INTEGER,
    range_end INTEGER,
    result_count INTEGER,
    error_msg TEXT,
    duration_ms INTEGER,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_evaluation_runs_schedule_name ON evaluation_runs(schedule_name);
CREATE INDEX IF NOT EXISTS idx_evaluation_runs_created_at ON evaluation_runs(created_at);

CREATE TABLE IF NOT EXISTS schedules (
    name TEXT PRIMARY KEY,
    expr TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
`

// RunMigrations applies the database schema migrations.
func RunMigrations(db *sql.DB) error {
	_, err := db.Exec(migrationSQL)
	return err
}
