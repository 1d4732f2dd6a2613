package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// NewRunID generates a new ULID-based evaluation-run identifier.
func NewRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// RecordEvaluation inserts an evaluation-run audit record.
func (s *SQLiteStore) RecordEvaluation(ctx context.Context, run *EvaluationRun) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluation_runs (
			id, schedule_name, trigger_type, expr, range_start, range_end,
			result_count, error_msg, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		nullString(run.ScheduleName),
		run.Trigger,
		nullString(run.Expr),
		run.RangeStart,
		run.RangeEnd,
		run.ResultCount,
		nullString(run.ErrorMsg),
		run.DurationMs,
		formatTime(run.CreatedAt),
	)
	return err
}

const selectEvalCols = `id, schedule_name, trigger_type, expr, range_start, range_end,
	result_count, error_msg, duration_ms, created_at`

func (s *SQLiteStore) scanEvaluation(row interface{ Scan(...any) error }) (*EvaluationRun, error) {
	var r EvaluationRun
	var createdAt string
	var scheduleName, expr, errorMsg sql.NullString

	err := row.Scan(
		&r.ID,
		&scheduleName,
		&r.Trigger,
		&expr,
		&r.RangeStart,
		&r.RangeEnd,
		&r.ResultCount,
		&errorMsg,
		&r.DurationMs,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if scheduleName.Valid {
		r.ScheduleName = scheduleName.String
	}
	if expr.Valid {
		r.Expr = expr.String
	}
	if errorMsg.Valid {
		r.ErrorMsg = errorMsg.String
	}

	return &r, nil
}

// ListEvaluations returns evaluation runs matching opts, ordered by
// created_at descending.
func (s *SQLiteStore) ListEvaluations(ctx context.Context, opts ListOpts) ([]*EvaluationRun, error) {
	query := "SELECT " + selectEvalCols + " FROM evaluation_runs"
	var args []any

	if opts.ScheduleName != "" {
		query += " WHERE schedule_name = ?"
		args = append(args, opts.ScheduleName)
	}
	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*EvaluationRun
	for rows.Next() {
		r, err := s.scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveSchedule inserts or updates a persisted schedule.
func (s *SQLiteStore) SaveSchedule(ctx context.Context, sched *PersistedSchedule) error {
	now := time.Now().UTC()
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = now
	}
	sched.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (name, expr, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			expr = excluded.expr,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`,
		sched.Name,
		sched.Expr,
		boolToInt(sched.Enabled),
		formatTime(sched.CreatedAt),
		formatTime(sched.UpdatedAt),
	)
	return err
}

const selectScheduleCols = `name, expr, enabled, created_at, updated_at`

func (s *SQLiteStore) scanSchedule(row interface{ Scan(...any) error }) (*PersistedSchedule, error) {
	var sched PersistedSchedule
	var enabled int
	var createdAt, updatedAt string

	if err := row.Scan(&sched.Name, &sched.Expr, &enabled, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sched.Enabled = enabled != 0

	var err error
	sched.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	sched.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &sched, nil
}

// GetSchedule retrieves a single persisted schedule by name.
func (s *SQLiteStore) GetSchedule(ctx context.Context, name string) (*PersistedSchedule, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectScheduleCols+" FROM schedules WHERE name = ?", name)
	sched, err := s.scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sched, err
}

// ListSchedules returns every persisted schedule.
func (s *SQLiteStore) ListSchedules(ctx context.Context) ([]*PersistedSchedule, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectScheduleCols+" FROM schedules ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PersistedSchedule
	for rows.Next() {
		sched, err := s.scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}

// DeleteSchedule removes a persisted schedule by name.
func (s *SQLiteStore) DeleteSchedule(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE name = ?", name)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
