// Package store is the audit/persistence layer for schedctl: a log of
// evaluation/watch invocations and a table of named, persisted
// schedules to load the registry from at startup. It lives outside
// pkg/block and pkg/registry, which stay in-memory-only per the core
// library's no-files-or-network-surface scope; adapted from the
// teacher's internal/store run log.
package store

import (
	"context"
	"time"
)

// EvaluationRun records a single parse/evaluate/watch invocation for
// audit purposes.
type EvaluationRun struct {
	ID           string
	ScheduleName string // empty for ad hoc expr evaluations
	Trigger      string // "parse", "evaluate", "watch"
	Expr         string
	RangeStart   int64
	RangeEnd     int64
	ResultCount  int
	ErrorMsg     string
	DurationMs   int64
	CreatedAt    time.Time
}

// ListOpts controls filtering and pagination for evaluation-run queries.
type ListOpts struct {
	ScheduleName string
	Limit        int
	Offset       int
}

// PersistedSchedule is a named schedule expression saved to the store,
// the row-level counterpart of config.ScheduleDef.
type PersistedSchedule struct {
	Name      string
	Expr      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the interface for persisting evaluation audit records and
// named schedules.
type Store interface {
	RecordEvaluation(ctx context.Context, run *EvaluationRun) error
	ListEvaluations(ctx context.Context, opts ListOpts) ([]*EvaluationRun, error)

	SaveSchedule(ctx context.Context, s *PersistedSchedule) error
	GetSchedule(ctx context.Context, name string) (*PersistedSchedule, error)
	ListSchedules(ctx context.Context) ([]*PersistedSchedule, error)
	DeleteSchedule(ctx context.Context, name string) error
}
