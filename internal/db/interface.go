package db

import "context"

// Database defines the interface for database operations
type Database interface {
	Close() error
	Health(ctx context.Context) HealthStatus
	SaveRun(ctx context.Context, run *Run) (id int64, created bool, err error)
	GetRun(ctx context.Context, id int64) (*Run, error)
	GetRuns(ctx context.Context, limit int) ([]Run, error)
	GetRunsByTargets(ctx context.Context, targets []string) ([]Run, error)
	GetStats(ctx context.Context) (*Stats, error)
}

// Ensure DB implements Database interface
var _ Database = (*DB)(nil)
var _ Database = (*MockDB)(nil)
