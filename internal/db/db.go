package db

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"matrix-bruteforce/internal/bruteforce"
	"matrix-bruteforce/internal/cipher"
)

// Common errors
var (
	ErrConnectionFailed = errors.New("database connection failed")
	ErrQueryTimeout     = errors.New("query timeout")
	ErrPoolExhausted    = errors.New("connection pool exhausted")
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("duplicate run")
)

// Run is one persisted search for a single target character
type Run struct {
	ID         int64              `json:"id"`
	Target     string             `json:"target"`
	Code       int                `json:"code"`
	Checks     int64              `json:"checks"`
	Digest     string             `json:"digest"`
	MatchCount int                `json:"match_count"`
	Matches    []bruteforce.Match `json:"matches,omitempty"`
	CreatedAt  string             `json:"created_at"`
}

// Stats holds statistics
type Stats struct {
	TotalRuns    int  `json:"total_runs"`
	TotalMatches int  `json:"total_matches"`
	Targets      int  `json:"targets"`
	Healthy      bool `json:"healthy"`
}

// HealthStatus represents database health
type HealthStatus struct {
	Connected       bool   `json:"connected"`
	LatencyMs       int64  `json:"latency_ms"`
	OpenConnections int    `json:"open_connections"`
	Error           string `json:"error,omitempty"`
}

// DB wraps database operations
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(1 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		-- One row per distinct (target, result) pair
		CREATE TABLE IF NOT EXISTS search_runs (
			id BIGSERIAL PRIMARY KEY,
			target_char TEXT NOT NULL,
			code INT NOT NULL,
			checks BIGINT NOT NULL,
			match_count INT NOT NULL,
			digest BYTEA NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(target_char, digest)
		);
		CREATE INDEX IF NOT EXISTS idx_search_runs_target ON search_runs(target_char);

		-- Matches in discovery order
		CREATE TABLE IF NOT EXISTS matches (
			run_id BIGINT NOT NULL REFERENCES search_runs(id) ON DELETE CASCADE,
			seq INT NOT NULL,
			rand1 INT NOT NULL,
			rand2 INT NOT NULL,
			ciphertext_index INT NOT NULL,
			r0 BIGINT NOT NULL,
			r1 BIGINT NOT NULL,
			r2 BIGINT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);
	`)
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Health checks database connectivity
func (db *DB) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{}
	start := time.Now()
	err := db.conn.PingContext(ctx)
	status.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Connected = true
	status.OpenConnections = db.conn.Stats().OpenConnections
	return status
}

func (db *DB) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case "53300":
			return fmt.Errorf("%w: %v", ErrPoolExhausted, err)
		case "57014":
			return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return err
}

// hexToBytes converts hex string (with or without 0x) to bytes
func hexToBytes(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	b, _ := hex.DecodeString(s)
	return b
}

// bytesToHex converts bytes to 0x-prefixed hex string
func bytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// SaveRun stores run and its matches. A run whose (target, digest) pair is
// already stored is not written again; the existing id is returned with
// created=false.
func (db *DB) SaveRun(ctx context.Context, run *Run) (int64, bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, db.wrapError(err)
	}
	defer tx.Rollback()

	digest := hexToBytes(run.Digest)
	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO search_runs (target_char, code, checks, match_count, digest)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (target_char, digest) DO NOTHING
		 RETURNING id`,
		run.Target, run.Code, run.Checks, len(run.Matches), digest).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		// Same result already stored
		err = tx.QueryRowContext(ctx,
			"SELECT id FROM search_runs WHERE target_char = $1 AND digest = $2",
			run.Target, digest).Scan(&id)
		if err != nil {
			return 0, false, db.wrapError(err)
		}
		run.ID = id
		return id, false, db.wrapError(tx.Commit())
	}
	if err != nil {
		return 0, false, db.wrapError(err)
	}

	if len(run.Matches) > 0 {
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("matches",
			"run_id", "seq", "rand1", "rand2", "ciphertext_index", "r0", "r1", "r2"))
		if err != nil {
			return 0, false, db.wrapError(err)
		}
		for i, m := range run.Matches {
			if _, err := stmt.ExecContext(ctx, id, i, m.Rand1, m.Rand2, m.Ciphertext,
				m.Residual[0], m.Residual[1], m.Residual[2]); err != nil {
				stmt.Close()
				return 0, false, db.wrapError(err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return 0, false, db.wrapError(err)
		}
		if err := stmt.Close(); err != nil {
			return 0, false, db.wrapError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, db.wrapError(err)
	}
	run.ID = id
	run.MatchCount = len(run.Matches)
	return id, true, nil
}

const runColumns = "id, target_char, code, checks, match_count, digest, created_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var digest []byte
	var createdAt time.Time
	if err := row.Scan(&run.ID, &run.Target, &run.Code, &run.Checks,
		&run.MatchCount, &digest, &createdAt); err != nil {
		return run, err
	}
	run.Digest = bytesToHex(digest)
	run.CreatedAt = createdAt.Format(time.RFC3339)
	return run, nil
}

// GetRun returns a run with its matches
func (db *DB) GetRun(ctx context.Context, id int64) (*Run, error) {
	run, err := scanRun(db.conn.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM search_runs WHERE id = $1", id))
	if err != nil {
		return nil, db.wrapError(err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT rand1, rand2, ciphertext_index, r0, r1, r2
		 FROM matches WHERE run_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, db.wrapError(err)
	}
	defer rows.Close()

	run.Matches = []bruteforce.Match{}
	for rows.Next() {
		var m bruteforce.Match
		var r cipher.Vector
		if err := rows.Scan(&m.Rand1, &m.Rand2, &m.Ciphertext, &r[0], &r[1], &r[2]); err != nil {
			return nil, db.wrapError(err)
		}
		m.Residual = r
		run.Matches = append(run.Matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, db.wrapError(err)
	}
	return &run, nil
}

func (db *DB) queryRuns(ctx context.Context, query string, args ...interface{}) ([]Run, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.wrapError(err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}
	return runs, db.wrapError(rows.Err())
}

// GetRuns returns the most recent runs without their matches
func (db *DB) GetRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	return db.queryRuns(ctx,
		"SELECT "+runColumns+" FROM search_runs ORDER BY id DESC LIMIT $1", limit)
}

// GetRunsByTargets returns the runs for any of the given target characters
func (db *DB) GetRunsByTargets(ctx context.Context, targets []string) ([]Run, error) {
	return db.queryRuns(ctx,
		"SELECT "+runColumns+" FROM search_runs WHERE target_char = ANY($1) ORDER BY id DESC",
		pq.Array(targets))
}

// GetStats returns database statistics
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Healthy: true}

	health := db.Health(ctx)
	if !health.Connected {
		stats.Healthy = false
		return stats, nil
	}

	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(match_count), 0), COUNT(DISTINCT target_char)
		 FROM search_runs`).Scan(&stats.TotalRuns, &stats.TotalMatches, &stats.Targets)
	if err != nil {
		return nil, db.wrapError(err)
	}
	return stats, nil
}
