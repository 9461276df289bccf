// Package journal persists pass runs and per-record outcomes to a local
// SQLite file, giving operators an audit trail of what every pass did
// without digging through tracker comments.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rawdlite/onboardsync/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Store is the SQLite-backed pass journal.
// Uses WAL mode so the status command can read during a running pass.
type Store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ engine.Recorder = (*Store)(nil)

// Open creates or opens the journal database at the given path and
// applies pragmas and schema. Safe to call repeatedly.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under the engine's sequential writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the journal.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun opens a run row for a pass.
func (s *Store) BeginRun(ctx context.Context, token, pass string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (token, pass, started_at)
		VALUES (?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, token, pass, startedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordOutcome appends one per-record outcome to a run.
func (s *Store) RecordOutcome(ctx context.Context, token string, seq int, key, outcome, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_records (run_token, seq, record_key, outcome, detail)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_token, seq) DO NOTHING
	`, token, seq, key, outcome, detail)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// FinishRun closes a run row with its outcome and counters.
func (s *Store) FinishRun(ctx context.Context, token string, finishedAt time.Time, outcome string, processed, skipped, failed int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, outcome = ?, processed = ?, skipped = ?, failed = ?
		WHERE token = ?
	`, finishedAt.UTC().Format(time.RFC3339Nano), outcome, processed, skipped, failed, token)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Run is one journaled pass run.
type Run struct {
	Token      string     `json:"token"`
	Pass       string     `json:"pass"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Outcome    string     `json:"outcome,omitempty"`
	Processed  int        `json:"processed"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
}

// RunRecord is one journaled per-record outcome.
type RunRecord struct {
	Seq     int    `json:"seq"`
	Key     string `json:"key"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, pass, started_at, finished_at, outcome, processed, skipped, failed
		FROM runs
		ORDER BY started_at DESC, token DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r          Run
			startedAt  string
			finishedAt sql.NullString
			outcome    sql.NullString
		)
		if err := rows.Scan(&r.Token, &r.Pass, &startedAt, &finishedAt, &outcome, &r.Processed, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finishedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
			r.FinishedAt = &t
		}
		r.Outcome = outcome.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunRecords returns a run's per-record outcomes in recorded order.
func (s *Store) RunRecords(ctx context.Context, token string) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, record_key, outcome, detail
		FROM run_records
		WHERE run_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	records := []RunRecord{}
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.Seq, &r.Key, &r.Outcome, &r.Detail); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run records: %w", err)
	}
	return records, nil
}
