// Package store persists verification runs to SQLite so results survive
// restarts and the HTTP layer can list and re-serve past reports. The full
// result envelope is stored as JSON alongside the queryable summary
// columns.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lulf87/pdf-report-checker-sub000/internal/inspection"
	"github.com/lulf87/pdf-report-checker-sub000/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	document_id   TEXT NOT NULL,
	filename      TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL,
	has_table     INTEGER NOT NULL DEFAULT 0,
	total_items   INTEGER NOT NULL DEFAULT 0,
	total_clauses INTEGER NOT NULL DEFAULT 0,
	error_count   INTEGER NOT NULL DEFAULT 0,
	warning_count INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	result        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
`

// RunSummary is the listing row: everything except the stored envelope.
type RunSummary struct {
	RunID        string    `json:"run_id" db:"run_id"`
	DocumentID   string    `json:"document_id" db:"document_id"`
	Filename     string    `json:"filename" db:"filename"`
	State        string    `json:"state" db:"state"`
	HasTable     bool      `json:"has_table" db:"has_table"`
	TotalItems   int       `json:"total_items" db:"total_items"`
	TotalClauses int       `json:"total_clauses" db:"total_clauses"`
	ErrorCount   int       `json:"error_count" db:"error_count"`
	WarningCount int       `json:"warning_count" db:"warning_count"`
	CreatedAt    time.Time `json:"created_at" db:"-"`
}

// Store wraps the SQLite handle. A single writer connection keeps WAL-mode
// SQLite honest under concurrent HTTP handlers.
type Store struct {
	db *sqlx.DB
}

func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the handle for health checks.
func (s *Store) Ping() error { return s.db.Ping() }

// SaveRun persists a completed verification run and returns its id.
func (s *Store) SaveRun(res report.VerificationResult) (string, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	runID := newRunID()
	_, err = s.db.Exec(`INSERT INTO runs
		(run_id, document_id, filename, state, has_table, total_items, total_clauses, error_count, warning_count, created_at, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		res.DocumentID,
		res.Filename,
		string(res.State),
		boolToInt(res.Inspection.HasTable),
		res.Inspection.TotalItems,
		res.Inspection.TotalClauses,
		res.ErrorCount(inspection.SeverityError),
		res.ErrorCount(inspection.SeverityWarning),
		time.Now().UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// GetRun loads a stored envelope by run id.
func (s *Store) GetRun(runID string) (report.VerificationResult, error) {
	var payload string
	err := s.db.Get(&payload, "SELECT result FROM runs WHERE run_id = ?", runID)
	if errors.Is(err, sql.ErrNoRows) {
		return report.VerificationResult{}, ErrRunNotFound
	}
	if err != nil {
		return report.VerificationResult{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	var res report.VerificationResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return report.VerificationResult{}, fmt.Errorf("unmarshal run %s: %w", runID, err)
	}
	return res, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT run_id, document_id, filename, state, has_table,
		total_items, total_clauses, error_count, warning_count, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var hasTable int
		var createdAt string
		if err := rows.Scan(&r.RunID, &r.DocumentID, &r.Filename, &r.State, &hasTable,
			&r.TotalItems, &r.TotalClauses, &r.ErrorCount, &r.WarningCount, &createdAt); err != nil {
			return nil, err
		}
		r.HasTable = hasTable != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func newRunID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return "run_" + hex.EncodeToString(b[:])
}
