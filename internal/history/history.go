// Package history persists capture runs to a local SQLite database.
// Recording is best-effort: callers discard errors, and a missing or
// broken database never affects a capture run.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database connection.
type Store struct {
	conn *sql.DB
	path string
}

// DefaultPath returns ~/.gitshot/gitshot.db, creating the directory if
// needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dir := filepath.Join(home, ".gitshot")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	return filepath.Join(dir, "gitshot.db"), nil
}

// Open opens or creates the database at the given path and applies the
// schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    project     TEXT NOT NULL,
    started_at  TEXT NOT NULL DEFAULT (datetime('now')),
    finished_at TEXT,
    total       INTEGER NOT NULL DEFAULT 0,
    succeeded   INTEGER NOT NULL DEFAULT 0,
    failed      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS captures (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       INTEGER NOT NULL REFERENCES runs(id),
    name         TEXT NOT NULL,
    filename     TEXT NOT NULL,
    path         TEXT,
    commit_hash  TEXT NOT NULL,
    commit_index INTEGER NOT NULL,
    status       TEXT NOT NULL CHECK(status IN ('success','error')),
    error        TEXT,
    timestamp    TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_captures_run ON captures(run_id);
`

func (s *Store) migrate() error {
	var count int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = 1").Scan(&count)
	if err == nil && count > 0 {
		return nil
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("apply schema v1: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// CaptureRecord is one persisted capture outcome.
type CaptureRecord struct {
	Name        string
	Filename    string
	Path        string
	Commit      string
	CommitIndex int
	Status      string
	Error       string
}

// BeginRun inserts a run row and returns its id.
func (s *Store) BeginRun(project string) (int64, error) {
	res, err := s.conn.Exec("INSERT INTO runs (project) VALUES (?)", project)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// RecordCapture appends one capture outcome to a run.
func (s *Store) RecordCapture(runID int64, r CaptureRecord) error {
	_, err := s.conn.Exec(`
		INSERT INTO captures (run_id, name, filename, path, commit_hash, commit_index, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Name, r.Filename, r.Path, r.Commit, r.CommitIndex, r.Status, r.Error)
	if err != nil {
		return fmt.Errorf("insert capture: %w", err)
	}
	return nil
}

// FinishRun stamps the run's totals and completion time.
func (s *Store) FinishRun(runID int64, total, succeeded, failed int) error {
	_, err := s.conn.Exec(`
		UPDATE runs SET finished_at = datetime('now'), total = ?, succeeded = ?, failed = ?
		WHERE id = ?`,
		total, succeeded, failed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RunCaptures returns the capture records of a run, oldest first.
func (s *Store) RunCaptures(runID int64) ([]CaptureRecord, error) {
	rows, err := s.conn.Query(`
		SELECT name, filename, COALESCE(path, ''), commit_hash, commit_index, status, COALESCE(error, '')
		FROM captures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query captures: %w", err)
	}
	defer rows.Close()

	var out []CaptureRecord
	for rows.Next() {
		var r CaptureRecord
		if err := rows.Scan(&r.Name, &r.Filename, &r.Path, &r.Commit, &r.CommitIndex, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
