// Package store handles SQLite persistence.
package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps SQLite access for keystroke, session and browser data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The daemon and report commands share one file; serialize writers.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS keystrokes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			app_name TEXT,
			app_bundle_id TEXT,
			char_count INTEGER NOT NULL DEFAULT 0,
			word_count INTEGER NOT NULL DEFAULT 0,
			paragraph_count INTEGER NOT NULL DEFAULT 0,
			backspace_count INTEGER NOT NULL DEFAULT 0,
			browser_domain TEXT,
			browser_url TEXT,
			UNIQUE(timestamp, app_bundle_id)
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			start_time INTEGER NOT NULL,
			end_time INTEGER,
			char_count INTEGER NOT NULL DEFAULT 0,
			word_count INTEGER NOT NULL DEFAULT 0,
			wpm_avg REAL,
			wpm_peak REAL
		);`,
		`CREATE TABLE IF NOT EXISTS browser_context (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			browser_name TEXT NOT NULL,
			url TEXT,
			domain TEXT,
			page_title TEXT,
			last_updated INTEGER NOT NULL,
			UNIQUE(browser_name)
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			pid INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_keystrokes_timestamp ON keystrokes(timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_keystrokes_app ON keystrokes(app_bundle_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}
