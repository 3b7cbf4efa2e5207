// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog keeps an optional local ledger of run summaries in
// SQLite. Only counts and timestamps are stored; dataset and session
// data never touch disk.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dcat-sync/internal/reconcile"
)

// Entry is one recorded run.
type Entry struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Created    int
	Updated    int
	Unchanged  int
	Retired    int
	Failed     int
	DryRun     bool
}

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		created INTEGER NOT NULL,
		updated INTEGER NOT NULL,
		unchanged INTEGER NOT NULL,
		retired INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		dry_run INTEGER NOT NULL
	)`)
	return err
}

// Record appends one run summary to the ledger.
func (s *Store) Record(started, finished time.Time, sum reconcile.Summary, dryRun bool) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (started_at, finished_at, created, updated, unchanged, retired, failed, dry_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		started.UTC().Format(time.RFC3339),
		finished.UTC().Format(time.RFC3339),
		sum.Created, sum.Updated, sum.Unchanged, sum.Retired, len(sum.Errors),
		boolToInt(dryRun),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// List returns the most recent n runs, newest first.
func (s *Store) List(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, created, updated, unchanged, retired, failed, dry_run
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished string
		var dryRun int
		if err := rows.Scan(&e.ID, &started, &finished, &e.Created, &e.Updated, &e.Unchanged, &e.Retired, &e.Failed, &dryRun); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		e.StartedAt, _ = time.Parse(time.RFC3339, started)
		e.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		e.DryRun = dryRun != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
