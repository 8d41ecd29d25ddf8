// Package history is a SQLite-backed record of past runs: which commands ran,
// how they exited, and how the run ended.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome describes how a run ended.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeFailed      Outcome = "failed"
	OutcomeRestarted   Outcome = "restarted"
	OutcomeEdited      Outcome = "edited"
	OutcomeInterrupted Outcome = "interrupted"
)

// RunCommand is one command of a recorded run.
type RunCommand struct {
	Index      int
	Line       string
	ExitStatus *int
}

// Run is a recorded run.
type Run struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Outcome   Outcome
	Commands  []RunCommand
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates a history store at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS run_commands (
		run_id TEXT NOT NULL REFERENCES runs(id),
		idx INTEGER NOT NULL,
		line TEXT NOT NULL,
		exit_status INTEGER,
		PRIMARY KEY (run_id, idx)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Record inserts a completed run and its commands in one transaction.
func (s *Store) Record(run *Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, started_at, ended_at, outcome) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.EndedAt, string(run.Outcome),
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	for _, c := range run.Commands {
		var status sql.NullInt64
		if c.ExitStatus != nil {
			status = sql.NullInt64{Int64: int64(*c.ExitStatus), Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO run_commands (run_id, idx, line, exit_status) VALUES (?, ?, ?, ?)`,
			run.ID, c.Index, c.Line, status,
		); err != nil {
			return fmt.Errorf("inserting run command: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns the most recent N runs, newest first, with their commands.
func (s *Store) Recent(n int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, ended_at, outcome FROM runs ORDER BY started_at DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var outcome string
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.EndedAt, &outcome); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Outcome = Outcome(outcome)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		cmds, err := s.commandsFor(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Commands = cmds
	}
	return runs, nil
}

func (s *Store) commandsFor(runID string) ([]RunCommand, error) {
	rows, err := s.db.Query(
		`SELECT idx, line, exit_status FROM run_commands WHERE run_id = ? ORDER BY idx`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run commands: %w", err)
	}
	defer rows.Close()

	var cmds []RunCommand
	for rows.Next() {
		var c RunCommand
		var status sql.NullInt64
		if err := rows.Scan(&c.Index, &c.Line, &status); err != nil {
			return nil, fmt.Errorf("scanning run command: %w", err)
		}
		if status.Valid {
			code := int(status.Int64)
			c.ExitStatus = &code
		}
		cmds = append(cmds, c)
	}
	return cmds, rows.Err()
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}
