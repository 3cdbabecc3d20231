package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the history in a SQLite table. It is safe for
// concurrent use.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and ensures the runs
// table exists. Pass ":memory:" for an in-memory database.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// An in-memory database exists per connection.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			run_at TEXT NOT NULL,
			source TEXT NOT NULL,
			mode TEXT NOT NULL,
			output TEXT NOT NULL DEFAULT '',
			records INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			total TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_run_at ON runs(run_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append inserts entries in one transaction.
func (s *SQLiteStore) Append(entries ...Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO runs
		(id, run_at, source, mode, output, records, skipped, rejected, total, status, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if err := e.validate(); err != nil {
			return err
		}
		if _, err := stmt.Exec(
			e.ID, e.Timestamp.UTC().Format(time.RFC3339), e.Source, e.Mode, e.Output,
			e.Records, e.Skipped, e.Rejected, e.Total.StringFixed(2), e.Status, e.Error,
		); err != nil {
			return fmt.Errorf("insert %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *SQLiteStore) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, run_at, source, mode, output, records, skipped, rejected, total, status, error
		FROM runs ORDER BY run_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			runAt, tot string
		)
		if err := rows.Scan(&e.ID, &runAt, &e.Source, &e.Mode, &e.Output,
			&e.Records, &e.Skipped, &e.Rejected, &tot, &e.Status, &e.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339, runAt); err != nil {
			return nil, fmt.Errorf("run %s: parsing run_at %q: %w", e.ID, runAt, err)
		}
		if e.Total, err = decimal.NewFromString(tot); err != nil {
			return nil, fmt.Errorf("run %s: parsing total %q: %w", e.ID, tot, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
