package importer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one row of the import_runs bookkeeping table.
type Run struct {
	ID         string
	Sheet      string
	Adapter    string
	Source     string
	Rows       int
	Ingested   int
	Duplicates int
	Rejected   int
	Error      string // empty on success
	RanAt      int64
}

// ImportLog manages the import_runs SQLite table. Keeping it in its own
// database file means sheet bookkeeping never contends with record lookups.
type ImportLog struct {
	db *sql.DB
}

// OpenImportLog opens (or creates) the SQLite database at path and ensures
// the import_runs table exists.
func OpenImportLog(path string) (*ImportLog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open import log: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS import_runs (
		id          TEXT PRIMARY KEY,
		sheet       TEXT NOT NULL,
		adapter     TEXT NOT NULL,
		source      TEXT NOT NULL,
		rows        INTEGER NOT NULL,
		ingested    INTEGER NOT NULL,
		duplicates  INTEGER NOT NULL,
		rejected    INTEGER NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		ran_at      INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create import_runs table: %w", err)
	}

	return &ImportLog{db: db}, nil
}

// Close closes the underlying SQLite handle.
func (l *ImportLog) Close() error {
	return l.db.Close()
}

// RecordRun persists the outcome of one sheet run. A missing ID or timestamp
// is filled in.
func (l *ImportLog) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RanAt == 0 {
		run.RanAt = time.Now().Unix()
	}

	const q = `INSERT INTO import_runs
		(id, sheet, adapter, source, rows, ingested, duplicates, rejected, error, ran_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := l.db.ExecContext(ctx, q,
		run.ID, run.Sheet, run.Adapter, run.Source,
		run.Rows, run.Ingested, run.Duplicates, run.Rejected, run.Error, run.RanAt)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.Sheet, err)
	}
	return nil
}

// ListRuns returns up to limit runs, most recent first.
func (l *ImportLog) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, sheet, adapter, source, rows, ingested, duplicates, rejected, error, ran_at
		 FROM import_runs ORDER BY ran_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Sheet, &r.Adapter, &r.Source,
			&r.Rows, &r.Ingested, &r.Duplicates, &r.Rejected, &r.Error, &r.RanAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
