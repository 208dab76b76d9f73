// Package store implements the record store adapter on SQLite: an append-only
// table of question/answer records keyed by the normalized question. The
// matching core never mutates or deletes records; InsertIfAbsent is the only
// write path.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// QARecord is one stored question/answer unit. Records are immutable once
// written: no update or delete path exists.
type QARecord struct {
	ID                 string `json:"id"`
	Question           string `json:"question"` // verbatim user text
	QuestionNormalized string `json:"question_normalized"`
	Answer             string `json:"answer"`
	Source             string `json:"source"` // provenance: manual, import, ocr
	CreatedAt          int64  `json:"created_at"`
}

// NewQARecord builds a record with a fresh ID and creation timestamp. The
// caller supplies the normalized form; it must come from the same normalizer
// used at query time.
func NewQARecord(question, normalized, answer, source string) QARecord {
	return QARecord{
		ID:                 uuid.NewString(),
		Question:           question,
		QuestionNormalized: normalized,
		Answer:             answer,
		Source:             source,
		CreatedAt:          time.Now().Unix(),
	}
}

// DB is the SQLite-backed record store.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// qa_records table exists.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open record db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS qa_records (
		id                  TEXT PRIMARY KEY,
		question            TEXT NOT NULL,
		question_normalized TEXT NOT NULL UNIQUE,
		answer              TEXT NOT NULL,
		source              TEXT NOT NULL DEFAULT 'manual',
		created_at          INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create qa_records table: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying SQLite handle.
func (s *DB) Close() error {
	return s.db.Close()
}

// Ping reports whether the store is reachable.
func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertIfAbsent appends a record unless one with the same normalized
// question already exists. Returns false on a duplicate. The UNIQUE key on
// question_normalized also resolves racing inserts between the caller's
// duplicate check and the write.
func (s *DB) InsertIfAbsent(ctx context.Context, rec QARecord) (bool, error) {
	const q = `INSERT INTO qa_records (id, question, question_normalized, answer, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(question_normalized) DO NOTHING`

	res, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.Question, rec.QuestionNormalized, rec.Answer, rec.Source, rec.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert record: rows affected: %w", err)
	}
	return n > 0, nil
}

const recordCols = `id, question, question_normalized, answer, source, created_at`

// QueryExact returns the record whose normalized question equals the given
// key, or nil if none exists.
func (s *DB) QueryExact(ctx context.Context, normalized string) (*QARecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordCols+` FROM qa_records WHERE question_normalized = ?`, normalized)
	return scanOne(row)
}

// QueryCompact returns the record whose normalized question, with spaces and
// underscores removed, equals the given compact key. Lets the matcher run its
// alternate-normalization comparison without a table scan in the core.
func (s *DB) QueryCompact(ctx context.Context, compact string) (*QARecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordCols+` FROM qa_records
		 WHERE replace(replace(question_normalized, ' ', ''), '_', '') = ?
		 ORDER BY rowid LIMIT 1`, compact)
	return scanOne(row)
}

// QueryContainingAny returns up to limit records whose normalized question
// contains at least one of the given keywords as a substring, in insertion
// order so that score ties break deterministically.
func (s *DB) QueryContainingAny(ctx context.Context, keywords []string, limit int) ([]QARecord, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	conds := make([]string, 0, len(keywords))
	args := make([]any, 0, len(keywords)+1)
	for _, kw := range keywords {
		conds = append(conds, `question_normalized LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(kw)+"%")
	}
	args = append(args, limit)

	q := `SELECT ` + recordCols + ` FROM qa_records WHERE ` +
		strings.Join(conds, " OR ") + ` ORDER BY rowid LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var records []QARecord
	for rows.Next() {
		var rec QARecord
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.QuestionNormalized,
			&rec.Answer, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of stored records.
func (s *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qa_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func scanOne(row *sql.Row) (*QARecord, error) {
	var rec QARecord
	err := row.Scan(&rec.ID, &rec.Question, &rec.QuestionNormalized,
		&rec.Answer, &rec.Source, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	return &rec, nil
}

// escapeLike escapes LIKE wildcards in a keyword so it matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
