// Package history archives finished gradings in a local SQLite file.
// The archive feeds the Prometheus exporter and lets an operator replay
// past submissions after the grading rules change.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one archived grading.
type Entry struct {
	ID         int64
	GradedAt   time.Time
	Slug       string
	QuestionID int
	StudentSQL string
	Verdict    string
	Valid      bool
}

const schema = `
CREATE TABLE IF NOT EXISTS gradings (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	graded_at   TIMESTAMP NOT NULL,
	slug        TEXT      NOT NULL,
	question_id INTEGER   NOT NULL,
	student_sql TEXT      NOT NULL,
	verdict     TEXT      NOT NULL,
	valid       BOOLEAN   NOT NULL
);
CREATE INDEX IF NOT EXISTS gradings_verdict ON gradings (verdict);
CREATE INDEX IF NOT EXISTS gradings_question ON gradings (slug, question_id);
`

// Store is the grading archive. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the archive at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record archives one grading and returns its row id.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	gradedAt := entry.GradedAt
	if gradedAt.IsZero() {
		gradedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO gradings (graded_at, slug, question_id, student_sql, verdict, valid)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		gradedAt, entry.Slug, entry.QuestionID, entry.StudentSQL, entry.Verdict, entry.Valid)
	if err != nil {
		return 0, fmt.Errorf("record grading: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read grading id: %w", err)
	}

	return id, nil
}

// ListLatest returns the most recent gradings, newest first. A limit of
// zero or less returns everything.
func (s *Store) ListLatest(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, graded_at, slug, question_id, student_sql, verdict, valid
		  FROM gradings ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gradings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.GradedAt, &entry.Slug, &entry.QuestionID,
			&entry.StudentSQL, &entry.Verdict, &entry.Valid); err != nil {
			return nil, fmt.Errorf("scan grading: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// CountByVerdict returns the number of archived gradings per verdict.
func (s *Store) CountByVerdict(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT verdict, COUNT(*) FROM gradings GROUP BY verdict`)
	if err != nil {
		return nil, fmt.Errorf("count gradings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var verdict string
		var count int64
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, fmt.Errorf("scan verdict count: %w", err)
		}
		counts[verdict] = count
	}

	return counts, rows.Err()
}

// CountByQuestion returns attempt and pass counts per question.
func (s *Store) CountByQuestion(ctx context.Context) (map[string]QuestionStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, question_id, COUNT(*), SUM(valid)
		 FROM gradings GROUP BY slug, question_id`)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]QuestionStats)
	for rows.Next() {
		var slug string
		var questionID int
		var s QuestionStats
		if err := rows.Scan(&slug, &questionID, &s.Attempts, &s.Passes); err != nil {
			return nil, fmt.Errorf("scan question count: %w", err)
		}
		s.Slug, s.QuestionID = slug, questionID
		stats[fmt.Sprintf("%s/%d", slug, questionID)] = s
	}

	return stats, rows.Err()
}

// QuestionStats aggregates archived gradings of one question.
type QuestionStats struct {
	Slug       string
	QuestionID int
	Attempts   int64
	Passes     int64
}
