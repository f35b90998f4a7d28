// Package sqlite persists an audit trail of submitted reviews. The store is
// optional: review flow never depends on it, failures are logged upstream.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/usecase/review"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements review.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ review.Store = (*Store)(nil)

// NewStore creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		pr_number INTEGER NOT NULL,
		commit_sha TEXT NOT NULL,
		event TEXT NOT NULL,
		summary TEXT,
		comments INTEGER NOT NULL DEFAULT 0,
		submitted_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_repo_pr ON submissions(owner, repo, pr_number);
	CREATE INDEX IF NOT EXISTS idx_submissions_time ON submissions(submitted_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordSubmission stores one submitted review.
func (s *Store) RecordSubmission(ctx context.Context, submission review.Submission) error {
	query := `
		INSERT INTO submissions (owner, repo, pr_number, commit_sha, event, summary, comments, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		submission.Owner,
		submission.Repo,
		submission.PRNumber,
		submission.CommitSHA,
		submission.Event,
		submission.Summary,
		submission.Comments,
		submission.SubmittedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// ListSubmissions returns the audit records for one pull request, newest first.
func (s *Store) ListSubmissions(ctx context.Context, owner, repo string, prNumber int) ([]review.Submission, error) {
	query := `
		SELECT owner, repo, pr_number, commit_sha, event, summary, comments, submitted_at
		FROM submissions
		WHERE owner = ? AND repo = ? AND pr_number = ?
		ORDER BY submitted_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []review.Submission
	for rows.Next() {
		var sub review.Submission
		var submittedAt int64
		if err := rows.Scan(&sub.Owner, &sub.Repo, &sub.PRNumber, &sub.CommitSHA,
			&sub.Event, &sub.Summary, &sub.Comments, &submittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		sub.SubmittedAt = time.Unix(submittedAt, 0)
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
