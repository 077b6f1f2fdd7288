// Package persistence provides SQLite-backed append-only storage for
// completed intake submissions. It stands in for the spreadsheet store the
// original service appended rows to: save once per user, check for a prior
// row before saving again.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"intakebot/pkg/logx"
)

// Store wraps the submissions database.
type Store struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open opens (creating if needed) the submissions database at dbPath with
// WAL mode and a busy timeout, and brings the schema to the current version.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_foreign_keys=ON&_journal_mode=WAL&_busy_timeout=5000",
		dbPath,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initializeSchemaWithMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	logger := logx.NewLogger("persistence")
	logger.Info("submissions database ready: %s", dbPath)

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Exists reports whether a submission already exists for the user.
func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM submissions WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check submission for user %s: %w", userID, err)
	}
	return count > 0, nil
}

// Save appends a submission row.
func (s *Store) Save(ctx context.Context, sub *Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, user_id, name, email, phone, major, country, documents, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.Name, sub.Email, sub.Phone, sub.Major,
		sub.Country, documentsColumn(sub.Documents), sub.Status, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save submission %s: %w", sub.ID, err)
	}

	s.logger.Info("submission saved: %s (user %s)", sub.ID, sub.UserID)
	return nil
}

// GetByUser returns the user's submission, or nil when none exists.
func (s *Store) GetByUser(ctx context.Context, userID string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, email, phone, major, country, documents, status, created_at
		FROM submissions WHERE user_id = ? ORDER BY created_at LIMIT 1`, userID)

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission for user %s: %w", userID, err)
	}
	return sub, nil
}

// List returns submissions ordered newest first, optionally filtered by
// status (empty status means all).
func (s *Store) List(ctx context.Context, status string, limit int) ([]*Submission, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, user_id, name, email, phone, major, country, documents, status, created_at
		FROM submissions`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return subs, nil
}

// Count returns the total number of submissions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM submissions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanSubmission.
type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var sub Submission
	var documents string
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Name, &sub.Email, &sub.Phone,
		&sub.Major, &sub.Country, &documents, &sub.Status, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.Documents = documentsFromColumn(documents)
	return &sub, nil
}
