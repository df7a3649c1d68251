package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens (and migrates) a SQLite revision store. Use ":memory:" for
// an in-memory database.
func Open(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts a new revision inside a transaction so the monotonicity
// check and the insert are atomic.
func (s *SQLiteStore) Save(ctx context.Context, rev *Revision) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var latest sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM revisions WHERE slug = ?`, rev.Slug,
	).Scan(&latest)
	if err != nil {
		return fmt.Errorf("failed to read latest version: %w", err)
	}
	if latest.Valid && rev.Version <= int(latest.Int64) {
		return &VersionConflictError{Slug: rev.Slug, Latest: int(latest.Int64), Proposed: rev.Version}
	}

	if rev.ID == "" {
		rev.ID = uuid.New().String()
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO revisions (id, slug, version, title, owner, raw, created_at, access_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		rev.ID, rev.Slug, rev.Version, rev.Title, rev.Owner, rev.Raw, rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert revision: %w", err)
	}

	return tx.Commit()
}

// Latest returns the newest revision for a slug and bumps its access
// count.
func (s *SQLiteStore) Latest(ctx context.Context, slug string) (*Revision, error) {
	rev, err := s.scanOne(ctx,
		`SELECT id, slug, version, title, owner, raw, created_at, access_count
		 FROM revisions WHERE slug = ? ORDER BY version DESC LIMIT 1`, slug)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE revisions SET access_count = access_count + 1 WHERE id = ?`, rev.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to bump access count: %w", err)
	}
	rev.AccessCount++
	return rev, nil
}

// Version returns one specific revision.
func (s *SQLiteStore) Version(ctx context.Context, slug string, version int) (*Revision, error) {
	return s.scanOne(ctx,
		`SELECT id, slug, version, title, owner, raw, created_at, access_count
		 FROM revisions WHERE slug = ? AND version = ?`, slug, version)
}

// History returns all revisions for a slug, newest first.
func (s *SQLiteStore) History(ctx context.Context, slug string) ([]*Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, version, title, owner, raw, created_at, access_count
		 FROM revisions WHERE slug = ? ORDER BY version DESC`, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	revs, err := scanRevisions(rows)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, ErrNotFound
	}
	return revs, nil
}

// List returns the latest revision per slug, ordered by slug. Raw bytes
// are not loaded.
func (s *SQLiteStore) List(ctx context.Context) ([]*Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, version, title, owner, created_at, access_count
		 FROM revisions r
		 WHERE version = (SELECT MAX(version) FROM revisions WHERE slug = r.slug)
		 ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards: %w", err)
	}
	defer rows.Close()

	var revs []*Revision
	for rows.Next() {
		rev := &Revision{}
		if err := rows.Scan(&rev.ID, &rev.Slug, &rev.Version, &rev.Title, &rev.Owner,
			&rev.CreatedAt, &rev.AccessCount); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

// Delete removes a dashboard and its whole history.
func (s *SQLiteStore) Delete(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM revisions WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete dashboard: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) scanOne(ctx context.Context, query string, args ...any) (*Revision, error) {
	rev := &Revision{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&rev.ID, &rev.Slug, &rev.Version, &rev.Title, &rev.Owner,
		&rev.Raw, &rev.CreatedAt, &rev.AccessCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan revision: %w", err)
	}
	return rev, nil
}

func scanRevisions(rows *sql.Rows) ([]*Revision, error) {
	var revs []*Revision
	for rows.Next() {
		rev := &Revision{}
		if err := rows.Scan(&rev.ID, &rev.Slug, &rev.Version, &rev.Title, &rev.Owner,
			&rev.Raw, &rev.CreatedAt, &rev.AccessCount); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}
