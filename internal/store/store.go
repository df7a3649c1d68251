// Package store persists dashboard revisions in SQLite. Every push
// creates an immutable revision row; the latest version per slug is the
// published dashboard. Version numbers are enforced to be strictly
// increasing per slug so that concurrent pushes cannot silently clobber
// each other.
package store

import (
	"context"
	"fmt"
	"time"
)

// Revision is one immutable pushed version of a dashboard.
type Revision struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Version     int       `json:"version"`
	Title       string    `json:"title"`
	Owner       string    `json:"owner"`
	Raw         []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	AccessCount int       `json:"access_count"`
}

// Store is the persistence boundary for dashboard revisions.
type Store interface {
	// Save inserts a new revision. It fails with a VersionConflictError
	// when the revision's version is not strictly greater than the
	// latest stored version for the slug.
	Save(ctx context.Context, rev *Revision) error

	// Latest returns the newest revision for a slug and bumps its
	// access count. Returns ErrNotFound when the slug is unknown.
	Latest(ctx context.Context, slug string) (*Revision, error)

	// Version returns one specific revision without touching access
	// counts.
	Version(ctx context.Context, slug string, version int) (*Revision, error)

	// History returns all revisions for a slug, newest first.
	History(ctx context.Context, slug string) ([]*Revision, error)

	// List returns the latest revision of every dashboard, ordered by
	// slug. Raw documents are omitted.
	List(ctx context.Context) ([]*Revision, error)

	// Delete removes a dashboard and all of its revisions.
	Delete(ctx context.Context, slug string) error

	Close() error
}

// ErrNotFound is returned when a slug or version does not exist.
var ErrNotFound = fmt.Errorf("dashboard not found")

// VersionConflictError reports a push whose version does not advance the
// stored history.
type VersionConflictError struct {
	Slug     string
	Latest   int
	Proposed int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: version %d does not advance latest version %d", e.Slug, e.Proposed, e.Latest)
}
