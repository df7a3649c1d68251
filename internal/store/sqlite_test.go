package store

import (
	"context"
	"errors"
	"testing"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRevision(slug string, version int) *Revision {
	return &Revision{
		Slug:    slug,
		Version: version,
		Title:   "Revenue",
		Owner:   "data-team",
		Raw:     []byte("version: 1\nkind: dashboard\n"),
	}
}

func TestSQLiteStore_OpenMigrates(t *testing.T) {
	s := setupTestStore(t)

	v, err := s.MigrationVersion()
	if err != nil {
		t.Fatalf("failed to read migration version: %v", err)
	}
	if v < 1 {
		t.Errorf("expected schema version >= 1, got %d", v)
	}
}

func TestSQLiteStore_SaveAndLatest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rev := testRevision("revenue", 1)
	if err := s.Save(ctx, rev); err != nil {
		t.Fatalf("failed to save revision: %v", err)
	}
	if rev.ID == "" {
		t.Error("expected generated revision id")
	}
	if rev.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := s.Latest(ctx, "revenue")
	if err != nil {
		t.Fatalf("failed to get latest: %v", err)
	}
	if got.Version != 1 || got.Title != "Revenue" {
		t.Errorf("unexpected revision: %+v", got)
	}
	if string(got.Raw) != string(rev.Raw) {
		t.Errorf("raw document not round-tripped: %q", got.Raw)
	}
}

func TestSQLiteStore_VersionMonotonicity(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testRevision("revenue", 2)); err != nil {
		t.Fatalf("failed to save v2: %v", err)
	}

	tests := []struct {
		name    string
		version int
	}{
		{"same version", 2},
		{"older version", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Save(ctx, testRevision("revenue", tt.version))
			var conflict *VersionConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("expected VersionConflictError, got %v", err)
			}
			if conflict.Latest != 2 || conflict.Proposed != tt.version {
				t.Errorf("unexpected conflict detail: %+v", conflict)
			}
		})
	}

	// A higher version still goes through.
	if err := s.Save(ctx, testRevision("revenue", 3)); err != nil {
		t.Fatalf("failed to save v3: %v", err)
	}
}

func TestSQLiteStore_AccessCount(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testRevision("revenue", 1)); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	for i := 1; i <= 3; i++ {
		rev, err := s.Latest(ctx, "revenue")
		if err != nil {
			t.Fatalf("failed to get latest: %v", err)
		}
		if rev.AccessCount != i {
			t.Errorf("expected access count %d, got %d", i, rev.AccessCount)
		}
	}

	// Fetching a pinned version does not count as an access.
	rev, err := s.Version(ctx, "revenue", 1)
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if rev.AccessCount != 3 {
		t.Errorf("expected access count unchanged at 3, got %d", rev.AccessCount)
	}
}

func TestSQLiteStore_HistoryAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for v := 1; v <= 3; v++ {
		if err := s.Save(ctx, testRevision("revenue", v)); err != nil {
			t.Fatalf("failed to save v%d: %v", v, err)
		}
	}
	if err := s.Save(ctx, testRevision("churn", 1)); err != nil {
		t.Fatalf("failed to save churn: %v", err)
	}

	hist, err := s.History(ctx, "revenue")
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(hist) != 3 || hist[0].Version != 3 || hist[2].Version != 1 {
		t.Errorf("expected newest-first history, got %+v", hist)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 dashboards, got %d", len(list))
	}
	if list[0].Slug != "churn" || list[1].Slug != "revenue" {
		t.Errorf("expected slug order, got %q %q", list[0].Slug, list[1].Slug)
	}
	if list[1].Version != 3 {
		t.Errorf("expected latest version in list, got %d", list[1].Version)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testRevision("revenue", 1)); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if err := s.Delete(ctx, "revenue"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := s.Latest(ctx, "revenue"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "revenue"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.Latest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Version(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.History(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
