package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/peterhq/peter/internal/cache"
	"github.com/peterhq/peter/pkg/compile"
	"github.com/peterhq/peter/pkg/plan"
	"github.com/peterhq/peter/pkg/schema"
)

func mockRunner(t *testing.T) (*DBRunner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	r := NewDBRunner(db)
	t.Cleanup(func() { r.Close() })
	return r, mock
}

func testPlan() *plan.Plan {
	return plan.Build(&schema.Document{
		Version: 1, Kind: schema.DocumentKind, Slug: "test",
		Queries: []schema.QueryDef{
			{ID: "q1", Warehouse: schema.WarehouseBigQuery, SQL: "SELECT 1"},
			{ID: "q2", Warehouse: schema.WarehouseBigQuery, SQL: "SELECT 2"},
		},
	})
}

func TestDBRunner_Run(t *testing.T) {
	r, mock := mockRunner(t)

	mock.ExpectQuery("SELECT day, total FROM sales").WillReturnRows(
		sqlmock.NewRows([]string{"day", "total"}).
			AddRow("mon", 10).
			AddRow("tue", 20))

	rows, err := r.Run(context.Background(), "SELECT day, total FROM sales")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows.Meta.RowCount != 2 {
		t.Errorf("expected 2 rows, got %d", rows.Meta.RowCount)
	}
	if len(rows.Columns) != 2 || rows.Columns[0] != "day" {
		t.Errorf("unexpected columns: %v", rows.Columns)
	}
	if rows.Records[0]["day"] != "mon" {
		t.Errorf("expected byte values normalized to strings, got %T", rows.Records[0]["day"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDBRunner_QueryError(t *testing.T) {
	r, mock := mockRunner(t)

	mock.ExpectQuery("SELECT broken").WillReturnError(errors.New("syntax error"))

	if _, err := r.Run(context.Background(), "SELECT broken"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunAll_CompleteResultSet(t *testing.T) {
	r, mock := mockRunner(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(1))
	mock.ExpectQuery("SELECT 2").WillReturnError(errors.New("quota exceeded"))

	results := RunAll(context.Background(), r, testPlan(), Options{})

	if len(results) != 2 {
		t.Fatalf("expected an entry per query, got %d", len(results))
	}
	if results["q1"].Err != "" || results["q1"].Meta.RowCount != 1 {
		t.Errorf("unexpected q1 result: %+v", results["q1"])
	}
	// The failed query is present as an errored entry, not absent.
	if results["q2"] == nil || results["q2"].Err == "" {
		t.Errorf("expected errored entry for q2, got %+v", results["q2"])
	}
}

func TestRunAll_CacheHitSkipsExecution(t *testing.T) {
	r, mock := mockRunner(t)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	p := testPlan()
	ctx := context.Background()

	// First pass executes both queries and fills the cache.
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(1))
	mock.ExpectQuery("SELECT 2").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(2))

	first := RunAll(ctx, r, p, Options{Cache: c, TTL: time.Hour})
	if first["q1"].Meta.CacheHit || first["q2"].Meta.CacheHit {
		t.Fatal("first pass must not be served from cache")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}

	// Second pass needs no database expectations at all.
	second := RunAll(ctx, r, p, Options{Cache: c, TTL: time.Hour})
	for id, rows := range second {
		if !rows.Meta.CacheHit {
			t.Errorf("query %s: expected cache hit", id)
		}
	}
}

func TestRunAll_ErroredResultsNotCached(t *testing.T) {
	r, mock := mockRunner(t)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	p := testPlan()
	ctx := context.Background()

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(1))
	mock.ExpectQuery("SELECT 2").WillReturnError(errors.New("transient"))
	RunAll(ctx, r, p, Options{Cache: c, TTL: time.Hour})

	// The failure retries on the next pass instead of being pinned.
	mock.ExpectQuery("SELECT 2").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(2))
	second := RunAll(ctx, r, p, Options{Cache: c, TTL: time.Hour})
	if second["q2"].Err != "" {
		t.Errorf("expected q2 to re-execute after failure, got %+v", second["q2"])
	}
}

func TestErroredResultHelper(t *testing.T) {
	rows := compile.Errored(errors.New("boom"))
	if rows.Err != "boom" || rows.Meta.RowCount != 0 {
		t.Errorf("unexpected errored rows: %+v", rows)
	}
}
