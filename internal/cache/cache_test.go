package cache

import (
	"context"
	"testing"
	"time"

	"github.com/peterhq/peter/pkg/compile"
	"github.com/peterhq/peter/pkg/plan"
)

func TestFileCache_RoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "k1", []byte("hello"), 0); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	data, ok, err := c.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected cached data: %q", data)
	}

	if err := c.Delete(ctx, "k1"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k1"); ok {
		t.Error("expected miss after delete")
	}
	if err := c.Delete(ctx, "k1"); err != nil {
		t.Errorf("double delete should not fail: %v", err)
	}
}

func TestFileCache_TTLExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k1", []byte("soon gone"), time.Millisecond); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok, err := c.Get(ctx, "k1"); err != nil || ok {
		t.Errorf("expected expired entry to miss, got ok=%v err=%v", ok, err)
	}
}

func TestRows_RoundTripMarksCacheHit(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	ctx := context.Background()
	hash := plan.HashQuery("SELECT day, total FROM proj.sales.daily")

	rows := &compile.Rows{
		Columns: []string{"day", "total"},
		Records: []compile.Row{{"day": "mon", "total": float64(10)}},
		Meta:    compile.Meta{RowCount: 1, BytesScanned: 1024},
	}
	if err := SetRows(ctx, c, hash, rows, time.Hour); err != nil {
		t.Fatalf("failed to cache rows: %v", err)
	}

	got, ok, err := GetRows(ctx, c, hash)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !got.Meta.CacheHit {
		t.Error("expected cache hit to be marked on the rows")
	}
	if got.Meta.RowCount != 1 || len(got.Records) != 1 {
		t.Errorf("rows not round-tripped: %+v", got)
	}
	if got.Records[0]["total"] != float64(10) {
		t.Errorf("unexpected record value: %v", got.Records[0]["total"])
	}
}

func TestSetRows_SkipsErroredResults(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	ctx := context.Background()

	if err := SetRows(ctx, c, "h1", &compile.Rows{Err: "boom"}, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := GetRows(ctx, c, "h1"); ok {
		t.Error("errored results must not be cached")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("null cache must always miss, got ok=%v err=%v", ok, err)
	}
}
