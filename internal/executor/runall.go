package executor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peterhq/peter/internal/cache"
	"github.com/peterhq/peter/pkg/compile"
	"github.com/peterhq/peter/pkg/plan"
)

// defaultConcurrency bounds the fan-out when Options.Concurrency is
// unset.
const defaultConcurrency = 4

// Options tunes an execution pass.
type Options struct {
	// Cache holds results between passes, keyed by query hash. Nil
	// disables caching.
	Cache cache.Cache

	// TTL is how long cached results stay fresh.
	TTL time.Duration

	// Concurrency caps the number of in-flight queries.
	Concurrency int

	// Logger receives per-query progress. Nil discards.
	Logger *slog.Logger
}

// RunAll executes every query in the plan concurrently and returns a
// ResultSet with one entry per query, always. A failed query becomes an
// errored entry rather than a missing one, so downstream compilation can
// render the failure instead of dropping widgets.
func RunAll(ctx context.Context, runner Runner, p *plan.Plan, opts Options) compile.ResultSet {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	results := make(compile.ResultSet, len(p.Queries))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, q := range p.Queries {
		g.Go(func() error {
			rows := runOne(ctx, runner, q, opts, logger)
			mu.Lock()
			results[q.ID] = rows
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures live inside the result set.
	_ = g.Wait()
	return results
}

func runOne(ctx context.Context, runner Runner, q plan.Query, opts Options, logger *slog.Logger) *compile.Rows {
	if opts.Cache != nil {
		if rows, ok, err := cache.GetRows(ctx, opts.Cache, q.Hash); err == nil && ok {
			logger.DebugContext(ctx, "query served from cache", "query", q.ID, "hash", q.Hash)
			return rows
		}
	}

	rows, err := runner.Run(ctx, q.SQL)
	if err != nil {
		logger.WarnContext(ctx, "query failed", "query", q.ID, "error", err)
		return compile.Errored(err)
	}
	logger.DebugContext(ctx, "query executed",
		"query", q.ID, "rows", rows.Meta.RowCount, "duration_ms", rows.Meta.DurationMS)

	if opts.Cache != nil {
		if err := cache.SetRows(ctx, opts.Cache, q.Hash, rows, opts.TTL); err != nil {
			logger.WarnContext(ctx, "failed to cache query result", "query", q.ID, "error", err)
		}
	}
	return rows
}
