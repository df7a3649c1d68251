// Package executor runs a dashboard's planned queries and materializes
// their results. The local runner speaks database/sql, which keeps the
// warehouse behind a driver name; production traffic goes to BigQuery
// through the gateway, this package serves authoring-time previews.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/peterhq/peter/pkg/compile"
)

// Runner executes one SQL statement and materializes its rows.
type Runner interface {
	Run(ctx context.Context, query string) (*compile.Rows, error)
	Close() error
}

// DBRunner runs queries against any database/sql connection.
type DBRunner struct {
	db *sql.DB
}

// NewDBRunner wraps an open connection. The runner takes ownership and
// closes it on Close.
func NewDBRunner(db *sql.DB) *DBRunner {
	return &DBRunner{db: db}
}

// Run executes the query and scans every row into a generic record set.
func (r *DBRunner) Run(ctx context.Context, query string) (*compile.Rows, error) {
	start := time.Now()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := &compile.Rows{Columns: cols}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record := make(compile.Row, len(cols))
		for i, col := range cols {
			record[col] = normalize(values[i])
		}
		out.Records = append(out.Records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	out.Meta.RowCount = len(out.Records)
	out.Meta.DurationMS = time.Since(start).Milliseconds()
	return out, nil
}

// Close closes the underlying connection.
func (r *DBRunner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// normalize converts driver values into JSON-friendly types. Byte slices
// become strings, everything else passes through.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

var _ Runner = (*DBRunner)(nil)
