// Package plan builds the query execution plan for a dashboard.
//
// The plan is what the execution collaborator consumes: one entry per
// query with a normalized content hash (the cache key), the widgets
// depending on it, and an execution order. All queries in a document are
// independent today, so every entry carries order zero and the strategy
// is parallel.
package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/peterhq/peter/pkg/schema"
)

// StrategyParallel is the only execution strategy currently emitted.
const StrategyParallel = "parallel"

// hashLen is the number of hex characters kept from the query hash.
const hashLen = 16

// Query is one planned query execution.
type Query struct {
	ID               string           `json:"id"`
	Hash             string           `json:"hash"`
	Warehouse        schema.Warehouse `json:"warehouse"`
	SQL              string           `json:"sql"`
	DependentWidgets []string         `json:"dependent_widgets"`
	Order            int              `json:"order"`
}

// WidgetRef is the per-widget slice of the plan.
type WidgetRef struct {
	ID       string              `json:"id"`
	Type     schema.WidgetType   `json:"type"`
	QueryRef string              `json:"query_ref"`
	Position schema.GridPosition `json:"position"`
}

// Plan is the compiled execution plan for one dashboard revision.
type Plan struct {
	Slug       string      `json:"slug"`
	Version    int         `json:"version"`
	Strategy   string      `json:"strategy"`
	Queries    []Query     `json:"queries"`
	Widgets    []WidgetRef `json:"widgets"`
	CompiledAt time.Time   `json:"compiled_at"`
}

// Build compiles a plan from a validated document. Query and widget
// order follow document order.
func Build(doc *schema.Document) *Plan {
	p := &Plan{
		Slug:       doc.Slug,
		Version:    doc.Version,
		Strategy:   StrategyParallel,
		CompiledAt: time.Now().UTC(),
	}

	for _, q := range doc.Queries {
		var dependents []string
		for _, item := range doc.Layout {
			if item.QueryRef == q.ID {
				dependents = append(dependents, item.ID)
			}
		}
		p.Queries = append(p.Queries, Query{
			ID:               q.ID,
			Hash:             HashQuery(q.SQL),
			Warehouse:        q.Warehouse,
			SQL:              q.SQL,
			DependentWidgets: dependents,
			Order:            0,
		})
	}

	for _, item := range doc.Layout {
		p.Widgets = append(p.Widgets, WidgetRef{
			ID:       item.ID,
			Type:     item.Type,
			QueryRef: item.QueryRef,
			Position: item.Style.Position,
		})
	}

	return p
}

// HashQuery returns the cache key for a SQL statement: SHA-256 over the
// whitespace-normalized, lowercased text, truncated to 16 hex chars.
// Formatting-only edits therefore keep their cache entries.
func HashQuery(sql string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(sql), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:hashLen]
}
