// Package lineage derives the lineage seed graph from a dashboard
// document: which widgets a dashboard contains, which queries they
// execute, and which warehouse tables those queries read.
//
// Table references are extracted from the SQL text with a pattern match
// on fully qualified `project.dataset.table` names. That is deliberately
// shallow, since the SQL is otherwise opaque to this toolchain, but it
// is enough to seed an external lineage service.
package lineage

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/peterhq/peter/pkg/plan"
	"github.com/peterhq/peter/pkg/schema"
)

// Node types in the seed graph.
const (
	NodeDashboard = "dashboard"
	NodeWidget    = "widget"
	NodeQuery     = "query"
	NodeTable     = "table"
)

// Edge types in the seed graph.
const (
	EdgeContains  = "contains"
	EdgeExecutes  = "executes"
	EdgeReadsFrom = "reads_from"
)

// Node is one vertex of the lineage seed graph.
type Node struct {
	Type string            `json:"type"`
	ID   string            `json:"id"`
	Meta map[string]string `json:"meta,omitempty"`
}

// Edge is one directed relation between two nodes.
type Edge struct {
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Type       string `json:"type"`
}

// Graph is the complete seed set for one dashboard.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// tableRefPattern matches BigQuery fully qualified table names, with or
// without backticks.
var tableRefPattern = regexp.MustCompile("`?([a-zA-Z0-9_-]+\\.[a-zA-Z0-9_-]+\\.[a-zA-Z0-9_-]+)`?")

// BuildSeeds derives the lineage seed graph from a validated document.
// Node and edge order is deterministic: document order for widgets and
// queries, sorted order for extracted tables.
func BuildSeeds(doc *schema.Document) *Graph {
	g := &Graph{}
	slug := doc.Slug

	g.Nodes = append(g.Nodes, Node{
		Type: NodeDashboard,
		ID:   slug,
		Meta: map[string]string{
			"title":     doc.Title,
			"owner":     doc.Owner,
			"view_type": string(doc.ViewType),
		},
	})

	for _, item := range doc.Layout {
		widgetID := fmt.Sprintf("%s:widget:%s", slug, item.ID)
		g.Nodes = append(g.Nodes, Node{
			Type: NodeWidget,
			ID:   widgetID,
			Meta: map[string]string{
				"widget_type": string(item.Type),
				"dashboard":   slug,
			},
		})
		g.Edges = append(g.Edges, Edge{
			SourceType: NodeDashboard, SourceID: slug,
			TargetType: NodeWidget, TargetID: widgetID,
			Type: EdgeContains,
		})
	}

	seenTables := make(map[string]struct{})
	for _, q := range doc.Queries {
		queryID := fmt.Sprintf("%s:query:%s", slug, q.ID)
		g.Nodes = append(g.Nodes, Node{
			Type: NodeQuery,
			ID:   queryID,
			Meta: map[string]string{
				"warehouse": string(q.Warehouse),
				"hash":      plan.HashQuery(q.SQL),
				"dashboard": slug,
			},
		})

		for _, item := range doc.Layout {
			if item.QueryRef != q.ID {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				SourceType: NodeWidget, SourceID: fmt.Sprintf("%s:widget:%s", slug, item.ID),
				TargetType: NodeQuery, TargetID: queryID,
				Type: EdgeExecutes,
			})
		}

		for _, table := range TableRefs(q.SQL) {
			if _, seen := seenTables[table]; !seen {
				seenTables[table] = struct{}{}
				g.Nodes = append(g.Nodes, Node{Type: NodeTable, ID: table})
			}
			g.Edges = append(g.Edges, Edge{
				SourceType: NodeQuery, SourceID: queryID,
				TargetType: NodeTable, TargetID: table,
				Type: EdgeReadsFrom,
			})
		}
	}

	return g
}

// TableRefs extracts fully qualified table names from a SQL statement,
// deduplicated and sorted.
func TableRefs(sql string) []string {
	matches := tableRefPattern.FindAllStringSubmatch(sql, -1)
	seen := make(map[string]struct{}, len(matches))
	var tables []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; !ok {
			seen[m[1]] = struct{}{}
			tables = append(tables, m[1])
		}
	}
	sort.Strings(tables)
	return tables
}
