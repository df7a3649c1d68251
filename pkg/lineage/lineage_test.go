package lineage

import (
	"reflect"
	"testing"

	"github.com/peterhq/peter/pkg/schema"
)

func testDoc() *schema.Document {
	d := &schema.Document{
		Version:  1,
		Kind:     schema.DocumentKind,
		Slug:     "sales",
		Title:    "Sales",
		Owner:    "data-team",
		ViewType: schema.ViewAnalytical,
		Queries: []schema.QueryDef{
			{ID: "q1", Warehouse: schema.WarehouseBigQuery,
				SQL: "SELECT * FROM `proj.sales.orders` JOIN proj.sales.customers USING (id)"},
		},
		Layout: []schema.LayoutItem{
			{ID: "tbl", Type: schema.WidgetTable, QueryRef: "q1",
				Style: schema.Style{Position: schema.GridPosition{Width: 12, Height: 2}}},
		},
	}
	d.Normalize()
	return d
}

func TestBuildSeeds(t *testing.T) {
	g := BuildSeeds(testDoc())

	// dashboard + 1 widget + 1 query + 2 tables
	if len(g.Nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d: %+v", len(g.Nodes), g.Nodes)
	}
	if g.Nodes[0].Type != NodeDashboard || g.Nodes[0].ID != "sales" {
		t.Errorf("expected dashboard root node, got %+v", g.Nodes[0])
	}

	var kinds []string
	for _, e := range g.Edges {
		kinds = append(kinds, e.Type)
	}
	want := []string{EdgeContains, EdgeExecutes, EdgeReadsFrom, EdgeReadsFrom}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("unexpected edge kinds: %v", kinds)
	}

	exec := g.Edges[1]
	if exec.SourceID != "sales:widget:tbl" || exec.TargetID != "sales:query:q1" {
		t.Errorf("unexpected executes edge: %+v", exec)
	}
}

func TestTableRefs(t *testing.T) {
	tests := []struct {
		sql  string
		want []string
	}{
		{
			sql:  "SELECT 1",
			want: nil,
		},
		{
			sql:  "SELECT * FROM proj.ds.t1, `proj.ds.t2` WHERE x > 0",
			want: []string{"proj.ds.t1", "proj.ds.t2"},
		},
		{
			// duplicates collapse, output is sorted
			sql:  "SELECT * FROM b.b.b JOIN a.a.a JOIN b.b.b",
			want: []string{"a.a.a", "b.b.b"},
		},
	}
	for _, tt := range tests {
		if got := TableRefs(tt.sql); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TableRefs(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}
