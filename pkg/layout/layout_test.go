package layout

import (
	"testing"

	"github.com/peterhq/peter/pkg/schema"
)

func item(row, col, width, height int) schema.LayoutItem {
	return schema.LayoutItem{
		Style: schema.Style{Position: schema.GridPosition{Row: row, Col: col, Width: width, Height: height}},
	}
}

func TestPlace_BasicGeometry(t *testing.T) {
	items := []schema.LayoutItem{
		item(0, 0, 3, 1),
		item(0, 3, 9, 2),
		item(2, 6, 6, 1),
	}

	got := Place(items, schema.ViewAnalytical, 1200)
	if len(got) != len(items) {
		t.Fatalf("expected %d geometries, got %d", len(items), len(got))
	}

	rh := DensityFor(schema.ViewAnalytical).RowHeight

	// col width = 1200/12 = 100.
	checks := []Geometry{
		{Left: 0, Top: 0, Width: 300, Height: rh},
		{Left: 300, Top: 0, Width: 900, Height: 2 * rh},
		{Left: 600, Top: 2 * rh, Width: 600, Height: rh},
	}
	for i, want := range checks {
		g := got[i]
		if g.Left != want.Left || g.Top != want.Top || g.Width != want.Width || g.Height != want.Height {
			t.Errorf("item %d: got %+v, want %+v", i, g, want)
		}
	}
}

func TestPlace_ViewTypeDensity(t *testing.T) {
	op := DensityFor(schema.ViewOperational)
	an := DensityFor(schema.ViewAnalytical)
	st := DensityFor(schema.ViewStrategic)

	if !(op.RowHeight < an.RowHeight && an.RowHeight < st.RowHeight) {
		t.Errorf("expected operational < analytical < strategic row heights, got %v %v %v",
			op.RowHeight, an.RowHeight, st.RowHeight)
	}
	if !(op.Gap < an.Gap && an.Gap < st.Gap) {
		t.Errorf("expected operational < analytical < strategic gaps, got %v %v %v",
			op.Gap, an.Gap, st.Gap)
	}

	// Unknown view type falls back to analytical.
	if DensityFor(schema.ViewType("unknown")) != an {
		t.Error("expected analytical fallback for unknown view type")
	}
}

func TestPlace_ClampsInvalidPositions(t *testing.T) {
	tests := []struct {
		name string
		pos  schema.GridPosition
		want schema.GridPosition
	}{
		{"negative row and col", schema.GridPosition{Row: -2, Col: -3, Width: 4, Height: 1},
			schema.GridPosition{Row: 0, Col: 0, Width: 4, Height: 1}},
		{"col past grid", schema.GridPosition{Row: 0, Col: 15, Width: 2, Height: 1},
			schema.GridPosition{Row: 0, Col: 11, Width: 1, Height: 1}},
		{"width past grid edge", schema.GridPosition{Row: 0, Col: 10, Width: 4, Height: 1},
			schema.GridPosition{Row: 0, Col: 10, Width: 2, Height: 1}},
		{"zero width and height", schema.GridPosition{Row: 0, Col: 0, Width: 0, Height: 0},
			schema.GridPosition{Row: 0, Col: 0, Width: 1, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clamp(tt.pos); got != tt.want {
				t.Errorf("clamp(%+v) = %+v, want %+v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestPlaceOne_DefaultContainerWidth(t *testing.T) {
	g := PlaceOne(schema.GridPosition{Row: 0, Col: 0, Width: 12, Height: 1}, schema.ViewOperational, 0)
	if g.Width != DefaultContainerWidth {
		t.Errorf("expected full-width widget at default container width, got %v", g.Width)
	}
}

func TestPlace_GapCarriedPerViewType(t *testing.T) {
	g := Place([]schema.LayoutItem{item(0, 0, 6, 1)}, schema.ViewStrategic, 1200)
	if g[0].Gap != DensityFor(schema.ViewStrategic).Gap {
		t.Errorf("expected strategic gap, got %v", g[0].Gap)
	}
}
