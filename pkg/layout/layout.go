// Package layout computes absolute widget geometry from grid positions.
//
// The grid is fixed at twelve columns. Columns scale with the container
// width; row bands have a constant height chosen by the dashboard's view
// type. The engine is deliberately overlap-agnostic: two widgets that
// occupy the same cells are an authoring problem, surfaced as a
// validation warning upstream, not a placement failure here.
package layout

import (
	"github.com/peterhq/peter/pkg/schema"
)

// DefaultContainerWidth is used when the caller does not know the real
// viewport width, e.g. CLI output.
const DefaultContainerWidth = 1200

// Density holds the static spacing preset for one view type.
type Density struct {
	RowHeight float64 // pixel height of one grid band
	Gap       float64 // spacing between adjacent widgets
}

// densities maps each view type to its spacing preset. Operational
// dashboards pack tightly, strategic ones breathe.
var densities = map[schema.ViewType]Density{
	schema.ViewAnalytical:  {RowHeight: 96, Gap: 16},
	schema.ViewOperational: {RowHeight: 72, Gap: 8},
	schema.ViewStrategic:   {RowHeight: 128, Gap: 24},
}

// DensityFor returns the spacing preset for a view type, falling back to
// the analytical preset for unknown values.
func DensityFor(vt schema.ViewType) Density {
	if d, ok := densities[vt]; ok {
		return d
	}
	return densities[schema.ViewAnalytical]
}

// Geometry is the resolved pixel box for one widget.
type Geometry struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Gap    float64 `json:"gap"`
}

// Place resolves geometry for every layout item, in input order.
//
// Place never fails: positions already passed grid validation, and any
// out-of-range value that reaches this point (defensive path) is clamped
// into the grid rather than rejected. Clamping is a deliberate lossy
// recovery that keeps rendering resilient; it is not a substitute for
// validation.
func Place(items []schema.LayoutItem, vt schema.ViewType, containerWidth float64) []Geometry {
	if containerWidth <= 0 {
		containerWidth = DefaultContainerWidth
	}
	d := DensityFor(vt)

	out := make([]Geometry, len(items))
	for i, item := range items {
		out[i] = placeOne(item.Style.Position, d, containerWidth)
	}
	return out
}

// PlaceOne resolves geometry for a single position.
func PlaceOne(p schema.GridPosition, vt schema.ViewType, containerWidth float64) Geometry {
	if containerWidth <= 0 {
		containerWidth = DefaultContainerWidth
	}
	return placeOne(p, DensityFor(vt), containerWidth)
}

func placeOne(p schema.GridPosition, d Density, containerWidth float64) Geometry {
	p = clamp(p)

	colWidth := containerWidth / schema.GridColumns
	return Geometry{
		Left:   float64(p.Col) * colWidth,
		Top:    float64(p.Row) * d.RowHeight,
		Width:  float64(p.Width) * colWidth,
		Height: float64(p.Height) * d.RowHeight,
		Gap:    d.Gap,
	}
}

// clamp forces a position into the valid grid range.
func clamp(p schema.GridPosition) schema.GridPosition {
	if p.Row < 0 {
		p.Row = 0
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if p.Col > schema.GridColumns-1 {
		p.Col = schema.GridColumns - 1
	}
	if p.Width < 1 {
		p.Width = 1
	}
	if p.Width > schema.GridColumns {
		p.Width = schema.GridColumns
	}
	if p.Col+p.Width > schema.GridColumns {
		p.Width = schema.GridColumns - p.Col
	}
	if p.Height < 1 {
		p.Height = 1
	}
	return p
}
