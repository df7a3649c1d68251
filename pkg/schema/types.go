package schema

// DocumentKind is the only accepted value for the root kind field.
const DocumentKind = "dashboard"

// GridColumns is the fixed width of the placement grid.
const GridColumns = 12

// ViewType selects the grid density preset for a dashboard.
type ViewType string

// Supported view types.
const (
	ViewAnalytical  ViewType = "analytical"
	ViewOperational ViewType = "operational"
	ViewStrategic   ViewType = "strategic"
)

// Valid reports whether vt is a known view type.
func (vt ViewType) Valid() bool {
	switch vt {
	case ViewAnalytical, ViewOperational, ViewStrategic:
		return true
	}
	return false
}

// WidgetType is the top-level widget kind of a layout item.
type WidgetType string

// Supported widget types.
const (
	WidgetKPI   WidgetType = "kpi"
	WidgetChart WidgetType = "chart"
	WidgetTable WidgetType = "table"
	WidgetText  WidgetType = "text"
)

// Valid reports whether wt is a known widget type.
func (wt WidgetType) Valid() bool {
	switch wt {
	case WidgetKPI, WidgetChart, WidgetTable, WidgetText:
		return true
	}
	return false
}

// ChartKind is the chart sub-kind, required when the widget type is "chart".
type ChartKind string

// Supported chart kinds.
const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartArea ChartKind = "area"
	ChartPie  ChartKind = "pie"
)

// Valid reports whether ck is a known chart kind.
func (ck ChartKind) Valid() bool {
	switch ck {
	case ChartLine, ChartBar, ChartArea, ChartPie:
		return true
	}
	return false
}

// Color is a semantic accent color. It is never decorative: renderers map
// it to their theme.
type Color string

// Supported colors.
const (
	ColorNeutral Color = "neutral"
	ColorSuccess Color = "success"
	ColorWarning Color = "warning"
	ColorError   Color = "error"
)

// Valid reports whether c is a known color.
func (c Color) Valid() bool {
	switch c {
	case ColorNeutral, ColorSuccess, ColorWarning, ColorError:
		return true
	}
	return false
}

// Size is a coarse widget size used to derive a default column span when
// the author omits an explicit width.
type Size string

// Supported sizes.
const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeXLarge Size = "xlarge"
)

// Valid reports whether s is a known size.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeXLarge:
		return true
	}
	return false
}

// DefaultSpan returns the default column span for a size.
func (s Size) DefaultSpan() int {
	switch s {
	case SizeSmall:
		return 3
	case SizeMedium:
		return 6
	case SizeLarge:
		return 9
	case SizeXLarge:
		return GridColumns
	}
	return 6
}

// Warehouse identifies the query execution backend declared by a query.
type Warehouse string

// WarehouseBigQuery is the only warehouse the schema currently accepts.
const WarehouseBigQuery Warehouse = "bigquery"

// Valid reports whether w is a known warehouse.
func (w Warehouse) Valid() bool {
	return w == WarehouseBigQuery
}

// GridPosition places a widget on the 12-column grid. Row is a zero-based
// band index; bands have a fixed, view-type-dependent height and do not
// auto-pack.
type GridPosition struct {
	Row    int `yaml:"row" json:"row"`
	Col    int `yaml:"col" json:"col"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Style holds the presentational attributes of a layout item.
type Style struct {
	Color    Color        `yaml:"color,omitempty" json:"color,omitempty"`
	Size     Size         `yaml:"size,omitempty" json:"size,omitempty"`
	Position GridPosition `yaml:"position" json:"position"`
}

// LayoutItem is one widget definition within a dashboard document.
type LayoutItem struct {
	ID       string         `yaml:"id" json:"id"`
	Type     WidgetType     `yaml:"type" json:"type"`
	Chart    ChartKind      `yaml:"chart,omitempty" json:"chart,omitempty"`
	QueryRef string         `yaml:"query_ref" json:"query_ref"`
	Config   map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
	Style    Style          `yaml:"style" json:"style"`
}

// QueryDef is a named SQL statement owned by the document. The SQL text
// is opaque here; execution belongs to the warehouse collaborator.
type QueryDef struct {
	ID        string    `yaml:"id" json:"id"`
	Warehouse Warehouse `yaml:"warehouse" json:"warehouse"`
	SQL       string    `yaml:"sql" json:"sql"`
}

// Document is the root dashboard entity as persisted in YAML.
type Document struct {
	Version     int          `yaml:"version" json:"version"`
	Kind        string       `yaml:"kind" json:"kind"`
	Slug        string       `yaml:"slug" json:"slug"`
	Title       string       `yaml:"title" json:"title"`
	Owner       string       `yaml:"owner" json:"owner"`
	ViewType    ViewType     `yaml:"view_type,omitempty" json:"view_type,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string     `yaml:"tags,omitempty" json:"tags,omitempty"`
	Queries     []QueryDef   `yaml:"queries" json:"queries"`
	Layout      []LayoutItem `yaml:"layout" json:"layout"`
}

// Query returns the query with the given id, or nil if none exists.
func (d *Document) Query(id string) *QueryDef {
	for i := range d.Queries {
		if d.Queries[i].ID == id {
			return &d.Queries[i]
		}
	}
	return nil
}

// Item returns the layout item with the given id, or nil if none exists.
func (d *Document) Item(id string) *LayoutItem {
	for i := range d.Layout {
		if d.Layout[i].ID == id {
			return &d.Layout[i]
		}
	}
	return nil
}
