package compile

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/peterhq/peter/pkg/layout"
	"github.com/peterhq/peter/pkg/schema"
)

// RenderKind names the concrete widget a renderer must draw.
type RenderKind string

// Render kinds resolved from (type, chart).
const (
	KindKPI         RenderKind = "kpi"
	KindLineChart   RenderKind = "line_chart"
	KindBarChart    RenderKind = "bar_chart"
	KindAreaChart   RenderKind = "area_chart"
	KindPieChart    RenderKind = "pie_chart"
	KindTable       RenderKind = "table"
	KindText        RenderKind = "text"
	KindUnsupported RenderKind = "unsupported"
)

// State is the data readiness of a widget at compile time.
type State string

// Widget states.
const (
	StateReady   State = "ready"
	StatePending State = "pending"
	StateErrored State = "errored"
)

// ChartOptions is the typed view of a layout item's config mapping.
// Fields the schema does not know about are preserved in Extra and
// passed through to the renderer untouched.
type ChartOptions struct {
	XAxis  string         `mapstructure:"x_axis"`
	YAxis  string         `mapstructure:"y_axis"`
	Series string         `mapstructure:"series"`
	Extra  map[string]any `mapstructure:",remain"`
}

// decodeChartOptions decodes the opaque config map leniently: scalar
// values are weakly coerced, unknown keys land in Extra.
func decodeChartOptions(cfg map[string]any) (*ChartOptions, error) {
	if len(cfg) == 0 {
		return nil, nil
	}
	var opts ChartOptions
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Widget is the render-ready description of one dashboard widget. It is
// ephemeral: built per compile pass, consumed by the rendering surface,
// never persisted.
type Widget struct {
	ID       string          `json:"id"`
	Kind     RenderKind      `json:"kind"`
	State    State           `json:"state"`
	Color    schema.Color    `json:"color"`
	Rows     *Rows           `json:"rows,omitempty"`
	Chart    *ChartOptions   `json:"chart,omitempty"`
	Geometry layout.Geometry `json:"geometry"`
	AsOf     time.Time       `json:"as_of"`
	Err      string          `json:"error,omitempty"`
}

// renderKind resolves the concrete render kind from a layout item's
// (type, chart) pair. ok is false when the pair has no renderer; the
// compiler then emits an unsupported placeholder instead of failing the
// pass. Validation rejects these pairs up front, so this path is
// defensive only.
func renderKind(item schema.LayoutItem) (RenderKind, bool) {
	switch item.Type {
	case schema.WidgetKPI:
		return KindKPI, true
	case schema.WidgetTable:
		return KindTable, true
	case schema.WidgetText:
		return KindText, true
	case schema.WidgetChart:
		switch item.Chart {
		case schema.ChartLine:
			return KindLineChart, true
		case schema.ChartBar:
			return KindBarChart, true
		case schema.ChartArea:
			return KindAreaChart, true
		case schema.ChartPie:
			return KindPieChart, true
		}
		return KindUnsupported, false
	}
	return KindUnsupported, false
}
