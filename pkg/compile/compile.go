// Package compile turns a validated dashboard document plus executed
// query results into an ordered sequence of render-ready widgets.
//
// The compiler is a pure, synchronous transformation. Waiting for query
// results, retries, and cancellation belong to the execution
// collaborator; by the time Compile runs, the result set is whatever it
// is, and every gap in it becomes a pending or errored widget rather
// than a missing one.
package compile

import (
	"fmt"
	"time"

	"github.com/peterhq/peter/pkg/layout"
	"github.com/peterhq/peter/pkg/schema"
)

// Options tunes a compile pass.
type Options struct {
	// ContainerWidth is the rendering surface width in pixels. Zero
	// means layout.DefaultContainerWidth.
	ContainerWidth float64

	// Now overrides the AsOf clock. Nil means time.Now.
	Now func() time.Time
}

// Compile produces exactly one Widget per layout item, in document
// order. It never fails and never drops an item: unresolvable render
// kinds become unsupported placeholders, missing results become pending
// widgets, and failed executions become errored widgets. This per-widget
// isolation is deliberate — one broken widget must not blank the
// dashboard.
func Compile(doc *schema.Document, results ResultSet, opts Options) []Widget {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	asOf := now().UTC()

	geoms := layout.Place(doc.Layout, doc.ViewType, opts.ContainerWidth)

	widgets := make([]Widget, len(doc.Layout))
	for i, item := range doc.Layout {
		widgets[i] = compileOne(item, results, geoms[i], asOf)
	}
	return widgets
}

func compileOne(item schema.LayoutItem, results ResultSet, geom layout.Geometry, asOf time.Time) Widget {
	w := Widget{
		ID:       item.ID,
		Color:    item.Style.Color,
		Geometry: geom,
		AsOf:     asOf,
	}

	kind, ok := renderKind(item)
	w.Kind = kind
	if !ok {
		w.State = StateErrored
		w.Err = fmt.Sprintf("unknown render kind for type %q, chart %q", item.Type, item.Chart)
		return w
	}

	opts, err := decodeChartOptions(item.Config)
	if err != nil {
		// Config is advisory; a bad mapping degrades the widget but
		// does not hide it.
		w.State = StateErrored
		w.Err = fmt.Sprintf("invalid config: %v", err)
		return w
	}
	w.Chart = opts

	rows, present := results[item.QueryRef]
	switch {
	case !present:
		w.State = StatePending
	case rows.Err != "":
		w.State = StateErrored
		w.Err = rows.Err
	default:
		w.State = StateReady
		w.Rows = rows
	}
	return w
}
