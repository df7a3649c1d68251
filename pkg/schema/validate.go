package schema

import (
	"fmt"
	"regexp"
)

// slugPattern constrains the dashboard slug to URL-safe characters.
var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// reservedSlugs cannot be used as dashboard identifiers because they
// collide with routes on the serving side.
var reservedSlugs = map[string]struct{}{
	"admin":      {},
	"api":        {},
	"auth":       {},
	"dashboard":  {},
	"dashboards": {},
	"docs":       {},
	"health":     {},
}

// Advisory thresholds surfaced as warnings, never errors.
const (
	maxSQLLength   = 10000
	maxLayoutItems = 20
	maxTags        = 10
)

// Validate parses and checks a raw document in one call.
//
// A YAML syntax failure returns a *ParseError. Otherwise the issue list
// carries every semantic violation found; the document is returned only
// when no error-severity issue exists (warnings do not block). Validate
// is a pure function of its input.
func Validate(raw []byte) (*Document, Issues, error) {
	d, issues, err := Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	if d == nil {
		return nil, issues, nil
	}

	d.Normalize()
	issues = append(issues, d.Check()...)
	if issues.HasErrors() {
		return nil, issues, nil
	}
	return d, issues, nil
}

// Normalize fills defaulted fields in place: view type, widget accents,
// warehouse, and a column span derived from style.size when the author
// omitted an explicit width. Check assumes a normalized document.
func (d *Document) Normalize() {
	if d.ViewType == "" {
		d.ViewType = ViewAnalytical
	}
	for i := range d.Queries {
		if d.Queries[i].Warehouse == "" {
			d.Queries[i].Warehouse = WarehouseBigQuery
		}
	}
	for i := range d.Layout {
		item := &d.Layout[i]
		if item.Style.Color == "" {
			item.Style.Color = ColorNeutral
		}
		if item.Style.Size == "" {
			item.Style.Size = SizeMedium
		}
		if item.Style.Position.Width == 0 {
			item.Style.Position.Width = item.Style.Size.DefaultSpan()
		}
		if item.Style.Position.Height == 0 {
			item.Style.Position.Height = 1
		}
	}
}

// Check runs every semantic check against the document and returns all
// findings in a stable order: document-level fields first, then queries,
// then layout items, then cross-cutting warnings.
func (d *Document) Check() Issues {
	var issues Issues

	issues = append(issues, d.checkHeader()...)
	issues = append(issues, d.checkQueries()...)
	issues = append(issues, d.checkLayout()...)
	issues = append(issues, d.checkWarnings()...)

	return issues
}

func (d *Document) checkHeader() Issues {
	var issues Issues

	errf := func(path, format string, args ...any) {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}

	if d.Version <= 0 {
		errf("version", "must be a positive integer, got %d", d.Version)
	}
	if d.Kind != DocumentKind {
		errf("kind", "must be %q, got %q", DocumentKind, d.Kind)
	}
	switch {
	case d.Slug == "":
		errf("slug", "is required")
	case !slugPattern.MatchString(d.Slug):
		errf("slug", "must match ^[a-z0-9-]+$, got %q", d.Slug)
	default:
		if _, reserved := reservedSlugs[d.Slug]; reserved {
			errf("slug", "%q is reserved and cannot be used", d.Slug)
		}
	}
	if d.Title == "" {
		errf("title", "is required")
	}
	if d.Owner == "" {
		errf("owner", "is required")
	}
	if !d.ViewType.Valid() {
		errf("view_type", "must be one of analytical, operational, strategic; got %q", d.ViewType)
	}

	return issues
}

func (d *Document) checkQueries() Issues {
	var issues Issues

	seen := make(map[string]int, len(d.Queries))
	for i, q := range d.Queries {
		path := fmt.Sprintf("queries[%d]", i)
		if q.ID == "" {
			issues = append(issues, Issue{Path: path + ".id", Message: "is required", Severity: SeverityError})
		} else if first, dup := seen[q.ID]; dup {
			issues = append(issues, Issue{
				Path:     path + ".id",
				Message:  fmt.Sprintf("duplicate query id %q (also defined at queries[%d])", q.ID, first),
				Severity: SeverityError,
			})
		} else {
			seen[q.ID] = i
		}
		if !q.Warehouse.Valid() {
			issues = append(issues, Issue{
				Path:     path + ".warehouse",
				Message:  fmt.Sprintf("must be %q, got %q", WarehouseBigQuery, q.Warehouse),
				Severity: SeverityError,
			})
		}
		if q.SQL == "" {
			issues = append(issues, Issue{Path: path + ".sql", Message: "is required", Severity: SeverityError})
		}
	}

	return issues
}

func (d *Document) checkLayout() Issues {
	var issues Issues

	queryIDs := make(map[string]struct{}, len(d.Queries))
	for _, q := range d.Queries {
		queryIDs[q.ID] = struct{}{}
	}

	seen := make(map[string]int, len(d.Layout))
	for i, item := range d.Layout {
		path := fmt.Sprintf("layout[%d]", i)

		if item.ID == "" {
			issues = append(issues, Issue{Path: path + ".id", Message: "is required", Severity: SeverityError})
		} else if first, dup := seen[item.ID]; dup {
			issues = append(issues, Issue{
				Path:     path + ".id",
				Message:  fmt.Sprintf("duplicate layout id %q (also defined at layout[%d])", item.ID, first),
				Severity: SeverityError,
			})
		} else {
			seen[item.ID] = i
		}

		if !item.Type.Valid() {
			issues = append(issues, Issue{
				Path:     path + ".type",
				Message:  fmt.Sprintf("must be one of kpi, chart, table, text; got %q", item.Type),
				Severity: SeverityError,
			})
		}

		switch item.Type {
		case WidgetChart:
			if item.Chart == "" {
				issues = append(issues, Issue{
					Path:     path + ".chart",
					Message:  "is required when type is \"chart\"",
					Severity: SeverityError,
				})
			} else if !item.Chart.Valid() {
				issues = append(issues, Issue{
					Path:     path + ".chart",
					Message:  fmt.Sprintf("must be one of line, bar, area, pie; got %q", item.Chart),
					Severity: SeverityError,
				})
			}
		case WidgetKPI:
			if item.Chart != "" {
				issues = append(issues, Issue{
					Path:     path + ".chart",
					Message:  "is ignored when type is \"kpi\"",
					Severity: SeverityWarning,
				})
			}
		}

		if item.QueryRef == "" {
			issues = append(issues, Issue{Path: path + ".query_ref", Message: "is required", Severity: SeverityError})
		} else if _, ok := queryIDs[item.QueryRef]; !ok {
			issues = append(issues, Issue{
				Path:     path + ".query_ref",
				Message:  fmt.Sprintf("references unknown query %q", item.QueryRef),
				Severity: SeverityError,
			})
		}

		if !item.Style.Color.Valid() {
			issues = append(issues, Issue{
				Path:     path + ".style.color",
				Message:  fmt.Sprintf("must be one of neutral, success, warning, error; got %q", item.Style.Color),
				Severity: SeverityError,
			})
		}
		if !item.Style.Size.Valid() {
			issues = append(issues, Issue{
				Path:     path + ".style.size",
				Message:  fmt.Sprintf("must be one of small, medium, large, xlarge; got %q", item.Style.Size),
				Severity: SeverityError,
			})
		}

		issues = append(issues, checkPosition(path+".style.position", item.Style.Position)...)
	}

	return issues
}

// checkPosition enforces the 12-column grid closure on one position.
func checkPosition(path string, p GridPosition) Issues {
	var issues Issues

	errf := func(format string, args ...any) {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}

	if p.Row < 0 {
		errf("row must be >= 0, got %d", p.Row)
	}
	if p.Col < 0 || p.Col >= GridColumns {
		errf("col must be in [0,%d], got %d", GridColumns-1, p.Col)
	}
	if p.Width < 1 || p.Width > GridColumns {
		errf("width must be in [1,%d], got %d", GridColumns, p.Width)
	}
	if p.Height < 1 {
		errf("height must be >= 1, got %d", p.Height)
	}
	if p.Col >= 0 && p.Width >= 1 && p.Col+p.Width > GridColumns {
		errf("width exceeds grid bounds: col+width=%d>%d", p.Col+p.Width, GridColumns)
	}

	return issues
}

// checkWarnings reports advisory findings that never block a save.
func (d *Document) checkWarnings() Issues {
	var issues Issues

	warnf := func(path, format string, args ...any) {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	// Unused queries.
	used := make(map[string]struct{}, len(d.Layout))
	for _, item := range d.Layout {
		used[item.QueryRef] = struct{}{}
	}
	for i, q := range d.Queries {
		if q.ID == "" {
			continue
		}
		if _, ok := used[q.ID]; !ok {
			warnf(fmt.Sprintf("queries[%d]", i), "query %q is not referenced by any layout item", q.ID)
		}
		if len(q.SQL) > maxSQLLength {
			warnf(fmt.Sprintf("queries[%d].sql", i), "query is very long (%d characters); consider splitting it", len(q.SQL))
		}
	}

	if len(d.Layout) > maxLayoutItems {
		warnf("layout", "dashboard has %d widgets; consider splitting it into multiple dashboards", len(d.Layout))
	}
	if len(d.Tags) > maxTags {
		warnf("tags", "dashboard has %d tags; consider using fewer, more focused tags", len(d.Tags))
	}

	// Overlapping grid regions. Authors keep final say, so overlap is
	// advisory; the placement engine itself stays overlap-agnostic.
	for i := 0; i < len(d.Layout); i++ {
		for j := i + 1; j < len(d.Layout); j++ {
			if overlaps(d.Layout[i].Style.Position, d.Layout[j].Style.Position) {
				warnf(fmt.Sprintf("layout[%d].style.position", j),
					"widget %q overlaps widget %q", d.Layout[j].ID, d.Layout[i].ID)
			}
		}
	}

	return issues
}

// overlaps reports whether two grid rectangles intersect.
func overlaps(a, b GridPosition) bool {
	if a.Col+a.Width <= b.Col || b.Col+b.Width <= a.Col {
		return false
	}
	if a.Row+a.Height <= b.Row || b.Row+b.Height <= a.Row {
		return false
	}
	return true
}
