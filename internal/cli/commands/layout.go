package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/cli/output"
	"github.com/peterhq/peter/pkg/layout"
)

// LayoutOptions holds options for the layout command.
type LayoutOptions struct {
	Format         string
	ContainerWidth float64
}

// layoutEntry pairs a layout item with its resolved pixel geometry.
type layoutEntry struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Geometry layout.Geometry `json:"geometry"`
}

// NewLayoutCommand creates the layout command.
func NewLayoutCommand() *cobra.Command {
	opts := &LayoutOptions{}
	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Show the resolved grid geometry of a dashboard",
		Long: `Resolve every layout item's grid position into pixel geometry for
the document's view type. Row height and gap follow the view type's
density: operational is tightest, strategic most generous.`,
		Example: `  peter layout dashboards/revenue.yaml

  # Geometry for a narrower surface
  peter layout --container-width 800 dashboards/revenue.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().Float64Var(&opts.ContainerWidth, "container-width", 0, "Rendering surface width in pixels")

	return cmd
}

func runLayout(cmd *cobra.Command, file string, opts *LayoutOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	doc, err := loadValidDocument(file)
	if err != nil {
		return err
	}

	width := opts.ContainerWidth
	if width <= 0 {
		width = layout.DefaultContainerWidth
	}
	geoms := layout.Place(doc.Layout, doc.ViewType, width)

	entries := make([]layoutEntry, len(doc.Layout))
	for i, item := range doc.Layout {
		entries[i] = layoutEntry{ID: item.ID, Type: string(item.Type), Geometry: geoms[i]}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(entries)
	}

	r.Println(r.Styles().Title.Render(fmt.Sprintf("%s (%s, %.0fpx)", doc.Slug, doc.ViewType, width)))

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.AppendHeader(table.Row{"ID", "Type", "Left", "Top", "Width", "Height"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.ID, e.Type,
			fmt.Sprintf("%.0f", e.Geometry.Left),
			fmt.Sprintf("%.0f", e.Geometry.Top),
			fmt.Sprintf("%.0f", e.Geometry.Width),
			fmt.Sprintf("%.0f", e.Geometry.Height),
		})
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.SetStyle(table.StyleLight)
		t.Render()
	}
	return nil
}
