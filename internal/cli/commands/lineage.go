package commands

import (
	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/cli/output"
	"github.com/peterhq/peter/pkg/lineage"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	Format string
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}
	cmd := &cobra.Command{
		Use:   "lineage <file>",
		Short: "Emit the lineage seed graph for a dashboard",
		Long: `Derive lineage seeds from a dashboard document: the dashboard
contains widgets, widgets execute queries, queries read warehouse
tables. Table references are extracted from the SQL text.`,
		Example: `  peter lineage dashboards/revenue.yaml

  # Machine-readable graph
  peter lineage --format json dashboards/revenue.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runLineage(cmd *cobra.Command, file string, opts *LineageOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	doc, err := loadValidDocument(file)
	if err != nil {
		return err
	}

	g := lineage.BuildSeeds(doc)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(g)
	}

	r.Printf("%d nodes, %d edges\n\n", len(g.Nodes), len(g.Edges))
	for _, e := range g.Edges {
		r.Printf("  %s %s %s\n",
			r.Styles().Bold.Render(e.SourceID),
			r.Styles().Muted.Render(e.Type),
			e.TargetID)
	}
	return nil
}
