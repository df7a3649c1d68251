package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/cli/output"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Format string
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dashboards in the local revision store",
		Example: `  peter list

  peter list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	s, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer s.Close()

	revs, err := s.List(cmd.Context())
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(revs)
	}

	if len(revs) == 0 {
		r.Println("no dashboards in store")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.AppendHeader(table.Row{"Slug", "Version", "Title", "Owner", "Pushed", "Reads"})
	for _, rev := range revs {
		t.AppendRow(table.Row{
			rev.Slug, rev.Version, rev.Title, rev.Owner,
			rev.CreatedAt.Format("2006-01-02 15:04"), rev.AccessCount,
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
