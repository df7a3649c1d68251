package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/cli/output"
	"github.com/peterhq/peter/internal/executor"
	"github.com/peterhq/peter/pkg/compile"
	"github.com/peterhq/peter/pkg/plan"
	"github.com/peterhq/peter/pkg/schema"
)

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	Format         string  // Output format override
	Execute        bool    // Run queries against the local warehouse
	Database       string  // DuckDB path override for --execute
	ContainerWidth float64 // Rendering surface width in pixels
	NoCache        bool    // Bypass the result cache
}

// compileOutput is the JSON shape of a compile run.
type compileOutput struct {
	Plan    *plan.Plan       `json:"plan"`
	Widgets []compile.Widget `json:"widgets"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a dashboard into its execution plan and widgets",
		Long: `Validate a dashboard document, build its query execution plan, and
emit the render-ready widget descriptors.

Without --execute no queries run and every widget reports as pending.
With --execute the plan runs against a local DuckDB database and widgets
carry real rows.`,
		Example: `  # Plan and widget descriptors, no query execution
  peter compile dashboards/revenue.yaml

  # Execute against a local DuckDB file
  peter compile --execute --database local.duckdb dashboards/revenue.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVar(&opts.Execute, "execute", false, "Execute queries against a local DuckDB database")
	cmd.Flags().StringVar(&opts.Database, "database", "", "DuckDB path for --execute (empty for in-memory)")
	cmd.Flags().Float64Var(&opts.ContainerWidth, "container-width", 0, "Rendering surface width in pixels")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Bypass the query result cache")

	return cmd
}

func runCompile(cmd *cobra.Command, file string, opts *CompileOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	doc, err := loadValidDocument(file)
	if err != nil {
		return err
	}

	p := plan.Build(doc)

	results := compile.ResultSet{}
	if opts.Execute {
		db := opts.Database
		if db == "" {
			db = cmdCtx.Cfg.Database
		}
		runner, err := executor.OpenDuckDB(cmd.Context(), db)
		if err != nil {
			return err
		}
		defer runner.Close()

		execOpts := executor.Options{Logger: cmdCtx.Logger}
		if !opts.NoCache {
			c, ttl, err := cmdCtx.OpenCache()
			if err != nil {
				return err
			}
			defer c.Close()
			execOpts.Cache = c
			execOpts.TTL = ttl
		}
		results = executor.RunAll(cmd.Context(), runner, p, execOpts)
	}

	widgets := compile.Compile(doc, results, compile.Options{ContainerWidth: opts.ContainerWidth})

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(compileOutput{Plan: p, Widgets: widgets})
	}

	r.Println(r.Styles().Title.Render(fmt.Sprintf("%s v%d", doc.Slug, doc.Version)))
	r.Printf("strategy: %s, %d queries\n\n", p.Strategy, len(p.Queries))
	for _, q := range p.Queries {
		r.Printf("  %s  %s  -> %v\n",
			r.Styles().Muted.Render(q.Hash), r.Styles().Bold.Render(q.ID), q.DependentWidgets)
	}
	r.Println("")
	for _, w := range widgets {
		line := fmt.Sprintf("  %-12s %-12s %s", w.ID, w.Kind, stateLabel(r, w.State))
		if w.Err != "" {
			line += "  " + r.Styles().Error.Render(w.Err)
		}
		if w.Rows != nil {
			line += fmt.Sprintf("  %d rows", w.Rows.Meta.RowCount)
			if w.Rows.Meta.CacheHit {
				line += r.Styles().Muted.Render(" (cached)")
			}
		}
		r.Println(line)
	}
	return nil
}

func stateLabel(r *output.Renderer, s compile.State) string {
	switch s {
	case compile.StateReady:
		return r.Styles().Success.Render(string(s))
	case compile.StatePending:
		return r.Styles().Warning.Render(string(s))
	default:
		return r.Styles().Error.Render(string(s))
	}
}

// loadValidDocument reads, validates, and normalizes one document,
// converting validation errors into a command error.
func loadValidDocument(file string) (*schema.Document, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	doc, issues, err := schema.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if doc == nil {
		return nil, &schema.ValidationError{Issues: issues.Errors()}
	}
	return doc, nil
}
