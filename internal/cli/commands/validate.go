package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/cli/output"
	"github.com/peterhq/peter/pkg/schema"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Format   string // Output format override: text, markdown, json
	Severity string // Minimum severity to report: error, warning
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <file|dir>...",
		Short: "Validate dashboard documents",
		Long: `Check dashboard YAML documents against the schema.

Syntax errors stop a file immediately; semantic checks accumulate every
finding so one run reports the full picture. Warnings (unused queries,
oversized SQL, widget overlaps) never fail the run, errors do.`,
		Example: `  # Validate one dashboard
  peter validate dashboards/revenue.yaml

  # Validate a whole directory tree
  peter validate dashboards/

  # Only report errors
  peter validate --severity error dashboards/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVar(&opts.Severity, "severity", "warning", "Minimum severity to report: error, warning")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	files, err := collectDocumentFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no dashboard documents found in %s", strings.Join(args, ", "))
	}

	threshold, ok := schema.ParseSeverity(opts.Severity)
	if !ok {
		threshold = schema.SeverityWarning
	}

	var reports []issueReport
	failed := false
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		_, issues, err := schema.Validate(raw)
		if err != nil {
			// Syntax failure: report it as a single error issue so the
			// run keeps going over the remaining files.
			issues = schema.Issues{{Path: "document", Message: err.Error(), Severity: schema.SeverityError}}
		}
		issues = filterIssues(issues, threshold)
		reports = append(reports, toIssueReport(file, issues))
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(reports); err != nil {
			return err
		}
	}
	for _, rep := range reports {
		if r.EffectiveMode() != output.ModeJSON {
			var issues schema.Issues
			for _, rec := range rep.Issues {
				sev, _ := schema.ParseSeverity(rec.Severity)
				issues = append(issues, schema.Issue{Path: rec.Path, Message: rec.Message, Severity: sev})
			}
			renderIssues(r, rep.File, issues)
		}
		if !rep.Valid {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// collectDocumentFiles expands files and directories into a sorted list
// of YAML documents.
func collectDocumentFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch filepath.Ext(path) {
			case ".yaml", ".yml":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// filterIssues drops findings below the severity threshold. Errors sort
// before warnings, so a lower threshold value reports less.
func filterIssues(issues schema.Issues, threshold schema.Severity) schema.Issues {
	var kept schema.Issues
	for _, is := range issues {
		if is.Severity <= threshold {
			kept = append(kept, is)
		}
	}
	return kept
}
