package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// initConfigTemplate is the starter project configuration.
const initConfigTemplate = `# peter project configuration
store_path: .peter/revisions.db
cache_dir: .peter/cache
cache_ttl: 15m
addr: 127.0.0.1:8080
`

// initDashboardTemplate is a minimal valid dashboard document.
const initDashboardTemplate = `version: 1
kind: dashboard
slug: %s
title: %s
owner: %s
view_type: analytical

queries:
  - id: example
    warehouse: bigquery
    sql: SELECT 1 AS value

layout:
  - id: headline
    type: kpi
    query_ref: example
    style:
      size: medium
      position: {row: 0, col: 0, width: 6, height: 1}
`

// InitOptions holds options for the init command.
type InitOptions struct {
	Slug  string
	Title string
	Owner string
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a new dashboard project",
		Long: `Create a peter.yaml project config and a starter dashboard document
in the given directory (default: current directory). Existing files are
never overwritten.`,
		Example: `  peter init

  peter init analytics --slug revenue --owner data-team`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Slug, "slug", "my-dashboard", "Slug for the starter dashboard")
	cmd.Flags().StringVar(&opts.Title, "title", "My Dashboard", "Title for the starter dashboard")
	cmd.Flags().StringVar(&opts.Owner, "owner", "unknown", "Owner for the starter dashboard")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts *InitOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	dashDir := filepath.Join(dir, "dashboards")
	if err := os.MkdirAll(dashDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dashDir, err)
	}

	files := map[string]string{
		filepath.Join(dir, "peter.yaml"): initConfigTemplate,
		filepath.Join(dashDir, opts.Slug+".yaml"): fmt.Sprintf(
			initDashboardTemplate, opts.Slug, opts.Title, opts.Owner),
	}

	for path, content := range files {
		if _, err := os.Stat(path); err == nil {
			r.Printf("skipping %s (already exists)\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		r.Success(path)
	}
	return nil
}
