package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// PullOptions holds options for the pull command.
type PullOptions struct {
	Version int    // Specific version, 0 means latest
	Out     string // Output file, empty means stdout
}

// NewPullCommand creates the pull command.
func NewPullCommand() *cobra.Command {
	opts := &PullOptions{}
	cmd := &cobra.Command{
		Use:   "pull <slug>",
		Short: "Fetch a dashboard document from the revision store",
		Example: `  # Latest revision to stdout
  peter pull revenue

  # Pin a version and write to a file
  peter pull revenue --version 3 --out dashboards/revenue.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.Version, "version", 0, "Revision version to fetch (default latest)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Write the document to a file instead of stdout")

	return cmd
}

func runPull(cmd *cobra.Command, slug string, opts *PullOptions) error {
	cmdCtx := NewCommandContext(cmd)

	s, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rev, err := fetchRevision(cmd, s, slug, opts.Version)
	if err != nil {
		return err
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, rev.Raw, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.Out, err)
		}
		cmdCtx.Renderer.Success(fmt.Sprintf("%s v%d written to %s", rev.Slug, rev.Version, opts.Out))
		return nil
	}

	_, err = cmd.OutOrStdout().Write(rev.Raw)
	return err
}
