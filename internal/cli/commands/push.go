package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/store"
	"github.com/peterhq/peter/pkg/schema"
)

// NewPushCommand creates the push command.
func NewPushCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <file>...",
		Short: "Validate and save dashboards to the revision store",
		Long: `Validate each document and, when clean of errors, save it as a new
revision. A push whose version does not advance the stored history is
rejected; bump the document's version field and push again.`,
		Example: `  peter push dashboards/revenue.yaml

  peter push dashboards/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPush,
	}
	return cmd
}

func runPush(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	s, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer s.Close()

	failed := false
	for _, file := range args {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		doc, issues, err := schema.Validate(raw)
		if err != nil {
			r.Errorf("%s: %v", file, err)
			failed = true
			continue
		}
		if doc == nil {
			renderIssues(r, file, issues.Errors())
			failed = true
			continue
		}

		rev := &store.Revision{
			Slug:    doc.Slug,
			Version: doc.Version,
			Title:   doc.Title,
			Owner:   doc.Owner,
			Raw:     raw,
		}
		if err := s.Save(cmd.Context(), rev); err != nil {
			r.Errorf("%s: %v", file, err)
			failed = true
			continue
		}
		r.Success(fmt.Sprintf("%s v%d pushed (%s)", doc.Slug, doc.Version, rev.ID))
	}

	if failed {
		return fmt.Errorf("push failed")
	}
	return nil
}
