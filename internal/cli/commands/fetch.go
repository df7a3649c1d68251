package commands

import (
	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/store"
)

// fetchRevision resolves a slug to its latest or a pinned revision.
func fetchRevision(cmd *cobra.Command, s store.Store, slug string, version int) (*store.Revision, error) {
	if version > 0 {
		return s.Version(cmd.Context(), slug, version)
	}
	return s.Latest(cmd.Context(), slug)
}
