package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/pkg/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("energyprophet %s\n", ver)
			cmd.Printf("  commit: %s\n", version.GetCommit())
			cmd.Printf("  built:  %s\n", version.GetBuildDate())
			cmd.Printf("  catalog schema: %s\n", catalog.SchemaVersion)
		},
	}
}
