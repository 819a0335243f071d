package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/config"
)

// NewCatalogExportCmd creates the catalog export command.
func NewCatalogExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export the active catalog to YAML or SQLite",
		Long: `Writes the active catalog to path. Paths ending in .db, .sqlite or .sqlite3, or
prefixed with sqlite:, produce an SQLite database; anything else is written as
YAML. Either form can be used as --catalog later.`,
		Example: `  # Export the builtin catalog for editing
  energyprophet catalog export catalog.yaml

  # Convert a YAML catalog to SQLite
  energyprophet --catalog catalog.yaml catalog export catalog.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.GetGlobalConfig()

			cat, err := openCatalog(ctx, cfg)
			if err != nil {
				return err
			}

			path, sqlite := exportTarget(args[0])
			if sqlite {
				err = catalog.WriteSQLite(ctx, cat, path)
			} else {
				err = catalog.Export(ctx, cat, path)
			}
			if err != nil {
				return err
			}

			cmd.Printf("Exported %d countries to %s\n", cat.Len(), path)
			return nil
		},
	}
	return cmd
}

// exportTarget strips an sqlite: prefix and reports whether path names an
// SQLite database.
func exportTarget(path string) (string, bool) {
	if p, ok := strings.CutPrefix(path, "sqlite:"); ok {
		return p, true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return path, true
	default:
		return path, false
	}
}
