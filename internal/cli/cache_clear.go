package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/energyprophet/internal/config"
	"github.com/rshade/energyprophet/internal/narrative/cache"
)

// NewCacheClearCmd creates the cache clear command.
func NewCacheClearCmd() *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached narratives",
		Example: `  # Remove every cached narrative
  energyprophet cache clear

  # Remove only expired entries
  energyprophet cache clear --expired`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			dir, err := config.CacheDir()
			if err != nil {
				return err
			}

			store, err := cache.NewFileStore(dir, true, cfg.NarrativeCacheTTL())
			if err != nil {
				return err
			}

			var removed int
			if expiredOnly {
				removed, err = store.CleanupExpired()
			} else {
				removed, err = store.Clear()
			}
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			cmd.Printf("Removed %d cached narrative(s) from %s\n", removed, store.Directory())
			return nil
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "remove only expired entries")
	return cmd
}
