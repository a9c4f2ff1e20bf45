package cmd

import (
	"fmt"
	"time"

	"github.com/kai-kun-ai/security-news-digest/internal/cache"
	"github.com/kai-kun-ai/security-news-digest/internal/config"
	"github.com/spf13/cobra"
)

var flagPruneOlderThan string

// Default retention for the cached run. The cache only ever holds one
// run, so this exists to clear out a stale one.
const defaultRetention = 7 * 24 * time.Hour

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale cached run data",
	Long: `Delete cached articles older than the retention period and reclaim disk space.

The cache holds the articles from the most recent digest run so that
analyze can replay them. Prune clears them when the run is stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		retention := defaultRetention
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d article(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached run statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.CachePath()
		db, err := cache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Cache: %s\n", dbPath)
		fmt.Printf("Articles: %d\n", count)
		fmt.Printf("Size: %s\n", formatBytes(size))
		if last := db.LastRunAt(); !last.IsZero() {
			fmt.Printf("Last run: %s\n", last.Local().Format("2006-01-02 15:04"))
		}
		if digest := db.LastDigestPath(); digest != "" {
			fmt.Printf("Last digest: %s\n", digest)
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 3d, 72h)")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
