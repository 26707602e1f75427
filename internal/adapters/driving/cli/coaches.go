package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var coachesCmd = &cobra.Command{
	Use:   "coaches",
	Short: "List tracked creators and corpus sizes",
	RunE:  runCoaches,
}

func init() {
	rootCmd.AddCommand(coachesCmd)
}

func runCoaches(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}
	ctx := context.Background()

	creators, err := corpusService.ListCreators(ctx)
	if err != nil {
		return fmt.Errorf("listing creators: %w", err)
	}
	if len(creators) == 0 {
		cmd.Println("No creators yet. Run 'coach ingest' to add one.")
		return nil
	}

	for _, creator := range creators {
		stats, err := corpusService.Stats(ctx, creator.ID)
		if err != nil {
			return fmt.Errorf("reading stats for %s: %w", creator.ID, err)
		}
		cmd.Printf("%s  %d items (%d video, %d transcribed), %d chunks indexed\n",
			creator.Username, stats.TotalItems, stats.VideoItems,
			stats.TranscribedItems, stats.ChunkCount)
	}
	return nil
}
