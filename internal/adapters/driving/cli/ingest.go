package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [creator-id] [file.json]",
	Short: "Ingest scraped content for a creator",
	Long: `Loads a JSON export of scraped posts into the creator's corpus.
Items already in the corpus are skipped, never overwritten. Run 'coach
build' afterwards to refresh the knowledge base.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// ingestItem is the JSON shape of one scraped post.
type ingestItem struct {
	ID              string    `json:"id"`
	MediaType       string    `json:"media_type"`
	Caption         string    `json:"caption"`
	Transcript      string    `json:"transcript"`
	Likes           int       `json:"likes"`
	Comments        int       `json:"comments"`
	Shares          int       `json:"shares"`
	Views           int       `json:"views"`
	EngagementRate  float64   `json:"engagement_rate"`
	Hashtags        []string  `json:"hashtags"`
	Mentions        []string  `json:"mentions"`
	Permalink       string    `json:"permalink"`
	DurationSeconds int       `json:"duration_seconds"`
	PostedAt        time.Time `json:"posted_at"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}
	creatorID, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []ingestItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	items := make([]domain.ContentItem, len(raw))
	for i, r := range raw {
		items[i] = domain.ContentItem{
			ID:         r.ID,
			CreatorID:  creatorID,
			MediaType:  domain.MediaType(r.MediaType),
			Caption:    r.Caption,
			Transcript: r.Transcript,
			Engagement: domain.Engagement{
				Likes:    r.Likes,
				Comments: r.Comments,
				Shares:   r.Shares,
				Views:    r.Views,
				Rate:     r.EngagementRate,
			},
			Hashtags:        r.Hashtags,
			Mentions:        r.Mentions,
			Permalink:       r.Permalink,
			DurationSeconds: r.DurationSeconds,
			PostedAt:        r.PostedAt,
		}
	}

	added, err := corpusService.Ingest(context.Background(), creatorID, items)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d of %d items for %s.\n", added, len(items), creatorID)
	if added > 0 {
		cmd.Println("Run 'coach build' to refresh the knowledge base.")
	}
	return nil
}
