package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [creator-id] [query]",
	Short: "Search a creator's knowledge base",
	Long: `Embeds the query and returns the most similar chunks from the
creator's indexed content, with provenance back to the source posts.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 8, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured: set up an embedding provider with 'coach config'")
	}
	creatorID, query := args[0], args[1]

	results, err := knowledgeService.Search(context.Background(), creatorID, query, searchLimit)
	if err != nil {
		if errors.Is(err, domain.ErrNoKnowledgeBase) {
			return fmt.Errorf("no knowledge base for %s: run 'coach build %s' first", creatorID, creatorID)
		}
		if errors.Is(err, domain.ErrVersionMismatch) {
			return fmt.Errorf("index is stale: run 'coach build %s' to rebuild with the current embedder", creatorID)
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		text := r.Chunk.Text
		if runes := []rune(text); len(runes) > 120 {
			text = string(runes[:117]) + "..."
		}
		cmd.Printf("[%d] %.3f  %s\n", i+1, r.Score, text)
		cmd.Printf("    posts: %s", strings.Join(r.Chunk.SourceIDs, ", "))
		if len(r.Chunk.TopicTags) > 0 {
			cmd.Printf("  topics: %s", strings.Join(r.Chunk.TopicTags, ", "))
		}
		cmd.Println()
	}
	return nil
}
