package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

var buildWithPersona bool

var buildCmd = &cobra.Command{
	Use:   "build [creator-id]",
	Short: "Build a creator's knowledge base",
	Long: `Chunks the creator's corpus, embeds every chunk and rebuilds the
vector index. The previous index keeps serving searches until the new
one is swapped in. With --persona the persona profile is re-extracted
afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildWithPersona, "persona", false, "also rebuild the persona profile")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured: set up an embedding provider with 'coach config'")
	}
	creatorID := args[0]
	ctx := context.Background()

	cmd.Printf("Building knowledge base for %s...\n", creatorID)
	result, err := knowledgeService.Build(ctx, creatorID, domain.DefaultChunkPolicy())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks (%d dimensions, embedder %s).\n",
		result.Chunks, result.Dimensions, result.EmbedderVersion)
	if len(result.TopicTags) > 0 {
		cmd.Printf("Topics: %s\n", strings.Join(result.TopicTags, ", "))
	}

	if buildWithPersona {
		if personaService == nil {
			return errors.New("persona service not configured: set up an LLM provider with 'coach config'")
		}
		cmd.Println("Extracting persona profile...")
		profile, err := personaService.BuildProfile(ctx, creatorID)
		if err != nil {
			return fmt.Errorf("persona extraction failed: %w", err)
		}
		cmd.Printf("Stored profile v%d (%d frameworks, %d signature phrases).\n",
			profile.Version, len(profile.Frameworks), len(profile.SignaturePhrases))
	}
	return nil
}
