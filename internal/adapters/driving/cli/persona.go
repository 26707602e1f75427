package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

var personaCmd = &cobra.Command{
	Use:   "persona [creator-id]",
	Short: "Show a creator's persona profile",
	Long: `Prints the latest extracted persona profile: expertise, teaching
style, frameworks and signature phrases, all traced back to the corpus.`,
	Args: cobra.ExactArgs(1),
	RunE: runPersona,
}

var personaBuildCmd = &cobra.Command{
	Use:   "build [creator-id]",
	Short: "Re-extract the persona profile from the corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaBuild,
}

func init() {
	personaCmd.AddCommand(personaBuildCmd)
	rootCmd.AddCommand(personaCmd)
}

func runPersona(cmd *cobra.Command, args []string) error {
	if personaService == nil {
		return errors.New("persona service not configured: set up an LLM provider with 'coach config'")
	}
	creatorID := args[0]

	profile, err := personaService.GetProfile(context.Background(), creatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no profile for %s: run 'coach persona build %s' first", creatorID, creatorID)
		}
		return fmt.Errorf("loading profile: %w", err)
	}

	printProfile(cmd, profile)
	return nil
}

func runPersonaBuild(cmd *cobra.Command, args []string) error {
	if personaService == nil {
		return errors.New("persona service not configured: set up an LLM provider with 'coach config'")
	}
	creatorID := args[0]

	cmd.Printf("Extracting persona profile for %s...\n", creatorID)
	profile, err := personaService.BuildProfile(context.Background(), creatorID)
	if err != nil {
		return fmt.Errorf("persona extraction failed: %w", err)
	}

	printProfile(cmd, profile)
	return nil
}

func printProfile(cmd *cobra.Command, profile *domain.PersonaProfile) {
	cmd.Printf("Profile v%d for %s\n", profile.Version, profile.CreatorID)
	cmd.Println()
	cmd.Printf("Expertise: %s\n", strings.Join(profile.ExpertiseAreas, ", "))
	cmd.Printf("Teaching style: %s\n", profile.TeachingStyle)

	if len(profile.Frameworks) > 0 {
		cmd.Println("Frameworks:")
		for _, fw := range profile.Frameworks {
			cmd.Printf("  %s - %s (posts: %s)\n",
				fw.Name, fw.Description, strings.Join(fw.ProofIDs, ", "))
		}
	}
	if len(profile.SignaturePhrases) > 0 {
		cmd.Println("Signature phrases:")
		for _, phrase := range profile.SignaturePhrases {
			cmd.Printf("  %q\n", phrase)
		}
	}
	if len(profile.KeyResults) > 0 {
		cmd.Println("Key results:")
		for _, kr := range profile.KeyResults {
			cmd.Printf("  %s (post: %s)\n", kr.Claim, kr.ProofID)
		}
	}
}
