package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

var askSessionID string

var askCmd = &cobra.Command{
	Use:   "ask [creator-id] [question]",
	Short: "Ask a creator's coach a question",
	Long: `Asks a question answered in the creator's voice, grounded in their
indexed content with citations back to the source posts.

Pass --session to continue an earlier conversation; otherwise a new
session is started and its id printed for follow-ups.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSessionID, "session", "s", "", "session id to continue")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if coachService == nil {
		return errors.New("coach not configured: set up embedding and LLM providers with 'coach config'")
	}
	creatorID, question := args[0], args[1]

	answer, err := coachService.Ask(context.Background(), creatorID, askSessionID, question)
	if err != nil {
		if errors.Is(err, domain.ErrNoKnowledgeBase) {
			return fmt.Errorf("no knowledge base for %s: run 'coach build %s' first", creatorID, creatorID)
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)
	cmd.Println()

	if answer.Grounded {
		cmd.Println("Sources:")
		for _, ref := range answer.References {
			line := "  " + strings.Join(ref.ContentIDs, ", ")
			if ref.Permalink != "" {
				line += "  " + ref.Permalink
			}
			cmd.Println(line)
		}
	} else {
		cmd.Println("(answered from profile only - no indexed content covered this question)")
	}
	cmd.Printf("\nSession: %s\n", answer.SessionID)
	return nil
}
