package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show a conversation session",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if coachService == nil {
		return errors.New("coach not configured: set up embedding and LLM providers with 'coach config'")
	}
	sessionID := args[0]

	msgs, err := coachService.History(context.Background(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("session %s not found", sessionID)
		}
		return fmt.Errorf("loading history: %w", err)
	}
	if len(msgs) == 0 {
		cmd.Println("No messages in this session yet.")
		return nil
	}

	for _, msg := range msgs {
		switch msg.Role {
		case domain.RoleUser:
			cmd.Printf("> %s\n\n", msg.Content)
		case domain.RoleAssistant:
			cmd.Printf("%s\n\n", msg.Content)
		}
	}
	return nil
}
