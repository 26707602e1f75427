package driving

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// CoachService answers questions as a creator, grounded in their corpus.
type CoachService interface {
	// Ask produces an evidence-grounded answer. When sessionID is empty
	// a new session is created; the returned Answer carries its id.
	Ask(ctx context.Context, creatorID, sessionID, question string) (*domain.Answer, error)

	// History returns the messages of a session in order.
	History(ctx context.Context, sessionID string) ([]domain.Message, error)
}
