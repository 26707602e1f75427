package driven

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// ConversationStore persists chat sessions and messages.
type ConversationStore interface {
	// SaveSession stores a session.
	SaveSession(ctx context.Context, session domain.Session) error

	// GetSession retrieves a session by id.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// ListSessions returns a creator's sessions, newest first.
	ListSessions(ctx context.Context, creatorID string) ([]domain.Session, error)

	// AppendMessage adds a message to a session.
	AppendMessage(ctx context.Context, msg domain.Message) error

	// ListMessages returns a session's messages in order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
}
