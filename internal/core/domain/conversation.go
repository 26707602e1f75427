package domain

import "time"

// MessageRole identifies who authored a conversation message.
type MessageRole string

// Known message roles.
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Session is one conversation between a user and a coach.
// Sessions survive knowledge base and profile rebuilds.
type Session struct {
	// ID is the unique identifier for the session.
	ID string

	// CreatorID is the coach the session belongs to.
	CreatorID string

	// Title is a short label, usually derived from the first question.
	Title string

	// CreatedAt is when the session started.
	CreatedAt time.Time
}

// Message is a single turn in a session.
type Message struct {
	// ID is the unique identifier for the message.
	ID string

	// SessionID links to the owning Session.
	SessionID string

	// Role is who authored the message.
	Role MessageRole

	// Content is the message text.
	Content string

	// ChunkIDs are the evidence chunks an assistant message referenced.
	ChunkIDs []string

	// CreatedAt is when the message was recorded.
	CreatedAt time.Time
}
