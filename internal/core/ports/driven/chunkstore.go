package driven

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// ChunkStore persists knowledge chunks.
// Chunks are regenerated wholesale whenever the corpus or chunking policy
// changes; ReplaceChunks swaps the full set in one transaction.
type ChunkStore interface {
	// ReplaceChunks atomically replaces all chunks for a creator.
	ReplaceChunks(ctx context.Context, creatorID string, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by id.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListChunks returns all chunks for a creator.
	ListChunks(ctx context.Context, creatorID string) ([]domain.Chunk, error)

	// DeleteChunks removes all chunks for a creator.
	DeleteChunks(ctx context.Context, creatorID string) error
}
