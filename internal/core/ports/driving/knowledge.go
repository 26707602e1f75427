package driving

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// KnowledgeService builds and queries per-creator knowledge bases.
type KnowledgeService interface {
	// Build runs chunking, embedding and indexing for a creator,
	// atomically replacing any prior index. Concurrent builds for the
	// same creator are serialized; searches keep seeing the old index
	// until the swap. An empty corpus yields a valid empty index.
	Build(ctx context.Context, creatorID string, policy domain.ChunkPolicy) (*domain.BuildResult, error)

	// Search embeds the query and returns at most k chunks sorted
	// descending by similarity. Returns domain.ErrVersionMismatch when
	// the index was built with a different embedder version, and
	// domain.ErrNoKnowledgeBase when no index exists for the creator.
	Search(ctx context.Context, creatorID, query string, k int) ([]domain.ScoredChunk, error)

	// Load restores a creator's persisted index into memory.
	Load(ctx context.Context, creatorID string) error
}
