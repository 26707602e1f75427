package driven

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// VectorIndex answers nearest-neighbour queries over chunk embeddings.
// The index is a derived cache: it is rebuilt deterministically from the
// current chunk set and is never a source of truth.
//
// Similarity is cosine over normalized vectors; implementations normalize
// on insert so search is metric-consistent even for un-normalized input.
type VectorIndex interface {
	// Add inserts entries into the index. Entries with a dimension
	// different from the index return domain.ErrDimensionMismatch.
	Add(ctx context.Context, entries []domain.VectorEntry) error

	// Remove deletes vectors for the given chunk ids. Unknown ids are ignored.
	Remove(ctx context.Context, chunkIDs []string) error

	// Search returns at most k hits sorted descending by score, ties
	// broken by lower chunk id. An empty index yields an empty result,
	// not an error; k larger than the index returns everything.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector size the index accepts.
	Dimensions() int

	// Version is the embedder version the index was built with.
	Version() string

	// Serialize encodes the index for persistence so it survives process
	// restarts without recomputing embeddings.
	Serialize() ([]byte, error)

	// Close releases resources.
	Close() error
}

// VectorIndexFactory creates and restores vector indexes.
// The knowledge base builds a fresh index per creator per build, then
// atomically swaps it in.
type VectorIndexFactory interface {
	// New creates an empty index tagged with the embedder version.
	New(version string, dimensions int) (VectorIndex, error)

	// Restore rebuilds an index from a Serialize blob.
	Restore(blob []byte) (VectorIndex, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the cosine similarity score.
	Score float64
}
