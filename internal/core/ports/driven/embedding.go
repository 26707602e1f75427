// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Vectors from the same embedder version are comparable; vectors from
// different versions are not. The knowledge base tags every stored vector
// with Version() and refuses to mix versions in one index.
//
// Implementations must be deterministic for identical (text, version)
// input so an index rebuild reproduces the same search results.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Returns domain.ErrEmbeddingUnavailable (wrapped) when the provider
	// is unreachable or returns malformed output.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order. More efficient than calling Embed in a loop.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// Version identifies the provider and model (e.g.
	// "openai/text-embedding-3-small"). Indexes built with a different
	// version must be rebuilt before querying.
	Version() string

	// MaxInputTokens returns the provider's input-length limit, which
	// the chunking policy must respect.
	MaxInputTokens() int

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
