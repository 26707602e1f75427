package domain

import "time"

// ScoredChunk pairs a chunk with its retrieval similarity score.
// Scores are monotone (higher is more relevant) but not normalised to a
// fixed range across index implementations.
type ScoredChunk struct {
	// Chunk is the retrieved chunk with full provenance.
	Chunk Chunk

	// Score is the similarity score.
	Score float64
}

// EvidenceOptions configures evidence selection for answer synthesis.
type EvidenceOptions struct {
	// KCandidates is how many nearest chunks to retrieve before filtering.
	KCandidates int

	// MinScore is the relevance floor; chunks below it are dropped even
	// if that empties the result. An ungrounded answer is worse than a
	// short one.
	MinScore float64

	// TieEpsilon is the score band within which topic diversity is
	// preferred over raw score order.
	TieEpsilon float64

	// MinKeep suspends same-item deduplication while the result would
	// fall below this count.
	MinKeep int
}

// DefaultEvidenceOptions returns the standard selection configuration.
func DefaultEvidenceOptions() EvidenceOptions {
	return EvidenceOptions{
		KCandidates: 8,
		MinScore:    0.25,
		TieEpsilon:  0.05,
		MinKeep:     2,
	}
}

// BuildResult summarises a completed knowledge base build.
type BuildResult struct {
	// CreatorID is the creator the knowledge base belongs to.
	CreatorID string

	// Chunks is the number of chunks indexed.
	Chunks int

	// TopicTags are the distinct topic tags observed, sorted.
	TopicTags []string

	// EmbedderVersion identifies the embedder the index was built with.
	EmbedderVersion string

	// Dimensions is the embedding vector size.
	Dimensions int

	// PolicyVersion is the chunking policy version used.
	PolicyVersion string

	// BuiltAt is when the build completed.
	BuiltAt time.Time
}
