package domain

// ChunkKind classifies how a chunk was produced.
type ChunkKind string

// Known chunk kinds.
const (
	// ChunkKindCaption is a semantic chunk cut from caption text.
	ChunkKindCaption ChunkKind = "semantic_caption"

	// ChunkKindTranscript is a semantic chunk cut from transcript text.
	ChunkKindTranscript ChunkKind = "semantic_transcript"

	// ChunkKindHighValue is a whole-item chunk for high-engagement content.
	ChunkKindHighValue ChunkKind = "high_value"

	// ChunkKindMerged is a chunk combining several short items.
	ChunkKindMerged ChunkKind = "merged_caption"
)

// Chunk is a retrievable unit of creator text.
// Every chunk traces back to at least one ContentItem in the corpus;
// provenance is mandatory and never fabricated.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// CreatorID links to the owning Creator.
	CreatorID string

	// SourceIDs are the ContentItem ids this chunk was derived from.
	// Always non-empty; a merged chunk records every contributing item.
	SourceIDs []string

	// Text is the chunk content.
	Text string

	// Kind classifies how the chunk was produced.
	Kind ChunkKind

	// TopicTags label the topics/strategies the chunk covers.
	TopicTags []string

	// Position is the ordinal position within the source item's text.
	Position int

	// Tokens is the estimated token length of Text.
	Tokens int

	// Quality is a 0-1 heuristic score used as a retrieval tie-break.
	Quality float64

	// Embedding is the vector representation, nil until computed.
	Embedding []float32
}

// HasTopic reports whether the chunk carries the given topic tag.
func (c Chunk) HasTopic(tag string) bool {
	for _, t := range c.TopicTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Boundary selects the structural unit the chunker segments text by.
type Boundary string

// Known boundaries.
const (
	// BoundarySentence segments at sentence terminators.
	BoundarySentence Boundary = "sentence"

	// BoundaryParagraph segments at blank lines.
	BoundaryParagraph Boundary = "paragraph"

	// BoundaryNone packs text purely by token budget.
	BoundaryNone Boundary = "none"
)

// ChunkPolicy controls how the chunker cuts content into chunks.
// The zero value is not usable; call DefaultChunkPolicy.
type ChunkPolicy struct {
	// Version identifies the policy so a knowledge base can be
	// rebuilt when the chunking strategy changes.
	Version string

	// CaptionTokens is the token budget for caption chunks.
	CaptionTokens int

	// TranscriptTokens is the token budget for transcript chunks.
	TranscriptTokens int

	// OverlapTokens is the token overlap between consecutive chunks.
	OverlapTokens int

	// Boundary selects the structural segmentation unit.
	Boundary Boundary

	// MinChunkRunes drops chunks shorter than this many runes.
	MinChunkRunes int

	// MergeBelowTokens groups items whose whole text is under this
	// budget into a single merged chunk with combined provenance.
	MergeBelowTokens int

	// HighValueLikes marks items above this like count for an extra
	// whole-item chunk.
	HighValueLikes int

	// HighValueRate marks items above this engagement rate for an
	// extra whole-item chunk.
	HighValueRate float64

	// SignaturePhrases are exact phrases that must never be split
	// across two chunks.
	SignaturePhrases []string

	// MaxInputTokens is the embedding provider's input limit; no
	// produced chunk may exceed it.
	MaxInputTokens int
}

// DefaultChunkPolicy returns the standard chunking policy.
// Budgets follow the observation that captions are short and
// transcripts carry the most retrievable advice.
func DefaultChunkPolicy() ChunkPolicy {
	return ChunkPolicy{
		Version:          "v1",
		CaptionTokens:    100,
		TranscriptTokens: 200,
		OverlapTokens:    20,
		Boundary:         BoundarySentence,
		MinChunkRunes:    20,
		MergeBelowTokens: 25,
		HighValueLikes:   1000,
		HighValueRate:    500,
		MaxInputTokens:   8192,
	}
}

// VectorEntry pairs a chunk id with its embedding for index insertion.
// The index is a derived cache rebuilt deterministically from chunks,
// never a source of truth.
type VectorEntry struct {
	// ChunkID is the chunk the vector belongs to.
	ChunkID string

	// Vector is the embedding to insert.
	Vector []float32
}
