// Package domain defines the core business entities for the coach knowledge base.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentItem: One scraped post or video from a creator's corpus
//   - Chunk: A retrievable unit of creator text with topic tags and provenance
//   - PersonaProfile: A corpus-derived summary of a creator's expertise and voice
//   - Answer: An evidence-grounded response with citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
