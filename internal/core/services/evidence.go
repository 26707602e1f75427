package services

import (
	"sort"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// SelectEvidence filters and orders retrieval candidates into the
// evidence set handed to answer synthesis.
//
// The pipeline is: drop candidates below the relevance floor, collapse
// near-duplicate chunks from the same source item, then reorder
// score-ties to prefer topic variety. An empty result is meaningful: it
// tells the coach to fall back to a profile-only answer instead of
// padding the context with weak evidence.
func SelectEvidence(candidates []domain.ScoredChunk, opts domain.EvidenceOptions) []domain.ScoredChunk {
	if opts.MinScore <= 0 && opts.TieEpsilon <= 0 && opts.MinKeep <= 0 {
		opts = domain.DefaultEvidenceOptions()
	}

	sorted := make([]domain.ScoredChunk, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Chunk.ID < sorted[j].Chunk.ID
	})

	floored := make([]domain.ScoredChunk, 0, len(sorted))
	for _, sc := range sorted {
		if sc.Score >= opts.MinScore {
			floored = append(floored, sc)
		}
	}
	if len(floored) == 0 {
		return []domain.ScoredChunk{}
	}

	deduped := dedupeBySource(floored, opts.MinKeep)
	return diversify(deduped, opts.TieEpsilon)
}

// dedupeBySource keeps the best-scoring chunk per source item. When
// deduplication would shrink the set below minKeep, the next-best
// duplicates are restored in score order: thin evidence beats none.
func dedupeBySource(chunks []domain.ScoredChunk, minKeep int) []domain.ScoredChunk {
	seen := make(map[string]bool)
	kept := make([]domain.ScoredChunk, 0, len(chunks))
	var dropped []domain.ScoredChunk

	for _, sc := range chunks {
		duplicate := false
		for _, src := range sc.Chunk.SourceIDs {
			if seen[src] {
				duplicate = true
				break
			}
		}
		if duplicate {
			dropped = append(dropped, sc)
			continue
		}
		for _, src := range sc.Chunk.SourceIDs {
			seen[src] = true
		}
		kept = append(kept, sc)
	}

	for _, sc := range dropped {
		if len(kept) >= minKeep {
			break
		}
		kept = append(kept, sc)
	}
	if len(dropped) > 0 && len(kept) > 1 {
		sort.SliceStable(kept, func(i, j int) bool {
			if kept[i].Score != kept[j].Score {
				return kept[i].Score > kept[j].Score
			}
			return kept[i].Chunk.ID < kept[j].Chunk.ID
		})
	}
	return kept
}

// diversify reorders chunks whose scores sit within epsilon of each
// other so that chunks introducing an unseen topic tag come first.
// Chunks outside the tie window keep strict score order.
func diversify(chunks []domain.ScoredChunk, epsilon float64) []domain.ScoredChunk {
	if epsilon <= 0 || len(chunks) < 2 {
		return chunks
	}

	remaining := make([]domain.ScoredChunk, len(chunks))
	copy(remaining, chunks)
	out := make([]domain.ScoredChunk, 0, len(chunks))
	seenTopics := make(map[string]bool)

	for len(remaining) > 0 {
		// Candidates tied with the current best.
		top := remaining[0].Score
		window := 1
		for window < len(remaining) && top-remaining[window].Score <= epsilon {
			window++
		}

		pick := 0
		for n := 0; n < window; n++ {
			if introducesTopic(remaining[n], seenTopics) {
				pick = n
				break
			}
		}

		chosen := remaining[pick]
		out = append(out, chosen)
		for _, tag := range chosen.Chunk.TopicTags {
			seenTopics[tag] = true
		}
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return out
}

// introducesTopic reports whether the chunk carries a topic tag not yet
// represented in the evidence set.
func introducesTopic(sc domain.ScoredChunk, seen map[string]bool) bool {
	for _, tag := range sc.Chunk.TopicTags {
		if !seen[tag] {
			return true
		}
	}
	return false
}
