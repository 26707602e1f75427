// Package flat provides an exact, in-memory vector index using cosine
// similarity over L2-normalized float32 vectors.
//
// Exact search keeps results deterministic: the same corpus and query
// always return the same hits in the same order, which approximate
// indexes cannot promise. Per-creator corpora are small enough (tens of
// thousands of chunks) that a linear scan stays well under typical
// retrieval latency budgets.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// Index is a flat cosine-similarity index. Safe for concurrent use.
type Index struct {
	mu         sync.RWMutex
	version    string
	dimensions int
	ids        []string
	vectors    [][]float32 // normalized, parallel to ids
	byID       map[string]int
	closed     bool
}

var _ driven.VectorIndex = (*Index)(nil)

// newIndex creates an empty index for the given embedder version and
// vector size.
func newIndex(version string, dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("creating index: %w: dimensions must be positive, got %d",
			domain.ErrInvalidInput, dimensions)
	}
	return &Index{
		version:    version,
		dimensions: dimensions,
		byID:       make(map[string]int),
	}, nil
}

// Add implements driven.VectorIndex. Vectors are normalized on insert;
// a zero vector or a dimension mismatch rejects the whole batch.
func (i *Index) Add(_ context.Context, entries []domain.VectorEntry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return fmt.Errorf("adding vectors: index closed")
	}

	// Validate the batch before mutating so a failed Add leaves the
	// index unchanged.
	normalized := make([][]float32, len(entries))
	for n, e := range entries {
		if len(e.Vector) != i.dimensions {
			return fmt.Errorf("adding vector for chunk %s: %w: got %d dimensions, index has %d",
				e.ChunkID, domain.ErrDimensionMismatch, len(e.Vector), i.dimensions)
		}
		v, err := normalize(e.Vector)
		if err != nil {
			return fmt.Errorf("adding vector for chunk %s: %w", e.ChunkID, err)
		}
		normalized[n] = v
	}

	for n, e := range entries {
		if pos, ok := i.byID[e.ChunkID]; ok {
			i.vectors[pos] = normalized[n]
			continue
		}
		i.byID[e.ChunkID] = len(i.ids)
		i.ids = append(i.ids, e.ChunkID)
		i.vectors = append(i.vectors, normalized[n])
	}
	return nil
}

// Remove implements driven.VectorIndex.
func (i *Index) Remove(_ context.Context, chunkIDs []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return fmt.Errorf("removing vectors: index closed")
	}

	drop := make(map[string]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		drop[id] = true
	}

	ids := i.ids[:0]
	vectors := i.vectors[:0]
	for n, id := range i.ids {
		if drop[id] {
			continue
		}
		ids = append(ids, id)
		vectors = append(vectors, i.vectors[n])
	}
	i.ids = ids
	i.vectors = vectors

	i.byID = make(map[string]int, len(i.ids))
	for n, id := range i.ids {
		i.byID[id] = n
	}
	return nil
}

// Search implements driven.VectorIndex. Scores are exact cosine
// similarity; ties sort by lower chunk id so results are stable.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, fmt.Errorf("searching index: index closed")
	}
	if len(i.ids) == 0 || k <= 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != i.dimensions {
		return nil, fmt.Errorf("searching index: %w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), i.dimensions)
	}

	q, err := normalize(query)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	hits := make([]driven.VectorHit, len(i.ids))
	for n, v := range i.vectors {
		hits[n] = driven.VectorHit{ChunkID: i.ids[n], Score: dot(q, v)}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len implements driven.VectorIndex.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.ids)
}

// Dimensions implements driven.VectorIndex.
func (i *Index) Dimensions() int {
	return i.dimensions
}

// Version implements driven.VectorIndex.
func (i *Index) Version() string {
	return i.version
}

// Close implements driven.VectorIndex.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	i.ids = nil
	i.vectors = nil
	i.byID = nil
	return nil
}

// normalize returns the L2-normalized copy of v.
// A zero vector carries no direction and is rejected.
func normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return nil, fmt.Errorf("%w: zero vector cannot be normalized", domain.ErrInvalidInput)
	}
	norm := float32(math.Sqrt(sum))

	out := make([]float32, len(v))
	for n, x := range v {
		out[n] = x / norm
	}
	return out, nil
}

// dot computes the inner product of two normalized vectors, which equals
// their cosine similarity.
func dot(a, b []float32) float64 {
	var sum float64
	for n := range a {
		sum += float64(a[n]) * float64(b[n])
	}
	return sum
}
