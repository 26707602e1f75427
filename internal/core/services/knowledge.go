package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arclight-labs/coach-cli/internal/chunker"
	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driving"
	"github.com/arclight-labs/coach-cli/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// embedBatchSize is the number of chunk texts sent to the embedding
// provider per request.
const embedBatchSize = 100

// KnowledgeService builds and queries per-creator knowledge bases.
//
// Live indexes are held in a snapshot map: Search reads whatever index
// is current, Build prepares a replacement off to the side and swaps it
// in atomically. Concurrent builds for the same creator serialize on a
// per-creator lock; builds for different creators run independently.
type KnowledgeService struct {
	corpusStore driven.CorpusStore
	chunkStore  driven.ChunkStore
	indexStore  driven.IndexStore
	embedder    driven.EmbeddingService
	factory     driven.VectorIndexFactory
	chunker     *chunker.Chunker

	mu      sync.RWMutex
	indexes map[string]driven.VectorIndex

	buildMu sync.Mutex
	builds  map[string]*sync.Mutex
}

// NewKnowledgeService creates a knowledge service.
func NewKnowledgeService(
	corpusStore driven.CorpusStore,
	chunkStore driven.ChunkStore,
	indexStore driven.IndexStore,
	embedder driven.EmbeddingService,
	factory driven.VectorIndexFactory,
	chk *chunker.Chunker,
) *KnowledgeService {
	if chk == nil {
		chk = chunker.New()
	}
	return &KnowledgeService{
		corpusStore: corpusStore,
		chunkStore:  chunkStore,
		indexStore:  indexStore,
		embedder:    embedder,
		factory:     factory,
		chunker:     chk,
		indexes:     make(map[string]driven.VectorIndex),
		builds:      make(map[string]*sync.Mutex),
	}
}

// Build implements driving.KnowledgeService.
func (s *KnowledgeService) Build(
	ctx context.Context, creatorID string, policy domain.ChunkPolicy,
) (*domain.BuildResult, error) {
	lock := s.buildLock(creatorID)
	lock.Lock()
	defer lock.Unlock()

	logger.Section("Knowledge Base Build")
	logger.Debug("Creator: %s, policy: %s", creatorID, policy.Version)

	if _, err := s.corpusStore.GetCreator(ctx, creatorID); err != nil {
		return nil, fmt.Errorf("building knowledge base: %w", err)
	}

	items, err := s.corpusStore.ListItems(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("building knowledge base: listing corpus: %w", err)
	}
	logger.Debug("Corpus items: %d", len(items))

	// Cap chunk budgets at the embedder's input limit so no chunk is
	// silently truncated by the provider.
	if limit := s.embedder.MaxInputTokens(); limit > 0 {
		policy.MaxInputTokens = limit
	}

	chunks, err := s.chunker.Chunk(items, policy)
	if err != nil {
		return nil, fmt.Errorf("building knowledge base: chunking: %w", err)
	}
	logger.Info("Produced %d chunks from %d items", len(chunks), len(items))

	if err := validateProvenance(chunks, items); err != nil {
		return nil, fmt.Errorf("building knowledge base: %w", err)
	}

	index, err := s.factory.New(s.embedder.Version(), s.embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("building knowledge base: creating index: %w", err)
	}

	if err := s.embedChunks(ctx, chunks, index); err != nil {
		index.Close()
		return nil, err
	}

	if err := s.chunkStore.ReplaceChunks(ctx, creatorID, chunks); err != nil {
		index.Close()
		return nil, fmt.Errorf("building knowledge base: persisting chunks: %w", err)
	}

	blob, err := index.Serialize()
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("building knowledge base: serializing index: %w", err)
	}
	if err := s.indexStore.Put(ctx, creatorID, blob); err != nil {
		index.Close()
		return nil, fmt.Errorf("building knowledge base: persisting index: %w", err)
	}

	s.swap(creatorID, index)
	logger.Info("Index swapped in: %d vectors, %d dimensions", index.Len(), index.Dimensions())

	return &domain.BuildResult{
		CreatorID:       creatorID,
		Chunks:          len(chunks),
		TopicTags:       collectTopics(chunks),
		EmbedderVersion: s.embedder.Version(),
		Dimensions:      s.embedder.Dimensions(),
		PolicyVersion:   policy.Version,
		BuiltAt:         time.Now().UTC(),
	}, nil
}

// Search implements driving.KnowledgeService.
func (s *KnowledgeService) Search(
	ctx context.Context, creatorID, query string, k int,
) ([]domain.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.ScoredChunk{}, nil
	}
	if k <= 0 {
		k = domain.DefaultEvidenceOptions().KCandidates
	}

	index, err := s.liveIndex(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	if index.Version() != s.embedder.Version() {
		return nil, fmt.Errorf("searching knowledge base for %s: %w: index built with %q, embedder is %q",
			creatorID, domain.ErrVersionMismatch, index.Version(), s.embedder.Version())
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge base: embedding query: %w", err)
	}

	hits, err := index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge base: %w", err)
	}
	logger.Debug("Vector search returned %d hits", len(hits))

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, err := s.chunkStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Indexed chunk %s missing from store, skipping", hit.ChunkID)
				continue
			}
			return nil, fmt.Errorf("searching knowledge base: hydrating chunk %s: %w", hit.ChunkID, err)
		}
		results = append(results, domain.ScoredChunk{Chunk: *chunk, Score: hit.Score})
	}
	return results, nil
}

// Load implements driving.KnowledgeService.
func (s *KnowledgeService) Load(ctx context.Context, creatorID string) error {
	blob, err := s.indexStore.Get(ctx, creatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("loading knowledge base for %s: %w", creatorID, domain.ErrNoKnowledgeBase)
		}
		return fmt.Errorf("loading knowledge base: %w", err)
	}

	index, err := s.factory.Restore(blob)
	if err != nil {
		return fmt.Errorf("loading knowledge base: restoring index: %w", err)
	}

	s.swap(creatorID, index)
	logger.Debug("Loaded index for %s: %d vectors", creatorID, index.Len())
	return nil
}

// Close releases all live indexes.
func (s *KnowledgeService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, index := range s.indexes {
		index.Close()
		delete(s.indexes, id)
	}
	return nil
}

// liveIndex returns the creator's current index, restoring it from the
// index store on first use.
func (s *KnowledgeService) liveIndex(ctx context.Context, creatorID string) (driven.VectorIndex, error) {
	s.mu.RLock()
	index, ok := s.indexes[creatorID]
	s.mu.RUnlock()
	if ok {
		return index, nil
	}

	if err := s.Load(ctx, creatorID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexes[creatorID], nil
}

// swap atomically replaces the creator's live index and closes the old one.
func (s *KnowledgeService) swap(creatorID string, index driven.VectorIndex) {
	s.mu.Lock()
	old := s.indexes[creatorID]
	s.indexes[creatorID] = index
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// buildLock returns the per-creator mutex serializing builds.
func (s *KnowledgeService) buildLock(creatorID string) *sync.Mutex {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	lock, ok := s.builds[creatorID]
	if !ok {
		lock = &sync.Mutex{}
		s.builds[creatorID] = lock
	}
	return lock
}

// embedChunks embeds chunk texts in batches and inserts the vectors.
func (s *KnowledgeService) embedChunks(
	ctx context.Context, chunks []domain.Chunk, index driven.VectorIndex,
) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for n, c := range batch {
			texts[n] = c.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("building knowledge base: embedding batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("building knowledge base: %w: embedder returned %d vectors for %d texts",
				domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
		}

		entries := make([]domain.VectorEntry, len(batch))
		for n := range batch {
			chunks[start+n].Embedding = vectors[n]
			entries[n] = domain.VectorEntry{ChunkID: batch[n].ID, Vector: vectors[n]}
		}
		if err := index.Add(ctx, entries); err != nil {
			return fmt.Errorf("building knowledge base: indexing batch %d-%d: %w", start, end, err)
		}
		logger.Debug("Embedded and indexed chunks %d-%d", start, end)
	}
	return nil
}

// validateProvenance checks that every chunk traces back to items that
// exist in the corpus snapshot it was built from.
func validateProvenance(chunks []domain.Chunk, items []domain.ContentItem) error {
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}
	for _, c := range chunks {
		if len(c.SourceIDs) == 0 {
			return fmt.Errorf("%w: chunk %s has no source items", domain.ErrInvalidInput, c.ID)
		}
		for _, id := range c.SourceIDs {
			if !known[id] {
				return fmt.Errorf("%w: chunk %s references unknown item %s",
					domain.ErrInvalidInput, c.ID, id)
			}
		}
	}
	return nil
}

// collectTopics gathers the distinct topic tags across chunks, sorted.
func collectTopics(chunks []domain.Chunk) []string {
	set := make(map[string]bool)
	for _, c := range chunks {
		for _, tag := range c.TopicTags {
			set[tag] = true
		}
	}
	topics := make([]string, 0, len(set))
	for tag := range set {
		topics = append(topics, tag)
	}
	sort.Strings(topics)
	return topics
}
