package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusStore.
type CorpusStore struct {
	mu       sync.RWMutex
	creators map[string]domain.Creator
	items    map[string]domain.ContentItem

	// chunkCounter lets Stats report chunk counts when wired to a
	// sibling ChunkStore.
	chunkCounter func(creatorID string) int
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		creators: make(map[string]domain.Creator),
		items:    make(map[string]domain.ContentItem),
	}
}

// WithChunkCounter wires a chunk-count source for Stats.
func (s *CorpusStore) WithChunkCounter(fn func(creatorID string) int) *CorpusStore {
	s.chunkCounter = fn
	return s
}

// SaveCreator stores or updates a creator.
func (s *CorpusStore) SaveCreator(_ context.Context, creator domain.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creators[creator.ID] = creator
	return nil
}

// GetCreator retrieves a creator by ID.
func (s *CorpusStore) GetCreator(_ context.Context, id string) (*domain.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creator, ok := s.creators[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &creator, nil
}

// GetCreatorByUsername retrieves a creator by username.
func (s *CorpusStore) GetCreatorByUsername(_ context.Context, username string) (*domain.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, creator := range s.creators {
		if creator.Username == username {
			c := creator
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListCreators returns all tracked creators ordered by username.
func (s *CorpusStore) ListCreators(_ context.Context) ([]domain.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Creator, 0, len(s.creators))
	for _, creator := range s.creators {
		result = append(result, creator)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result, nil
}

// SaveItems appends content items, skipping ids that already exist.
func (s *CorpusStore) SaveItems(_ context.Context, items []domain.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if _, exists := s.items[item.ID]; exists {
			continue
		}
		s.items[item.ID] = item
	}
	return nil
}

// GetItem retrieves a content item by ID.
func (s *CorpusStore) GetItem(_ context.Context, id string) (*domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

// ListItems returns a creator's items, newest first.
func (s *CorpusStore) ListItems(_ context.Context, creatorID string) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.ContentItem
	for _, item := range s.items {
		if item.CreatorID == creatorID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PostedAt.Equal(result[j].PostedAt) {
			return result[i].PostedAt.After(result[j].PostedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Stats summarises a creator's corpus.
func (s *CorpusStore) Stats(_ context.Context, creatorID string) (domain.CorpusStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats domain.CorpusStats
	for _, item := range s.items {
		if item.CreatorID != creatorID {
			continue
		}
		stats.TotalItems++
		if item.MediaType == domain.MediaTypeVideo || item.MediaType == domain.MediaTypeReel {
			stats.VideoItems++
		}
		if item.Transcript != "" {
			stats.TranscribedItems++
		}
	}
	if s.chunkCounter != nil {
		stats.ChunkCount = s.chunkCounter(creatorID)
	}
	return stats, nil
}
