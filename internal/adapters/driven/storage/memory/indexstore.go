package memory

import (
	"context"
	"sync"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
type IndexStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores the serialized index for a creator.
func (s *IndexStore) Put(_ context.Context, creatorID string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.blobs[creatorID] = stored
	return nil
}

// Get retrieves the serialized index for a creator.
func (s *IndexStore) Get(_ context.Context, creatorID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[creatorID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	result := make([]byte, len(blob))
	copy(result, blob)
	return result, nil
}

// Delete removes the serialized index for a creator.
func (s *IndexStore) Delete(_ context.Context, creatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, creatorID)
	return nil
}
