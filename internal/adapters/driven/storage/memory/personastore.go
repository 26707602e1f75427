package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// Ensure PersonaStore implements the interface.
var _ driven.PersonaStore = (*PersonaStore)(nil)

// PersonaStore is an in-memory implementation of driven.PersonaStore.
// Every profile version is retained.
type PersonaStore struct {
	mu       sync.RWMutex
	profiles map[string]map[int]domain.PersonaProfile
}

// NewPersonaStore creates a new in-memory persona store.
func NewPersonaStore() *PersonaStore {
	return &PersonaStore{
		profiles: make(map[string]map[int]domain.PersonaProfile),
	}
}

// SaveProfile stores a new profile version.
func (s *PersonaStore) SaveProfile(_ context.Context, profile *domain.PersonaProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions, ok := s.profiles[profile.CreatorID]
	if !ok {
		versions = make(map[int]domain.PersonaProfile)
		s.profiles[profile.CreatorID] = versions
	}
	if _, exists := versions[profile.Version]; exists {
		return fmt.Errorf("profile v%d for %s: %w",
			profile.Version, profile.CreatorID, domain.ErrAlreadyExists)
	}
	versions[profile.Version] = *profile
	return nil
}

// GetProfile retrieves the latest profile for a creator.
func (s *PersonaStore) GetProfile(_ context.Context, creatorID string) (*domain.PersonaProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.profiles[creatorID]
	if !ok || len(versions) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := 0
	for version := range versions {
		if version > latest {
			latest = version
		}
	}
	profile := versions[latest]
	return &profile, nil
}

// GetProfileVersion retrieves a specific profile version.
func (s *PersonaStore) GetProfileVersion(_ context.Context, creatorID string, version int) (*domain.PersonaProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.profiles[creatorID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	profile, ok := versions[version]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &profile, nil
}
