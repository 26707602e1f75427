package driven

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// PersonaStore persists versioned persona profiles.
// Old versions are retained so a coach rebuild never orphans the
// conversation history that referenced them.
type PersonaStore interface {
	// SaveProfile stores a new profile version.
	SaveProfile(ctx context.Context, profile *domain.PersonaProfile) error

	// GetProfile retrieves the latest profile for a creator.
	GetProfile(ctx context.Context, creatorID string) (*domain.PersonaProfile, error)

	// GetProfileVersion retrieves a specific profile version.
	GetProfileVersion(ctx context.Context, creatorID string, version int) (*domain.PersonaProfile, error)
}
