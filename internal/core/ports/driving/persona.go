package driving

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// PersonaService extracts and serves persona profiles.
type PersonaService interface {
	// BuildProfile analyses a creator's corpus and stores a new profile
	// version. Every extracted field is validated against the corpus;
	// untraceable values are rejected.
	BuildProfile(ctx context.Context, creatorID string) (*domain.PersonaProfile, error)

	// GetProfile returns the latest profile for a creator.
	GetProfile(ctx context.Context, creatorID string) (*domain.PersonaProfile, error)
}
