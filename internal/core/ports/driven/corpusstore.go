package driven

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// CorpusStore persists creators and their content items.
// ContentItems are append-only: they are immutable once handed to the
// core, and the store never mutates or silently drops them.
type CorpusStore interface {
	// SaveCreator stores or updates a creator.
	SaveCreator(ctx context.Context, creator domain.Creator) error

	// GetCreator retrieves a creator by id.
	GetCreator(ctx context.Context, id string) (*domain.Creator, error)

	// GetCreatorByUsername retrieves a creator by username.
	GetCreatorByUsername(ctx context.Context, username string) (*domain.Creator, error)

	// ListCreators returns all tracked creators.
	ListCreators(ctx context.Context) ([]domain.Creator, error)

	// SaveItems appends content items to the corpus. Items whose id
	// already exists are skipped, never overwritten.
	SaveItems(ctx context.Context, items []domain.ContentItem) error

	// GetItem retrieves a content item by id.
	GetItem(ctx context.Context, id string) (*domain.ContentItem, error)

	// ListItems returns a creator's items, newest first.
	ListItems(ctx context.Context, creatorID string) ([]domain.ContentItem, error)

	// Stats summarises a creator's corpus.
	Stats(ctx context.Context, creatorID string) (domain.CorpusStats, error)
}
