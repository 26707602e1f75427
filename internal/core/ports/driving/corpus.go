package driving

import (
	"context"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// CorpusService ingests externally-scraped content into the corpus.
type CorpusService interface {
	// Ingest validates and appends items for a creator, returning the
	// number actually added (duplicates are skipped).
	Ingest(ctx context.Context, creatorID string, items []domain.ContentItem) (int, error)

	// Stats summarises a creator's corpus.
	Stats(ctx context.Context, creatorID string) (domain.CorpusStats, error)

	// ListCreators returns all tracked creators.
	ListCreators(ctx context.Context) ([]domain.Creator, error)
}
