package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driving"
	"github.com/arclight-labs/coach-cli/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService ingests scraped creator content into the corpus.
// Scraping itself happens outside the tool; this service only accepts
// already-collected items, validates them and appends them.
type CorpusService struct {
	corpusStore driven.CorpusStore
}

// NewCorpusService creates a corpus service.
func NewCorpusService(corpusStore driven.CorpusStore) *CorpusService {
	return &CorpusService{corpusStore: corpusStore}
}

// Ingest implements driving.CorpusService.
func (s *CorpusService) Ingest(
	ctx context.Context, creatorID string, items []domain.ContentItem,
) (int, error) {
	logger.Section("Corpus Ingest")

	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return 0, fmt.Errorf("ingesting corpus: %w: empty creator id", domain.ErrInvalidInput)
	}

	if err := s.ensureCreator(ctx, creatorID); err != nil {
		return 0, err
	}

	existing, err := s.corpusStore.ListItems(ctx, creatorID)
	if err != nil {
		return 0, fmt.Errorf("ingesting corpus: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, item := range existing {
		known[item.ID] = true
	}

	now := time.Now().UTC()
	fresh := make([]domain.ContentItem, 0, len(items))
	skipped := 0
	for _, item := range items {
		item, err := normaliseItem(item, creatorID, now)
		if err != nil {
			return 0, fmt.Errorf("ingesting corpus: %w", err)
		}
		if known[item.ID] {
			skipped++
			continue
		}
		known[item.ID] = true
		fresh = append(fresh, item)
	}

	if len(fresh) > 0 {
		if err := s.corpusStore.SaveItems(ctx, fresh); err != nil {
			return 0, fmt.Errorf("ingesting corpus: %w", err)
		}
	}
	logger.Info("Ingested %d items, skipped %d duplicates", len(fresh), skipped)
	return len(fresh), nil
}

// Stats implements driving.CorpusService.
func (s *CorpusService) Stats(ctx context.Context, creatorID string) (domain.CorpusStats, error) {
	stats, err := s.corpusStore.Stats(ctx, creatorID)
	if err != nil {
		return domain.CorpusStats{}, fmt.Errorf("reading corpus stats: %w", err)
	}
	return stats, nil
}

// ListCreators implements driving.CorpusService.
func (s *CorpusService) ListCreators(ctx context.Context) ([]domain.Creator, error) {
	creators, err := s.corpusStore.ListCreators(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing creators: %w", err)
	}
	return creators, nil
}

// ensureCreator creates the creator record on first ingest.
func (s *CorpusService) ensureCreator(ctx context.Context, creatorID string) error {
	creator, err := s.corpusStore.GetCreator(ctx, creatorID)
	switch {
	case err == nil:
		creator.LastScraped = time.Now().UTC()
		if err := s.corpusStore.SaveCreator(ctx, *creator); err != nil {
			return fmt.Errorf("ingesting corpus: updating creator: %w", err)
		}
		return nil
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now().UTC()
		if err := s.corpusStore.SaveCreator(ctx, domain.Creator{
			ID:          creatorID,
			Username:    creatorID,
			CreatedAt:   now,
			LastScraped: now,
		}); err != nil {
			return fmt.Errorf("ingesting corpus: creating creator: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("ingesting corpus: %w", err)
	}
}

// normaliseItem validates an item and fills derived fields.
func normaliseItem(item domain.ContentItem, creatorID string, now time.Time) (domain.ContentItem, error) {
	if strings.TrimSpace(item.ID) == "" {
		return item, fmt.Errorf("%w: item missing id", domain.ErrInvalidInput)
	}
	if item.CreatorID == "" {
		item.CreatorID = creatorID
	}
	if item.CreatorID != creatorID {
		return item, fmt.Errorf("%w: item %s belongs to creator %s, not %s",
			domain.ErrInvalidInput, item.ID, item.CreatorID, creatorID)
	}
	if item.MediaType == "" {
		if item.Transcript != "" || item.DurationSeconds > 0 {
			item.MediaType = domain.MediaTypeVideo
		} else {
			item.MediaType = domain.MediaTypeImage
		}
	}
	if item.Engagement.Rate == 0 {
		interactions := float64(item.Engagement.Likes + item.Engagement.Comments)
		if item.Engagement.Views > 0 {
			item.Engagement.Rate = interactions / float64(item.Engagement.Views) * 100
		} else {
			item.Engagement.Rate = interactions
		}
	}
	if item.ScrapedAt.IsZero() {
		item.ScrapedAt = now
	}
	return item, nil
}
