package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

func TestIngest_CreatesCreatorAndAddsItems(t *testing.T) {
	store := newMockCorpusStore()
	svc := NewCorpusService(store)
	ctx := context.Background()

	added, err := svc.Ingest(ctx, "creator-1", []domain.ContentItem{
		{ID: "p1", Caption: "first post", Engagement: domain.Engagement{Likes: 10, Comments: 5}},
		{ID: "p2", Caption: "second post"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, added)

	creator, err := store.GetCreator(ctx, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, "creator-1", creator.Username)
	assert.False(t, creator.LastScraped.IsZero())

	items, err := store.ListItems(ctx, "creator-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "creator-1", items[0].CreatorID)
	assert.Equal(t, 15.0, items[0].Engagement.Rate, "rate derived from likes + comments")
	assert.False(t, items[0].ScrapedAt.IsZero())
}

func TestIngest_DerivesRateFromViews(t *testing.T) {
	store := newMockCorpusStore()
	svc := NewCorpusService(store)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "creator-1", []domain.ContentItem{
		{ID: "v1", Transcript: "video", Engagement: domain.Engagement{Likes: 40, Comments: 10, Views: 1000}},
	})
	require.NoError(t, err)

	item, err := store.GetItem(ctx, "v1")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, item.Engagement.Rate, 1e-9, "(likes+comments)/views * 100")
}

func TestIngest_SkipsDuplicates(t *testing.T) {
	store := newMockCorpusStore()
	svc := NewCorpusService(store)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "creator-1", []domain.ContentItem{{ID: "p1", Caption: "first"}})
	require.NoError(t, err)

	added, err := svc.Ingest(ctx, "creator-1", []domain.ContentItem{
		{ID: "p1", Caption: "changed text must not overwrite"},
		{ID: "p2", Caption: "new"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, added)

	item, err := store.GetItem(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "first", item.Caption, "ingested items are immutable")
}

func TestIngest_Validation(t *testing.T) {
	svc := NewCorpusService(newMockCorpusStore())
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ingest(ctx, "creator-1", []domain.ContentItem{{ID: ""}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ingest(ctx, "creator-1", []domain.ContentItem{{ID: "p1", CreatorID: "someone-else"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_InfersMediaType(t *testing.T) {
	store := newMockCorpusStore()
	svc := NewCorpusService(store)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "creator-1", []domain.ContentItem{
		{ID: "p1", Caption: "plain image post"},
		{ID: "p2", Caption: "video", Transcript: "spoken words", DurationSeconds: 30},
	})
	require.NoError(t, err)

	img, err := store.GetItem(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.MediaTypeImage, img.MediaType)

	vid, err := store.GetItem(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, domain.MediaTypeVideo, vid.MediaType)
}

func TestIngest_EmptyBatch(t *testing.T) {
	svc := NewCorpusService(newMockCorpusStore())

	added, err := svc.Ingest(context.Background(), "creator-1", nil)

	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestStats(t *testing.T) {
	store := newMockCorpusStore()
	svc := NewCorpusService(store)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "creator-1", []domain.ContentItem{
		{ID: "p1", Caption: "image"},
		{ID: "p2", Caption: "video", Transcript: "words", DurationSeconds: 10},
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 1, stats.VideoItems)
	assert.Equal(t, 1, stats.TranscribedItems)
}

func TestListCreators(t *testing.T) {
	store := newMockCorpusStore()
	svc := NewCorpusService(store)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "beta", []domain.ContentItem{{ID: "p1", Caption: "x"}})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "alpha", []domain.ContentItem{{ID: "p2", Caption: "y"}})
	require.NoError(t, err)

	creators, err := svc.ListCreators(ctx)
	require.NoError(t, err)
	require.Len(t, creators, 2)
	assert.Equal(t, "alpha", creators[0].ID)
}
