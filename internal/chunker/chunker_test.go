package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

func item(id, caption, transcript string, likes int) domain.ContentItem {
	return domain.ContentItem{
		ID:         id,
		CreatorID:  "creator-1",
		MediaType:  domain.MediaTypeReel,
		Caption:    caption,
		Transcript: transcript,
		Engagement: domain.Engagement{Likes: likes},
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New()

	chunks, err := c.Chunk(nil, domain.DefaultChunkPolicy())

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_EmptyTextYieldsNoChunks(t *testing.T) {
	c := New()

	chunks, err := c.Chunk([]domain.ContentItem{item("p1", "", "", 0)}, domain.DefaultChunkPolicy())

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_CaptionAndTranscriptKinds(t *testing.T) {
	c := New()
	caption := strings.Repeat("Here is a longer caption sentence about posting strategy. ", 3)
	transcript := strings.Repeat("In this video I walk through the exact steps I used to grow. ", 5)

	chunks, err := c.Chunk([]domain.ContentItem{item("p1", caption, transcript, 0)}, domain.DefaultChunkPolicy())

	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	kinds := map[domain.ChunkKind]bool{}
	for _, ch := range chunks {
		kinds[ch.Kind] = true
		assert.Equal(t, []string{"p1"}, ch.SourceIDs)
		assert.Equal(t, "creator-1", ch.CreatorID)
		assert.Positive(t, ch.Tokens)
	}
	assert.True(t, kinds[domain.ChunkKindCaption])
	assert.True(t, kinds[domain.ChunkKindTranscript])
}

func TestChunk_Deterministic(t *testing.T) {
	c := New()
	items := []domain.ContentItem{
		item("p1", "How to grow your audience with three simple posting habits that compound over time.", "", 0),
		item("p2", "", strings.Repeat("Consistency beats intensity when you are building a content habit. ", 10), 0),
	}
	policy := domain.DefaultChunkPolicy()

	first, err := c.Chunk(items, policy)
	require.NoError(t, err)
	second, err := c.Chunk(items, policy)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestChunk_RespectsTokenBudget(t *testing.T) {
	c := New()
	transcript := strings.Repeat("Every single day you should show up and post something useful. ", 40)
	policy := domain.DefaultChunkPolicy()
	policy.TranscriptTokens = 50
	policy.OverlapTokens = 10

	chunks, err := c.Chunk([]domain.ContentItem{item("p1", "", transcript, 0)}, policy)

	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		// Whole segments are never split, so a chunk may carry one
		// final segment past the budget but never two.
		assert.LessOrEqual(t, ch.Tokens, policy.TranscriptTokens+20)
	}
}

func TestChunk_DropsTinyChunks(t *testing.T) {
	c := New()
	policy := domain.DefaultChunkPolicy()
	policy.MergeBelowTokens = 0 // keep the short caption out of the merge path

	chunks, err := c.Chunk([]domain.ContentItem{item("p1", "Ok.", "", 0)}, policy)

	require.NoError(t, err)
	assert.Empty(t, chunks, "chunks under the minimum rune count are dropped")
}

func TestChunk_MergesShortItems(t *testing.T) {
	c := New()
	items := []domain.ContentItem{
		item("p1", "Post daily even when nobody is watching yet.", "", 200),
		item("p2", "Your first hundred posts are practice reps.", "", 50),
		item("p3", "Save your best hooks in a swipe file.", "", 10),
	}

	chunks, err := c.Chunk(items, domain.DefaultChunkPolicy())

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	merged := chunks[0]
	assert.Equal(t, domain.ChunkKindMerged, merged.Kind)
	assert.Equal(t, []string{"p1", "p2", "p3"}, merged.SourceIDs)
	assert.Contains(t, merged.Text, "practice reps")
}

func TestChunk_HighValueChunk(t *testing.T) {
	c := New()
	caption := "This reel got a million views, here is the exact hook structure I used to make it land."
	it := item("p1", caption, "", 5000)

	chunks, err := c.Chunk([]domain.ContentItem{it}, domain.DefaultChunkPolicy())

	require.NoError(t, err)

	var hv *domain.Chunk
	for i := range chunks {
		if chunks[i].Kind == domain.ChunkKindHighValue {
			hv = &chunks[i]
		}
	}
	require.NotNil(t, hv, "expected a high-value chunk for likes above the threshold")
	assert.Equal(t, []string{"viral", "high_engagement"}, hv.TopicTags)
	assert.Equal(t, 1.0, hv.Quality)
}

func TestChunk_HighValueByEngagementRate(t *testing.T) {
	c := New()
	it := item("p1", "Short form video is still the fastest path to reach if your hook lands inside one second.", "", 100)
	it.Engagement.Rate = 750

	chunks, err := c.Chunk([]domain.ContentItem{it}, domain.DefaultChunkPolicy())

	require.NoError(t, err)

	found := false
	for _, ch := range chunks {
		if ch.Kind == domain.ChunkKindHighValue {
			found = true
		}
	}
	assert.True(t, found)
}

func TestChunk_ShortViralCaptionKeepsBonusChunk(t *testing.T) {
	c := New()
	it := item("p1", "Post every day for ninety days and watch what happens to your reach.", "", 5000)

	chunks, err := c.Chunk([]domain.ContentItem{it}, domain.DefaultChunkPolicy())

	require.NoError(t, err)

	kinds := make(map[domain.ChunkKind]int)
	for _, ch := range chunks {
		kinds[ch.Kind]++
	}
	assert.Equal(t, 1, kinds[domain.ChunkKindHighValue], "short items above the engagement threshold still earn the bonus chunk")
	assert.Equal(t, 1, kinds[domain.ChunkKindMerged], "the caption still goes through the short-merge path")
}

func TestChunk_SignaturePhraseNeverSplit(t *testing.T) {
	c := New()
	phrase := "document don't create"
	transcript := strings.Repeat("You need to show up with useful content every single day. ", 8) +
		"My rule is simple. " + phrase + " is the mindset. " +
		strings.Repeat("Then you repurpose every piece across all your channels. ", 8)

	policy := domain.DefaultChunkPolicy()
	policy.TranscriptTokens = 40
	policy.SignaturePhrases = []string{phrase}

	chunks, err := c.Chunk([]domain.ContentItem{item("p1", "", transcript, 0)}, policy)

	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	carriers := 0
	for _, ch := range chunks {
		if strings.Contains(ch.Text, phrase) {
			carriers++
		}
		// No chunk may hold a torn-off prefix or suffix of the phrase.
		if !strings.Contains(ch.Text, phrase) {
			assert.False(t, strings.HasSuffix(ch.Text, "document don't"),
				"phrase split across chunk boundary: %q", ch.Text)
		}
	}
	assert.GreaterOrEqual(t, carriers, 1)
}

func TestChunk_MultiByteRunesSurviveSplitting(t *testing.T) {
	c := New()
	transcript := strings.Repeat("日本語のコンテンツ戦略について話します 毎日投稿することが大切です ", 30)
	policy := domain.DefaultChunkPolicy()
	policy.TranscriptTokens = 30

	chunks, err := c.Chunk([]domain.ContentItem{item("p1", "", transcript, 0)}, policy)

	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.True(t, strings.ToValidUTF8(ch.Text, "") == ch.Text, "chunk text must be valid UTF-8")
	}
}

func TestChunk_OversizedBudgetClamped(t *testing.T) {
	c := New()
	policy := domain.DefaultChunkPolicy()
	policy.TranscriptTokens = 100000
	policy.MaxInputTokens = 64

	transcript := strings.Repeat("Another sentence about audience growth and retention metrics. ", 20)
	chunks, err := c.Chunk([]domain.ContentItem{item("p1", "", transcript, 0)}, policy)

	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.Tokens, policy.MaxInputTokens+16)
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, 0, Tokens(""))
	assert.Equal(t, 0, Tokens("   "))
	assert.Equal(t, 2, Tokens("one"))
	assert.Equal(t, 4, Tokens("one two three"))
}

func TestQuality_Bounds(t *testing.T) {
	text := "How to build a posting strategy? Step one is a strong hook, step two is a clear payoff, " +
		"step three is a call to action that invites a reply from your audience every single time."
	score := quality(text, domain.Engagement{Likes: 5000})
	assert.Equal(t, 1.0, score)

	assert.Equal(t, 0.0, quality("tiny", domain.Engagement{}))
}

func TestKeywordTagger(t *testing.T) {
	tagger := DefaultKeywordTagger()

	tags := tagger.Tags("How I grew my followers with a better posting schedule and more comments")
	assert.Contains(t, tags, "growth")
	assert.Contains(t, tags, "content_strategy")
	assert.Contains(t, tags, "engagement")
	assert.NotContains(t, tags, "monetization")

	assert.Empty(t, tagger.Tags("completely unrelated text"))
}

func TestKeywordTagger_Custom(t *testing.T) {
	tagger := NewKeywordTagger(map[string][]string{
		"fitness": {"workout", "reps"},
	})

	assert.Equal(t, []string{"fitness"}, tagger.Tags("My WORKOUT split for the week"))
}
