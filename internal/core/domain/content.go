package domain

import "time"

// MediaType identifies the kind of content a creator published.
type MediaType string

// Known media types.
const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeReel     MediaType = "reel"
	MediaTypeCarousel MediaType = "carousel"
)

// Creator represents a tracked content creator.
type Creator struct {
	// ID is the unique identifier for the creator.
	ID string

	// Username is the creator's handle on the platform.
	Username string

	// Platform is the source platform (e.g. "instagram").
	Platform string

	// DisplayName is the human-readable name.
	DisplayName string

	// Bio is the profile description, if known.
	Bio string

	// FollowerCount is the follower count at last scrape.
	FollowerCount int

	// CreatedAt is when the creator was first added.
	CreatedAt time.Time

	// LastScraped is when the corpus was last refreshed.
	LastScraped time.Time
}

// Engagement holds the interaction metrics for a content item.
type Engagement struct {
	// Likes is the like count.
	Likes int

	// Comments is the comment count.
	Comments int

	// Shares is the share count.
	Shares int

	// Views is the view count (zero for non-video content).
	Views int

	// Rate is the derived engagement rate (likes + comments when no
	// per-post follower count is available).
	Rate float64
}

// ContentItem is one scraped unit of creator content (post or video).
// Items are immutable once ingested; the corpus store owns them and
// the knowledge base only ever reads them.
type ContentItem struct {
	// ID is the stable platform identifier for the item.
	ID string

	// CreatorID links to the owning Creator.
	CreatorID string

	// MediaType is the kind of content.
	MediaType MediaType

	// Caption is the post caption text, if any.
	Caption string

	// Transcript is the video transcript text, if any.
	Transcript string

	// Engagement holds the interaction metrics.
	Engagement Engagement

	// Hashtags are the distinct hashtags found in the caption.
	Hashtags []string

	// Mentions are the distinct @mentions found in the caption.
	Mentions []string

	// Permalink is the canonical URL of the item.
	Permalink string

	// DurationSeconds is the video length (zero for images).
	DurationSeconds int

	// PostedAt is when the item was published.
	PostedAt time.Time

	// ScrapedAt is when the item entered the corpus.
	ScrapedAt time.Time
}

// HasTranscript reports whether the item carries transcript text.
func (c ContentItem) HasTranscript() bool {
	return c.Transcript != ""
}

// CorpusStats summarises a creator's corpus and derived knowledge base.
type CorpusStats struct {
	// TotalItems is the number of content items in the corpus.
	TotalItems int

	// VideoItems is the number of video items.
	VideoItems int

	// TranscribedItems is the number of items with a transcript.
	TranscribedItems int

	// ChunkCount is the number of knowledge chunks derived from the corpus.
	ChunkCount int
}
