package chunker

import (
	"sort"
	"strings"
)

// TopicTagger labels chunk text with topic tags used for retrieval
// diversity and display.
type TopicTagger interface {
	// Tags returns the topics found in text, sorted and deduplicated.
	Tags(text string) []string
}

// KeywordTagger tags text by scanning for topic keywords. It needs no
// model call, so chunking stays a pure local function.
type KeywordTagger struct {
	topics map[string][]string
}

var _ TopicTagger = (*KeywordTagger)(nil)

// NewKeywordTagger creates a tagger from a topic -> keywords map.
// Keywords are matched case-insensitively as substrings.
func NewKeywordTagger(topics map[string][]string) *KeywordTagger {
	normalised := make(map[string][]string, len(topics))
	for topic, keywords := range topics {
		lowered := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				lowered = append(lowered, kw)
			}
		}
		if len(lowered) > 0 {
			normalised[topic] = lowered
		}
	}
	return &KeywordTagger{topics: normalised}
}

// DefaultKeywordTagger covers the topics creator-coaching questions
// cluster around.
func DefaultKeywordTagger() *KeywordTagger {
	return NewKeywordTagger(map[string][]string{
		"growth": {
			"grow", "growth", "followers", "audience", "reach", "viral", "algorithm",
		},
		"content_strategy": {
			"content", "post", "posting", "hook", "caption", "reel", "video", "idea", "schedule",
		},
		"engagement": {
			"engagement", "comments", "likes", "shares", "saves", "community", "dm",
		},
		"monetization": {
			"monetize", "monetization", "revenue", "income", "sponsor", "brand deal",
			"affiliate", "sell", "offer", "pricing", "client",
		},
		"mindset": {
			"mindset", "consistency", "burnout", "motivation", "discipline", "habit",
		},
	})
}

// Tags implements TopicTagger.
func (t *KeywordTagger) Tags(text string) []string {
	lower := strings.ToLower(text)

	var tags []string
	for topic, keywords := range t.topics {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, topic)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}
