// Package chunker splits creator content into semantically coherent,
// provenance-tagged chunks for the knowledge base.
//
// Chunking is a pure function of (corpus, policy): the same input always
// produces the same chunks, ids included, so an index rebuild is
// reproducible.
package chunker

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// chunkNamespace is the UUID namespace for deterministic chunk ids.
var chunkNamespace = uuid.MustParse("8b6f3a52-9c1e-4f7a-b6d0-2f4e8a1c5d93")

// Chunker cuts content items into chunks per a domain.ChunkPolicy.
type Chunker struct {
	tagger TopicTagger
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTagger sets the topic tagging strategy.
func WithTagger(t TopicTagger) Option {
	return func(c *Chunker) {
		if t != nil {
			c.tagger = t
		}
	}
}

// New creates a chunker with the given options.
// The default topic tagger is DefaultKeywordTagger.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		tagger: DefaultKeywordTagger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits the items into chunks. Every produced chunk records the
// full set of source item ids it derives from; text is only ever cut at
// segment or word boundaries, so multi-byte runes are never truncated and
// signature phrases matched whole in the source are never split.
// Items with no text yield zero chunks, not an error.
func (c *Chunker) Chunk(items []domain.ContentItem, policy domain.ChunkPolicy) ([]domain.Chunk, error) {
	policy = normalise(policy)

	var chunks []domain.Chunk
	var shortItems []domain.ContentItem

	for _, item := range items {
		// High-engagement items earn their bonus chunk regardless of
		// which path the rest of their text takes.
		hv := c.highValueChunk(item, policy)

		if isShort(item, policy) {
			shortItems = append(shortItems, item)
			if hv != nil {
				chunks = append(chunks, *hv)
			}
			continue
		}

		if item.Caption != "" {
			chunks = append(chunks, c.chunkText(item, item.Caption, domain.ChunkKindCaption, policy.CaptionTokens, policy)...)
		}
		if item.Transcript != "" {
			chunks = append(chunks, c.chunkText(item, item.Transcript, domain.ChunkKindTranscript, policy.TranscriptTokens, policy)...)
		}
		if hv != nil {
			chunks = append(chunks, *hv)
		}
	}

	chunks = append(chunks, c.mergeShort(shortItems, policy)...)

	return chunks, nil
}

// normalise fills zero policy fields from the default policy and clamps
// budgets to the embedding provider's input limit.
func normalise(p domain.ChunkPolicy) domain.ChunkPolicy {
	def := domain.DefaultChunkPolicy()
	if p.CaptionTokens <= 0 {
		p.CaptionTokens = def.CaptionTokens
	}
	if p.TranscriptTokens <= 0 {
		p.TranscriptTokens = def.TranscriptTokens
	}
	if p.OverlapTokens < 0 {
		p.OverlapTokens = 0
	}
	if p.Boundary == "" {
		p.Boundary = def.Boundary
	}
	if p.MinChunkRunes <= 0 {
		p.MinChunkRunes = def.MinChunkRunes
	}
	if p.MaxInputTokens <= 0 {
		p.MaxInputTokens = def.MaxInputTokens
	}
	if p.CaptionTokens > p.MaxInputTokens {
		p.CaptionTokens = p.MaxInputTokens
	}
	if p.TranscriptTokens > p.MaxInputTokens {
		p.TranscriptTokens = p.MaxInputTokens
	}
	if p.OverlapTokens >= p.CaptionTokens {
		p.OverlapTokens = p.CaptionTokens / 4
	}
	return p
}

// isShort reports whether the item's whole text is small enough to be
// merged with other short items into a combined chunk.
func isShort(item domain.ContentItem, policy domain.ChunkPolicy) bool {
	if policy.MergeBelowTokens <= 0 {
		return false
	}
	return item.Transcript == "" && item.Caption != "" && Tokens(item.Caption) < policy.MergeBelowTokens
}

// chunkText cuts one text field of one item into chunks.
func (c *Chunker) chunkText(
	item domain.ContentItem, text string, kind domain.ChunkKind, budget int, policy domain.ChunkPolicy,
) []domain.Chunk {
	segs := segment(text, policy.Boundary)
	segs = mergePhraseSpans(segs, policy.SignaturePhrases)
	pieces := pack(segs, budget, policy.OverlapTokens, policy.SignaturePhrases)

	chunks := make([]domain.Chunk, 0, len(pieces))
	position := 0
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if utf8.RuneCountInString(piece) < policy.MinChunkRunes {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:        chunkID(item.CreatorID, item.ID, kind, position, piece),
			CreatorID: item.CreatorID,
			SourceIDs: []string{item.ID},
			Text:      piece,
			Kind:      kind,
			TopicTags: c.tags(piece, kind),
			Position:  position,
			Tokens:    Tokens(piece),
			Quality:   quality(piece, item.Engagement),
		})
		position++
	}
	return chunks
}

// highValueChunk produces an extra whole-item chunk for content whose
// engagement marks it as especially retrievable. Transcript is preferred
// over caption.
func (c *Chunker) highValueChunk(item domain.ContentItem, policy domain.ChunkPolicy) *domain.Chunk {
	if policy.HighValueLikes <= 0 && policy.HighValueRate <= 0 {
		return nil
	}
	likesHit := policy.HighValueLikes > 0 && item.Engagement.Likes > policy.HighValueLikes
	rateHit := policy.HighValueRate > 0 && item.Engagement.Rate > policy.HighValueRate
	if !likesHit && !rateHit {
		return nil
	}

	text := item.Transcript
	if text == "" {
		text = item.Caption
	}
	if text == "" {
		return nil
	}
	text = truncateTokens(text, policy.MaxInputTokens)
	if utf8.RuneCountInString(text) < policy.MinChunkRunes {
		return nil
	}

	return &domain.Chunk{
		ID:        chunkID(item.CreatorID, item.ID, domain.ChunkKindHighValue, 0, text),
		CreatorID: item.CreatorID,
		SourceIDs: []string{item.ID},
		Text:      text,
		Kind:      domain.ChunkKindHighValue,
		TopicTags: []string{"viral", "high_engagement"},
		Tokens:    Tokens(text),
		Quality:   1.0,
	}
}

// mergeShort packs the captions of short items into combined chunks with
// the full provenance set of every contributing item.
func (c *Chunker) mergeShort(items []domain.ContentItem, policy domain.ChunkPolicy) []domain.Chunk {
	if len(items) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var texts []string
	var ids []string
	var best domain.Engagement
	tokens := 0
	position := 0

	flush := func() {
		if len(texts) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(texts, "\n"))
		if utf8.RuneCountInString(text) >= policy.MinChunkRunes {
			srcIDs := make([]string, len(ids))
			copy(srcIDs, ids)
			chunks = append(chunks, domain.Chunk{
				ID:        chunkID(items[0].CreatorID, strings.Join(ids, ","), domain.ChunkKindMerged, position, text),
				CreatorID: items[0].CreatorID,
				SourceIDs: srcIDs,
				Text:      text,
				Kind:      domain.ChunkKindMerged,
				TopicTags: c.tags(text, domain.ChunkKindCaption),
				Position:  position,
				Tokens:    Tokens(text),
				Quality:   quality(text, best),
			})
			position++
		}
		texts, ids, tokens, best = nil, nil, 0, domain.Engagement{}
	}

	for _, item := range items {
		t := Tokens(item.Caption)
		if tokens+t > policy.CaptionTokens && tokens > 0 {
			flush()
		}
		texts = append(texts, item.Caption)
		ids = append(ids, item.ID)
		tokens += t
		if item.Engagement.Likes > best.Likes {
			best = item.Engagement
		}
	}
	flush()

	return chunks
}

// tags combines the topic tagger's labels with the content-type tag.
func (c *Chunker) tags(text string, kind domain.ChunkKind) []string {
	var contentTag string
	switch kind {
	case domain.ChunkKindTranscript:
		contentTag = "transcript"
	default:
		contentTag = "caption"
	}

	topics := c.tagger.Tags(text)
	out := make([]string, 0, len(topics)+1)
	out = append(out, topics...)
	out = append(out, contentTag)
	return out
}

// chunkID derives a deterministic id from the chunk's identity so
// rebuilds from an unchanged corpus reproduce the same ids.
func chunkID(creatorID, sourceKey string, kind domain.ChunkKind, position int, text string) string {
	var b strings.Builder
	b.WriteString(creatorID)
	b.WriteByte('|')
	b.WriteString(sourceKey)
	b.WriteByte('|')
	b.WriteString(string(kind))
	b.WriteByte('|')
	b.WriteRune(rune('0' + position%10))
	b.WriteByte('|')
	b.WriteString(text)
	return uuid.NewSHA1(chunkNamespace, []byte(b.String())).String()
}

// Tokens estimates the token length of text. The heuristic (4 tokens per
// 3 words) tracks BPE tokenisers closely enough for budgeting and is
// deterministic across platforms.
func Tokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return (words*4 + 2) / 3
}

// quality scores a chunk 0-1 for retrieval tie-breaking: a readable
// length, strong engagement and actionable phrasing all add weight.
func quality(text string, eng domain.Engagement) float64 {
	score := 0.0

	words := len(strings.Fields(text))
	if words >= 15 && words <= 150 {
		score += 0.3
	}

	switch {
	case eng.Likes > 1000:
		score += 0.4
	case eng.Likes > 500:
		score += 0.2
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "?") {
		score += 0.1
	}
	for _, marker := range []string{"how to", "tip", "strategy", "step"} {
		if strings.Contains(lower, marker) {
			score += 0.2
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// segment splits text at the policy's structural boundary.
func segment(text string, boundary domain.Boundary) []string {
	switch boundary {
	case domain.BoundaryParagraph:
		parts := strings.Split(text, "\n\n")
		segs := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				segs = append(segs, s)
			}
		}
		return segs
	case domain.BoundaryNone:
		if s := strings.TrimSpace(text); s != "" {
			return []string{s}
		}
		return nil
	default:
		return splitSentences(text)
	}
}

// splitSentences splits text at sentence terminators, iterating runes so
// multi-byte characters are never cut.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// mergePhraseSpans joins adjacent segments that a signature phrase spans,
// so packing can never place the phrase across two chunks.
func mergePhraseSpans(segs []string, phrases []string) []string {
	if len(phrases) == 0 || len(segs) < 2 {
		return segs
	}

	merged := true
	for merged {
		merged = false
		for i := 0; i+1 < len(segs) && !merged; i++ {
			joined := segs[i] + " " + segs[i+1]
			for _, p := range phrases {
				if p == "" || strings.Contains(segs[i], p) || strings.Contains(segs[i+1], p) {
					continue
				}
				if strings.Contains(joined, p) {
					segs[i] = joined
					segs = append(segs[:i+1], segs[i+2:]...)
					merged = true
					break
				}
			}
		}
	}
	return segs
}

// pack greedily fills chunks with whole segments up to the token budget,
// seeding each new chunk with the previous chunk's trailing segments as
// overlap. A single segment over budget is split at word boundaries.
func pack(segs []string, budget, overlap int, phrases []string) []string {
	var out []string
	var cur []string
	curTokens := 0
	fresh := false // cur holds something beyond the overlap seed

	flush := func() {
		if len(cur) == 0 || !fresh {
			return
		}
		out = append(out, strings.Join(cur, " "))

		if overlap <= 0 {
			cur, curTokens = nil, 0
		} else {
			var keep []string
			kept := 0
			for i := len(cur) - 1; i >= 0; i-- {
				t := Tokens(cur[i])
				if kept+t > overlap {
					break
				}
				keep = append([]string{cur[i]}, keep...)
				kept += t
			}
			cur, curTokens = keep, kept
		}
		fresh = false
	}

	for _, seg := range segs {
		t := Tokens(seg)

		if t > budget {
			flush()
			cur, curTokens, fresh = nil, 0, false
			out = append(out, splitLongSegment(seg, budget, phrases)...)
			continue
		}

		if curTokens+t > budget {
			flush()
			if curTokens+t > budget {
				// Overlap seed alone would bust the budget; drop it.
				cur, curTokens = nil, 0
			}
		}

		cur = append(cur, seg)
		curTokens += t
		fresh = true
	}
	flush()

	return out
}

// splitLongSegment cuts an oversized segment into budget-sized pieces at
// word boundaries, shifting any cut that would land inside a signature
// phrase occurrence.
func splitLongSegment(seg string, budget int, phrases []string) []string {
	words := strings.Fields(seg)
	wordsPerPiece := budget * 3 / 4
	if wordsPerPiece < 1 {
		wordsPerPiece = 1
	}

	protected := phraseWordSpans(words, phrases)

	var pieces []string
	start := 0
	for start < len(words) {
		end := start + wordsPerPiece
		if end >= len(words) {
			end = len(words)
		} else {
			for _, span := range protected {
				if end > span[0] && end < span[1] {
					if span[0] > start {
						end = span[0]
					} else {
						end = span[1]
					}
					break
				}
			}
			if end > len(words) {
				end = len(words)
			}
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
		start = end
	}
	return pieces
}

// phraseWordSpans locates signature phrase occurrences as [start,end)
// word-index ranges, matching phrase words exactly.
func phraseWordSpans(words []string, phrases []string) [][2]int {
	var spans [][2]int
	for _, p := range phrases {
		pw := strings.Fields(p)
		if len(pw) < 2 {
			continue // single-word phrases cannot be split
		}
		for i := 0; i+len(pw) <= len(words); i++ {
			match := true
			for j := range pw {
				if words[i+j] != pw[j] {
					match = false
					break
				}
			}
			if match {
				spans = append(spans, [2]int{i, i + len(pw)})
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	return spans
}

// truncateTokens trims text to the token budget at a word boundary.
func truncateTokens(text string, budget int) string {
	if budget <= 0 || Tokens(text) <= budget {
		return text
	}
	words := strings.Fields(text)
	keep := budget * 3 / 4
	if keep < 1 {
		keep = 1
	}
	if keep > len(words) {
		keep = len(words)
	}
	return strings.Join(words[:keep], " ")
}
