package domain

import (
	"regexp"
	"strings"
	"time"
)

// citationPattern matches the [post:<id>] markers the synthesizer asks the
// generation provider to emit for every evidence-backed claim.
var citationPattern = regexp.MustCompile(`\[post:([^\]\s]+)\]`)

// Reference links an answer back to a specific piece of evidence.
type Reference struct {
	// ChunkID is the evidence chunk.
	ChunkID string

	// ContentIDs are the ContentItem ids the chunk traces to.
	ContentIDs []string

	// TopicTags are the chunk's topic labels.
	TopicTags []string

	// Score is the retrieval similarity score for the chunk.
	Score float64

	// Permalink is the canonical URL of the primary source item, if known.
	Permalink string
}

// Answer is a synthesized coach response. Every factual claim in Text is
// attributable either to the PersonaProfile or to a Reference; Grounded
// distinguishes the two so a consumer can render the difference.
type Answer struct {
	// CreatorID identifies the coach that answered.
	CreatorID string

	// SessionID is the conversation the answer belongs to.
	SessionID string

	// Question is the user's question.
	Question string

	// Text is the generated response.
	Text string

	// Grounded is true when the answer cites fresh retrieved evidence.
	// False means the response is scoped to profile-level statements only.
	Grounded bool

	// References are the evidence chunks backing the answer.
	References []Reference

	// ProfileVersion is the persona profile version used.
	ProfileVersion int

	// CreatedAt is when the answer was produced.
	CreatedAt time.Time
}

// GroundingContract defines what a generation call may assert: claims from
// the persona profile plus the supplied evidence chunks, nothing else.
// The generation provider is untrusted; the synthesizer re-validates its
// output against this contract.
type GroundingContract struct {
	// Persona is the pre-verified profile the answer may draw on.
	Persona PersonaProfile

	// Evidence are the chunks the answer may cite.
	Evidence []Chunk

	// allowed is the set of ContentItem ids citable from Evidence.
	allowed map[string]bool
}

// NewGroundingContract builds a contract from a profile and evidence set.
func NewGroundingContract(persona PersonaProfile, evidence []Chunk) *GroundingContract {
	allowed := make(map[string]bool)
	for _, ch := range evidence {
		for _, id := range ch.SourceIDs {
			allowed[id] = true
		}
	}
	return &GroundingContract{
		Persona:  persona,
		Evidence: evidence,
		allowed:  allowed,
	}
}

// Allows reports whether the contract permits citing the given ContentItem id.
func (g *GroundingContract) Allows(contentID string) bool {
	return g.allowed[contentID]
}

// Violations returns the cited ContentItem ids in text that fall outside
// the evidence set. An empty result means the text honours the contract.
func (g *GroundingContract) Violations(text string) []string {
	var bad []string
	seen := make(map[string]bool)
	for _, id := range ParseCitations(text) {
		if !g.allowed[id] && !seen[id] {
			bad = append(bad, id)
			seen[id] = true
		}
	}
	return bad
}

// ParseCitations extracts the ContentItem ids cited in generated text,
// in order of first appearance.
func ParseCitations(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			ids = append(ids, m[1])
			seen[m[1]] = true
		}
	}
	return ids
}

// StripCitations removes citation markers from text. Used for the
// profile-only fallback, which must not appear evidence-grounded.
func StripCitations(text string) string {
	return strings.TrimSpace(citationPattern.ReplaceAllString(text, ""))
}
