package domain

import (
	"fmt"
	"strings"
	"time"
)

// Framework is a named method the creator teaches, with proof that it
// actually appears in their content.
type Framework struct {
	// Name is the framework name as the creator uses it.
	Name string

	// Description summarises the method.
	Description string

	// ProofIDs are ContentItem ids where the framework is taught.
	// Always non-empty in a valid profile.
	ProofIDs []string
}

// KeyResult is a metric claim the creator has made, with provenance.
type KeyResult struct {
	// Claim is the result statement (e.g. "grew to 50K views").
	Claim string

	// ProofID is the ContentItem id the claim traces to.
	ProofID string
}

// PersonaProfile is a per-creator compression of the corpus: extracted
// expertise, frameworks, voice and results. No field may contain a value
// absent from the source corpus - the profile summarises, it never invents.
//
// Profiles are versioned so a coach can be rebuilt from a refreshed corpus
// without losing prior conversation history.
type PersonaProfile struct {
	// CreatorID links to the Creator the profile describes.
	CreatorID string

	// Version increases monotonically with each rebuild.
	Version int

	// ExpertiseAreas are the topics the creator demonstrably covers.
	ExpertiseAreas []string

	// Frameworks are the named methods the creator teaches, in the
	// order they were extracted.
	Frameworks []Framework

	// TeachingStyle describes how the creator communicates.
	TeachingStyle string

	// SignaturePhrases are exact strings observed verbatim in the corpus.
	SignaturePhrases []string

	// KeyResults are metric claims with provenance.
	KeyResults []KeyResult

	// SystemPrompt conditions the generation call on the persona.
	SystemPrompt string

	// CreatedAt is when this version was built.
	CreatedAt time.Time
}

// Validate checks that every profile field traces to the given corpus.
// Proof ids must reference existing items and signature phrases must occur
// verbatim in some item's text. Returns ErrInvalidInput (wrapped) on the
// first untraceable field.
func (p *PersonaProfile) Validate(corpus []ContentItem) error {
	ids := make(map[string]bool, len(corpus))
	var text strings.Builder
	for _, item := range corpus {
		ids[item.ID] = true
		text.WriteString(item.Caption)
		text.WriteByte('\n')
		text.WriteString(item.Transcript)
		text.WriteByte('\n')
	}
	corpusText := text.String()

	for _, fw := range p.Frameworks {
		if len(fw.ProofIDs) == 0 {
			return fmt.Errorf("framework %q has no proof ids: %w", fw.Name, ErrInvalidInput)
		}
		for _, id := range fw.ProofIDs {
			if !ids[id] {
				return fmt.Errorf("framework %q cites unknown item %q: %w", fw.Name, id, ErrInvalidInput)
			}
		}
	}

	for _, kr := range p.KeyResults {
		if kr.ProofID == "" || !ids[kr.ProofID] {
			return fmt.Errorf("key result %q cites unknown item %q: %w", kr.Claim, kr.ProofID, ErrInvalidInput)
		}
	}

	for _, phrase := range p.SignaturePhrases {
		if phrase == "" || !strings.Contains(corpusText, phrase) {
			return fmt.Errorf("signature phrase %q not found verbatim in corpus: %w", phrase, ErrInvalidInput)
		}
	}

	return nil
}
