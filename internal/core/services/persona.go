package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driving"
	"github.com/arclight-labs/coach-cli/internal/logger"
)

// Ensure PersonaService implements the interface.
var _ driving.PersonaService = (*PersonaService)(nil)

// digestItems caps how many corpus items feed the extraction prompt.
const digestItems = 50

// digestItemRunes caps the text taken from a single item.
const digestItemRunes = 600

// PersonaService extracts persona profiles from a creator's corpus.
//
// The model's output is treated as a proposal, not a fact: every
// framework and key result must cite item ids that exist, and every
// signature phrase must appear verbatim in the corpus. Entries that
// fail the check are dropped rather than stored.
type PersonaService struct {
	corpusStore  driven.CorpusStore
	personaStore driven.PersonaStore
	llm          driven.LLMService
	prompts      driven.PromptStore
}

// NewPersonaService creates a persona service.
func NewPersonaService(
	corpusStore driven.CorpusStore,
	personaStore driven.PersonaStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *PersonaService {
	return &PersonaService{
		corpusStore:  corpusStore,
		personaStore: personaStore,
		llm:          llm,
		prompts:      prompts,
	}
}

// extractedProfile is the JSON shape requested from the model.
type extractedProfile struct {
	ExpertiseAreas []string `json:"expertise_areas"`
	Frameworks     []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		ProofIDs    []string `json:"proof_ids"`
	} `json:"frameworks"`
	TeachingStyle    string   `json:"teaching_style"`
	SignaturePhrases []string `json:"signature_phrases"`
	KeyResults       []struct {
		Claim   string `json:"claim"`
		ProofID string `json:"proof_id"`
	} `json:"key_results"`
	SystemPrompt string `json:"system_prompt"`
}

// BuildProfile implements driving.PersonaService.
func (s *PersonaService) BuildProfile(
	ctx context.Context, creatorID string,
) (*domain.PersonaProfile, error) {
	logger.Section("Persona Extraction")

	if _, err := s.corpusStore.GetCreator(ctx, creatorID); err != nil {
		return nil, fmt.Errorf("building profile: %w", err)
	}
	items, err := s.corpusStore.ListItems(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("building profile: listing corpus: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("building profile: %w: creator %s has an empty corpus",
			domain.ErrInvalidInput, creatorID)
	}

	tmpl, err := s.prompts.Load(driven.PromptPersonaExtract)
	if err != nil {
		return nil, fmt.Errorf("building profile: loading prompt: %w", err)
	}

	raw, err := s.llm.Generate(ctx, fmt.Sprintf(tmpl, corpusDigest(items)), driven.GenerateOptions{
		MaxTokens:   2048,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("building profile: %w", err)
	}

	var extracted extractedProfile
	if err := json.Unmarshal([]byte(extractJSON(raw)), &extracted); err != nil {
		return nil, fmt.Errorf("building profile: %w: model returned malformed JSON: %v",
			domain.ErrLLMUnavailable, err)
	}

	profile := s.assemble(creatorID, extracted, items)

	prior, err := s.personaStore.GetProfile(ctx, creatorID)
	switch {
	case err == nil:
		profile.Version = prior.Version + 1
	case errors.Is(err, domain.ErrNotFound):
		profile.Version = 1
	default:
		return nil, fmt.Errorf("building profile: %w", err)
	}
	profile.CreatedAt = time.Now().UTC()

	if err := profile.Validate(items); err != nil {
		return nil, fmt.Errorf("building profile: %w", err)
	}
	if err := s.personaStore.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("building profile: %w", err)
	}

	logger.Info("Profile v%d: %d expertise areas, %d frameworks, %d phrases",
		profile.Version, len(profile.ExpertiseAreas), len(profile.Frameworks), len(profile.SignaturePhrases))
	return profile, nil
}

// GetProfile implements driving.PersonaService.
func (s *PersonaService) GetProfile(
	ctx context.Context, creatorID string,
) (*domain.PersonaProfile, error) {
	profile, err := s.personaStore.GetProfile(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return profile, nil
}

// assemble converts the extraction into a profile, dropping every entry
// that cannot be traced back to the corpus.
func (s *PersonaService) assemble(
	creatorID string, extracted extractedProfile, items []domain.ContentItem,
) *domain.PersonaProfile {
	known := make(map[string]bool, len(items))
	var corpusText strings.Builder
	for _, item := range items {
		known[item.ID] = true
		corpusText.WriteString(item.Caption)
		corpusText.WriteByte('\n')
		corpusText.WriteString(item.Transcript)
		corpusText.WriteByte('\n')
	}
	corpus := corpusText.String()

	profile := &domain.PersonaProfile{
		CreatorID:      creatorID,
		ExpertiseAreas: extracted.ExpertiseAreas,
		TeachingStyle:  extracted.TeachingStyle,
		SystemPrompt:   extracted.SystemPrompt,
	}

	for _, fw := range extracted.Frameworks {
		traceable := len(fw.ProofIDs) > 0
		for _, id := range fw.ProofIDs {
			if !known[id] {
				traceable = false
				break
			}
		}
		if !traceable {
			logger.Warn("Dropping framework %q: untraceable proof ids %v", fw.Name, fw.ProofIDs)
			continue
		}
		profile.Frameworks = append(profile.Frameworks, domain.Framework{
			Name:        fw.Name,
			Description: fw.Description,
			ProofIDs:    fw.ProofIDs,
		})
	}

	for _, phrase := range extracted.SignaturePhrases {
		if phrase == "" || !strings.Contains(corpus, phrase) {
			logger.Warn("Dropping signature phrase %q: not found verbatim in corpus", phrase)
			continue
		}
		profile.SignaturePhrases = append(profile.SignaturePhrases, phrase)
	}

	for _, kr := range extracted.KeyResults {
		if !known[kr.ProofID] {
			logger.Warn("Dropping key result %q: unknown proof id %s", kr.Claim, kr.ProofID)
			continue
		}
		profile.KeyResults = append(profile.KeyResults, domain.KeyResult{
			Claim:   kr.Claim,
			ProofID: kr.ProofID,
		})
	}

	return profile
}

// corpusDigest renders the highest-engagement items as a compact block
// the extraction prompt can reason over, each labelled with its id so
// the model can cite proof.
func corpusDigest(items []domain.ContentItem) string {
	ranked := make([]domain.ContentItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Engagement.Rate > ranked[j].Engagement.Rate
	})
	if len(ranked) > digestItems {
		ranked = ranked[:digestItems]
	}

	var b strings.Builder
	for _, item := range ranked {
		text := item.Caption
		if item.Transcript != "" {
			text = text + "\n" + item.Transcript
		}
		fmt.Fprintf(&b, "id=%s likes=%d comments=%d\n%s\n---\n",
			item.ID, item.Engagement.Likes, item.Engagement.Comments, truncateRunes(text, digestItemRunes))
	}
	return b.String()
}

// extractJSON strips markdown fences and surrounding prose from a model
// response, keeping the outermost JSON object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

// truncateRunes trims s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
