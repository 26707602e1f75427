package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driving"
	"github.com/arclight-labs/coach-cli/internal/logger"
)

// Ensure CoachService implements the interface.
var _ driving.CoachService = (*CoachService)(nil)

// historyWindow is how many prior messages are replayed to the model
// for conversational continuity.
const historyWindow = 10

// answerMaxTokens caps generated answer length.
const answerMaxTokens = 1024

// CoachService synthesizes evidence-grounded answers in a creator's
// voice. Generated text is untrusted: every citation is checked against
// the evidence that was actually provided, and an answer that cites
// outside it is retried once and then degraded to an explicitly
// ungrounded profile-only reply.
type CoachService struct {
	knowledge    driving.KnowledgeService
	corpusStore  driven.CorpusStore
	personaStore driven.PersonaStore
	convStore    driven.ConversationStore
	llm          driven.LLMService
	prompts      driven.PromptStore
	opts         domain.EvidenceOptions
}

// NewCoachService creates a coach service.
func NewCoachService(
	knowledge driving.KnowledgeService,
	corpusStore driven.CorpusStore,
	personaStore driven.PersonaStore,
	convStore driven.ConversationStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	opts domain.EvidenceOptions,
) *CoachService {
	if opts.KCandidates <= 0 {
		opts = domain.DefaultEvidenceOptions()
	}
	return &CoachService{
		knowledge:    knowledge,
		corpusStore:  corpusStore,
		personaStore: personaStore,
		convStore:    convStore,
		llm:          llm,
		prompts:      prompts,
		opts:         opts,
	}
}

// Ask implements driving.CoachService.
func (s *CoachService) Ask(
	ctx context.Context, creatorID, sessionID, question string,
) (*domain.Answer, error) {
	logger.Section("Coach Ask")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("asking coach: %w: empty question", domain.ErrInvalidInput)
	}

	creator, err := s.corpusStore.GetCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("asking coach: %w", err)
	}
	profile, err := s.personaStore.GetProfile(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("asking coach: loading profile: %w", err)
	}

	session, err := s.ensureSession(ctx, creatorID, sessionID, question)
	if err != nil {
		return nil, err
	}
	history, err := s.convStore.ListMessages(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("asking coach: loading history: %w", err)
	}

	candidates, err := s.knowledge.Search(ctx, creatorID, question, s.opts.KCandidates)
	if err != nil {
		return nil, fmt.Errorf("asking coach: %w", err)
	}
	evidence := SelectEvidence(candidates, s.opts)
	logger.Debug("Evidence: %d of %d candidates kept", len(evidence), len(candidates))

	var answer *domain.Answer
	if len(evidence) == 0 {
		logger.Info("No evidence above floor, answering from profile only")
		answer, err = s.profileOnlyAnswer(ctx, creator.Username, profile, question, history)
	} else {
		answer, err = s.groundedAnswer(ctx, creator.Username, profile, question, history, evidence)
	}
	if err != nil {
		return nil, err
	}

	answer.CreatorID = creatorID
	answer.SessionID = session.ID
	answer.Question = question
	answer.ProfileVersion = profile.Version
	answer.CreatedAt = time.Now().UTC()

	if err := s.recordExchange(ctx, session.ID, question, answer, evidence); err != nil {
		return nil, err
	}
	return answer, nil
}

// History implements driving.CoachService.
func (s *CoachService) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if _, err := s.convStore.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	msgs, err := s.convStore.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return msgs, nil
}

// groundedAnswer runs evidence-based synthesis with citation
// enforcement: one strict retry on a violation, then degradation to the
// profile-only path.
func (s *CoachService) groundedAnswer(
	ctx context.Context,
	username string,
	profile *domain.PersonaProfile,
	question string,
	history []domain.Message,
	evidence []domain.ScoredChunk,
) (*domain.Answer, error) {
	chunks := make([]domain.Chunk, len(evidence))
	for n, sc := range evidence {
		chunks[n] = sc.Chunk
	}
	contract := domain.NewGroundingContract(*profile, chunks)

	system, err := s.systemPrompt(username, profile)
	if err != nil {
		return nil, err
	}
	userTmpl, err := s.prompts.Load(driven.PromptCoachAnswer)
	if err != nil {
		return nil, fmt.Errorf("asking coach: loading prompt: %w", err)
	}
	user := fmt.Sprintf(userTmpl, question, evidenceBlock(evidence), username)

	text, err := s.chat(ctx, system, history, user)
	if err != nil {
		return nil, fmt.Errorf("asking coach: %w", err)
	}

	violations := contract.Violations(text)
	if len(violations) > 0 {
		logger.Warn("Ungrounded citations %v, retrying with strict prompt", violations)
		strict, perr := s.prompts.Load(driven.PromptStrictGrounding)
		if perr != nil {
			return nil, fmt.Errorf("asking coach: loading prompt: %w", perr)
		}
		text, err = s.chat(ctx, system+"\n\n"+strict, history, user)
		if err != nil {
			return nil, fmt.Errorf("asking coach: %w", err)
		}
		violations = contract.Violations(text)
	}

	if len(violations) > 0 {
		// The generation is rejected outright: its claims lean on sources
		// that were never in the evidence, so none of its text can be trusted.
		logger.Warn("Retry still cites outside evidence %v, rejecting answer", violations)
		return s.profileOnlyAnswer(ctx, username, profile, question, history)
	}

	refs, err := s.references(ctx, text, evidence)
	if err != nil {
		return nil, err
	}
	return &domain.Answer{
		Text:       text,
		Grounded:   true,
		References: refs,
	}, nil
}

// profileOnlyAnswer answers from persona alone when no evidence clears
// the relevance floor. The answer is marked ungrounded and any citation
// markers the model invents are stripped.
func (s *CoachService) profileOnlyAnswer(
	ctx context.Context,
	username string,
	profile *domain.PersonaProfile,
	question string,
	history []domain.Message,
) (*domain.Answer, error) {
	system, err := s.systemPrompt(username, profile)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.prompts.Load(driven.PromptProfileFallback)
	if err != nil {
		return nil, fmt.Errorf("asking coach: loading prompt: %w", err)
	}

	text, err := s.chat(ctx, system, history, fmt.Sprintf(tmpl, question, username))
	if err != nil {
		return nil, fmt.Errorf("asking coach: %w", err)
	}

	return &domain.Answer{
		Text:     domain.StripCitations(text),
		Grounded: false,
	}, nil
}

// systemPrompt prefers the profile's extracted system prompt and falls
// back to the template filled from profile fields.
func (s *CoachService) systemPrompt(username string, profile *domain.PersonaProfile) (string, error) {
	if profile.SystemPrompt != "" {
		return profile.SystemPrompt, nil
	}
	tmpl, err := s.prompts.Load(driven.PromptCoachSystem)
	if err != nil {
		return "", fmt.Errorf("asking coach: loading prompt: %w", err)
	}
	return fmt.Sprintf(tmpl,
		username,
		strings.Join(profile.ExpertiseAreas, ", "),
		profile.TeachingStyle,
		strings.Join(profile.SignaturePhrases, "; "),
	), nil
}

// chat replays recent history and sends the new user prompt.
func (s *CoachService) chat(
	ctx context.Context, system string, history []domain.Message, user string,
) (string, error) {
	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: system})

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, msg := range history[start:] {
		messages = append(messages, driven.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: user})

	return s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: 0.7,
	})
}

// ensureSession loads the session or creates one titled after the first
// question.
func (s *CoachService) ensureSession(
	ctx context.Context, creatorID, sessionID, question string,
) (*domain.Session, error) {
	if sessionID != "" {
		session, err := s.convStore.GetSession(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("asking coach: loading session: %w", err)
		}
		if session.CreatorID != creatorID {
			return nil, fmt.Errorf("asking coach: %w: session %s belongs to another creator",
				domain.ErrInvalidInput, sessionID)
		}
		return session, nil
	}

	session := &domain.Session{
		ID:        uuid.New().String(),
		CreatorID: creatorID,
		Title:     sessionTitle(question),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.convStore.SaveSession(ctx, *session); err != nil {
		return nil, fmt.Errorf("asking coach: creating session: %w", err)
	}
	return session, nil
}

// recordExchange appends the question and answer to the session.
func (s *CoachService) recordExchange(
	ctx context.Context, sessionID, question string, answer *domain.Answer, evidence []domain.ScoredChunk,
) error {
	chunkIDs := make([]string, len(evidence))
	for n, sc := range evidence {
		chunkIDs[n] = sc.Chunk.ID
	}

	now := time.Now().UTC()
	userMsg := domain.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   question,
		CreatedAt: now,
	}
	if err := s.convStore.AppendMessage(ctx, userMsg); err != nil {
		return fmt.Errorf("asking coach: recording question: %w", err)
	}

	assistantMsg := domain.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   answer.Text,
		ChunkIDs:  chunkIDs,
		CreatedAt: now,
	}
	if err := s.convStore.AppendMessage(ctx, assistantMsg); err != nil {
		return fmt.Errorf("asking coach: recording answer: %w", err)
	}
	return nil
}

// references resolves the answer's citations to the evidence chunks
// behind them, in citation order.
func (s *CoachService) references(
	ctx context.Context, text string, evidence []domain.ScoredChunk,
) ([]domain.Reference, error) {
	cited := domain.ParseCitations(text)
	if len(cited) == 0 {
		return nil, nil
	}

	bySource := make(map[string]domain.ScoredChunk)
	for _, sc := range evidence {
		for _, src := range sc.Chunk.SourceIDs {
			if _, ok := bySource[src]; !ok {
				bySource[src] = sc
			}
		}
	}

	refs := make([]domain.Reference, 0, len(cited))
	for _, id := range cited {
		sc, ok := bySource[id]
		if !ok {
			continue
		}
		ref := domain.Reference{
			ChunkID:    sc.Chunk.ID,
			ContentIDs: sc.Chunk.SourceIDs,
			TopicTags:  sc.Chunk.TopicTags,
			Score:      sc.Score,
		}
		if item, err := s.corpusStore.GetItem(ctx, id); err == nil {
			ref.Permalink = item.Permalink
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("asking coach: resolving reference %s: %w", id, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// evidenceBlock renders evidence chunks as a citable context block. Each
// chunk is labelled with the source item id the model must cite.
func evidenceBlock(evidence []domain.ScoredChunk) string {
	var b strings.Builder
	for _, sc := range evidence {
		fmt.Fprintf(&b, "[post:%s] %s\n\n", sc.Chunk.SourceIDs[0], sc.Chunk.Text)
	}
	return strings.TrimSpace(b.String())
}

// sessionTitle derives a short session title from the first question.
func sessionTitle(question string) string {
	const maxRunes = 60
	runes := []rune(question)
	if len(runes) <= maxRunes {
		return question
	}
	return string(runes[:maxRunes]) + "…"
}
