package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

func newPersonaFixture(t *testing.T) (*PersonaService, *mockCorpusStore, *mockPersonaStore, *mockLLM) {
	t.Helper()
	corpus := newMockCorpusStore()
	store := newMockPersonaStore()
	llm := &mockLLM{}
	svc := NewPersonaService(corpus, store, llm, &mockPromptStore{})

	seedCreator(t, corpus, "creator-1",
		domain.ContentItem{
			ID: "p1", CreatorID: "creator-1",
			Caption:    "Document don't create. Show your work every single day.",
			Engagement: domain.Engagement{Likes: 2000, Rate: 2100},
		},
		domain.ContentItem{
			ID: "p2", CreatorID: "creator-1",
			Caption:    "I grew from 0 to 100k followers in 12 months with one simple system.",
			Engagement: domain.Engagement{Likes: 500, Rate: 540},
		},
	)
	return svc, corpus, store, llm
}

func TestBuildProfile_HappyPath(t *testing.T) {
	svc, _, store, llm := newPersonaFixture(t)
	llm.responses = []string{`{
		"expertise_areas": ["content strategy", "growth"],
		"frameworks": [{"name": "Document System", "description": "Share the process", "proof_ids": ["p1"]}],
		"teaching_style": "direct and practical",
		"signature_phrases": ["Document don't create"],
		"key_results": [{"claim": "0 to 100k in 12 months", "proof_id": "p2"}],
		"system_prompt": "You are a direct, practical creator coach."
	}`}

	profile, err := svc.BuildProfile(context.Background(), "creator-1")

	require.NoError(t, err)
	assert.Equal(t, 1, profile.Version)
	assert.Equal(t, []string{"content strategy", "growth"}, profile.ExpertiseAreas)
	require.Len(t, profile.Frameworks, 1)
	assert.Equal(t, []string{"p1"}, profile.Frameworks[0].ProofIDs)
	assert.Equal(t, []string{"Document don't create"}, profile.SignaturePhrases)
	require.Len(t, profile.KeyResults, 1)

	stored, err := store.GetProfile(context.Background(), "creator-1")
	require.NoError(t, err)
	assert.Equal(t, profile.Version, stored.Version)
}

func TestBuildProfile_DropsUntraceableEntries(t *testing.T) {
	svc, _, _, llm := newPersonaFixture(t)
	llm.responses = []string{`{
		"expertise_areas": ["growth"],
		"frameworks": [
			{"name": "Real", "description": "ok", "proof_ids": ["p1"]},
			{"name": "Invented", "description": "no such post", "proof_ids": ["p999"]},
			{"name": "Proofless", "description": "nothing backs this", "proof_ids": []}
		],
		"teaching_style": "direct",
		"signature_phrases": ["Document don't create", "a phrase I never actually said"],
		"key_results": [
			{"claim": "real result", "proof_id": "p2"},
			{"claim": "invented result", "proof_id": "p404"}
		],
		"system_prompt": ""
	}`}

	profile, err := svc.BuildProfile(context.Background(), "creator-1")

	require.NoError(t, err)
	require.Len(t, profile.Frameworks, 1)
	assert.Equal(t, "Real", profile.Frameworks[0].Name)
	assert.Equal(t, []string{"Document don't create"}, profile.SignaturePhrases)
	require.Len(t, profile.KeyResults, 1)
	assert.Equal(t, "real result", profile.KeyResults[0].Claim)
}

func TestBuildProfile_VersionIncrements(t *testing.T) {
	svc, _, _, llm := newPersonaFixture(t)
	llm.responses = []string{`{"expertise_areas": ["growth"], "teaching_style": "direct"}`}
	ctx := context.Background()

	first, err := svc.BuildProfile(ctx, "creator-1")
	require.NoError(t, err)
	second, err := svc.BuildProfile(ctx, "creator-1")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)
}

func TestBuildProfile_ToleratesFencedJSON(t *testing.T) {
	svc, _, _, llm := newPersonaFixture(t)
	llm.responses = []string{"Here is the profile:\n```json\n" +
		`{"expertise_areas": ["growth"], "teaching_style": "direct"}` + "\n```"}

	profile, err := svc.BuildProfile(context.Background(), "creator-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"growth"}, profile.ExpertiseAreas)
}

func TestBuildProfile_MalformedJSON(t *testing.T) {
	svc, _, _, llm := newPersonaFixture(t)
	llm.responses = []string{"I cannot produce JSON today."}

	_, err := svc.BuildProfile(context.Background(), "creator-1")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestBuildProfile_EmptyCorpus(t *testing.T) {
	corpus := newMockCorpusStore()
	svc := NewPersonaService(corpus, newMockPersonaStore(), &mockLLM{}, &mockPromptStore{})
	seedCreator(t, corpus, "creator-1")

	_, err := svc.BuildProfile(context.Background(), "creator-1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildProfile_UnknownCreator(t *testing.T) {
	svc := NewPersonaService(newMockCorpusStore(), newMockPersonaStore(), &mockLLM{}, &mockPromptStore{})

	_, err := svc.BuildProfile(context.Background(), "nobody")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _, _, _ := newPersonaFixture(t)

	_, err := svc.GetProfile(context.Background(), "creator-1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
