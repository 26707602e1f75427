package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// --- corpus store ---

type mockCorpusStore struct {
	mu       sync.Mutex
	creators map[string]domain.Creator
	items    map[string]domain.ContentItem
	order    []string
	chunkN   int

	saveItemsErr error
}

var _ driven.CorpusStore = (*mockCorpusStore)(nil)

func newMockCorpusStore() *mockCorpusStore {
	return &mockCorpusStore{
		creators: make(map[string]domain.Creator),
		items:    make(map[string]domain.ContentItem),
	}
}

func (m *mockCorpusStore) SaveCreator(_ context.Context, creator domain.Creator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creators[creator.ID] = creator
	return nil
}

func (m *mockCorpusStore) GetCreator(_ context.Context, id string) (*domain.Creator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creators[id]
	if !ok {
		return nil, fmt.Errorf("creator %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (m *mockCorpusStore) GetCreatorByUsername(_ context.Context, username string) (*domain.Creator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.creators {
		if c.Username == username {
			cc := c
			return &cc, nil
		}
	}
	return nil, fmt.Errorf("creator %s: %w", username, domain.ErrNotFound)
}

func (m *mockCorpusStore) ListCreators(_ context.Context) ([]domain.Creator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Creator, 0, len(m.creators))
	for _, c := range m.creators {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCorpusStore) SaveItems(_ context.Context, items []domain.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveItemsErr != nil {
		return m.saveItemsErr
	}
	for _, item := range items {
		if _, ok := m.items[item.ID]; ok {
			continue
		}
		m.items[item.ID] = item
		m.order = append(m.order, item.ID)
	}
	return nil
}

func (m *mockCorpusStore) GetItem(_ context.Context, id string) (*domain.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return &item, nil
}

func (m *mockCorpusStore) ListItems(_ context.Context, creatorID string) ([]domain.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ContentItem
	for _, id := range m.order {
		if m.items[id].CreatorID == creatorID {
			out = append(out, m.items[id])
		}
	}
	return out, nil
}

func (m *mockCorpusStore) Stats(_ context.Context, creatorID string) (domain.CorpusStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats domain.CorpusStats
	for _, item := range m.items {
		if item.CreatorID != creatorID {
			continue
		}
		stats.TotalItems++
		if item.MediaType == domain.MediaTypeVideo || item.MediaType == domain.MediaTypeReel {
			stats.VideoItems++
		}
		if item.HasTranscript() {
			stats.TranscribedItems++
		}
	}
	stats.ChunkCount = m.chunkN
	return stats, nil
}

// --- chunk store ---

type mockChunkStore struct {
	mu     sync.Mutex
	chunks map[string]domain.Chunk
}

var _ driven.ChunkStore = (*mockChunkStore)(nil)

func newMockChunkStore() *mockChunkStore {
	return &mockChunkStore{chunks: make(map[string]domain.Chunk)}
}

func (m *mockChunkStore) ReplaceChunks(_ context.Context, creatorID string, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.chunks {
		if c.CreatorID == creatorID {
			delete(m.chunks, id)
		}
	}
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *mockChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chunks[id]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (m *mockChunkStore) ListChunks(_ context.Context, creatorID string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Chunk
	for _, c := range m.chunks {
		if c.CreatorID == creatorID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockChunkStore) DeleteChunks(_ context.Context, creatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.chunks {
		if c.CreatorID == creatorID {
			delete(m.chunks, id)
		}
	}
	return nil
}

// --- index store ---

type mockIndexStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

var _ driven.IndexStore = (*mockIndexStore)(nil)

func newMockIndexStore() *mockIndexStore {
	return &mockIndexStore{blobs: make(map[string][]byte)}
}

func (m *mockIndexStore) Put(_ context.Context, creatorID string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[creatorID] = blob
	return nil
}

func (m *mockIndexStore) Get(_ context.Context, creatorID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[creatorID]
	if !ok {
		return nil, fmt.Errorf("index for %s: %w", creatorID, domain.ErrNotFound)
	}
	return blob, nil
}

func (m *mockIndexStore) Delete(_ context.Context, creatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, creatorID)
	return nil
}

// --- persona store ---

type mockPersonaStore struct {
	mu       sync.Mutex
	profiles map[string][]domain.PersonaProfile
}

var _ driven.PersonaStore = (*mockPersonaStore)(nil)

func newMockPersonaStore() *mockPersonaStore {
	return &mockPersonaStore{profiles: make(map[string][]domain.PersonaProfile)}
}

func (m *mockPersonaStore) SaveProfile(_ context.Context, profile *domain.PersonaProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.CreatorID] = append(m.profiles[profile.CreatorID], *profile)
	return nil
}

func (m *mockPersonaStore) GetProfile(_ context.Context, creatorID string) (*domain.PersonaProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.profiles[creatorID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("profile for %s: %w", creatorID, domain.ErrNotFound)
	}
	latest := versions[len(versions)-1]
	return &latest, nil
}

func (m *mockPersonaStore) GetProfileVersion(_ context.Context, creatorID string, version int) (*domain.PersonaProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles[creatorID] {
		if p.Version == version {
			pp := p
			return &pp, nil
		}
	}
	return nil, fmt.Errorf("profile v%d for %s: %w", version, creatorID, domain.ErrNotFound)
}

// --- conversation store ---

type mockConversationStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	messages map[string][]domain.Message
}

var _ driven.ConversationStore = (*mockConversationStore)(nil)

func newMockConversationStore() *mockConversationStore {
	return &mockConversationStore{
		sessions: make(map[string]domain.Session),
		messages: make(map[string][]domain.Message),
	}
}

func (m *mockConversationStore) SaveSession(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *mockConversationStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return &s, nil
}

func (m *mockConversationStore) ListSessions(_ context.Context, creatorID string) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Session
	for _, s := range m.sessions {
		if s.CreatorID == creatorID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockConversationStore) AppendMessage(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], msg)
	return nil
}

func (m *mockConversationStore) ListMessages(_ context.Context, sessionID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.messages[sessionID]...), nil
}

// --- embedding service ---

// mockEmbedder produces deterministic 3-dimensional vectors derived from
// the text so similar calls reproduce identical embeddings.
type mockEmbedder struct {
	version string
	err     error
	calls   int
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{version: "mock/embedder-v1"}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls++
	return textVector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls++
	out := make([][]float32, len(texts))
	for n, t := range texts {
		out[n] = textVector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int        { return 3 }
func (m *mockEmbedder) Version() string        { return m.version }
func (m *mockEmbedder) MaxInputTokens() int    { return 8192 }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error           { return nil }

func textVector(text string) []float32 {
	var a, b, c float64
	for i, r := range text {
		switch i % 3 {
		case 0:
			a += float64(r)
		case 1:
			b += float64(r)
		case 2:
			c += float64(r)
		}
	}
	norm := math.Sqrt(a*a + b*b + c*c)
	if norm == 0 {
		norm = 1
		a = 1
	}
	return []float32{float32(a / norm), float32(b / norm), float32(c / norm)}
}

// --- vector index + factory ---

type mockIndex struct {
	mu      sync.RWMutex
	version string
	dims    int
	entries []domain.VectorEntry
}

var _ driven.VectorIndex = (*mockIndex)(nil)

func (m *mockIndex) Add(_ context.Context, entries []domain.VectorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != m.dims {
			return domain.ErrDimensionMismatch
		}
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockIndex) Remove(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !drop[e.ChunkID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *mockIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(query) != m.dims {
		return nil, domain.ErrDimensionMismatch
	}
	hits := make([]driven.VectorHit, 0, len(m.entries))
	for _, e := range m.entries {
		var dot float64
		for i := range query {
			dot += float64(query[i]) * float64(e.Vector[i])
		}
		hits = append(hits, driven.VectorHit{ChunkID: e.ChunkID, Score: dot})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *mockIndex) Dimensions() int { return m.dims }
func (m *mockIndex) Version() string { return m.version }

// mockIndexBlob is the mock serialization format: JSON carrying the
// version tag plus every entry, so Restore rebuilds a searchable index.
type mockIndexBlob struct {
	Version string
	Dims    int
	Entries []domain.VectorEntry
}

func (m *mockIndex) Serialize() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return json.Marshal(mockIndexBlob{Version: m.version, Dims: m.dims, Entries: m.entries})
}

func (m *mockIndex) Close() error { return nil }

type mockIndexFactory struct {
	mu       sync.Mutex
	created  []*mockIndex
	restored int
}

var _ driven.VectorIndexFactory = (*mockIndexFactory)(nil)

func (f *mockIndexFactory) New(version string, dims int) (driven.VectorIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := &mockIndex{version: version, dims: dims}
	f.created = append(f.created, idx)
	return idx, nil
}

func (f *mockIndexFactory) Restore(data []byte) (driven.VectorIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restored++
	var blob mockIndexBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("restoring index: %w", err)
	}
	return &mockIndex{version: blob.Version, dims: blob.Dims, entries: blob.Entries}, nil
}

// --- llm service ---

// mockLLM replays scripted responses in order, repeating the last one
// when the script runs out.
type mockLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []string // prompts/last user messages received
}

var _ driven.LLMService = (*mockLLM)(nil)

func (m *mockLLM) next() string {
	if len(m.responses) == 0 {
		return ""
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.calls = append(m.calls, prompt)
	return m.next(), nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if len(messages) > 0 {
		m.calls = append(m.calls, messages[len(messages)-1].Content)
	}
	return m.next(), nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// --- prompt store ---

type mockPromptStore struct{}

var _ driven.PromptStore = (*mockPromptStore)(nil)

func (m *mockPromptStore) Load(name string) (string, error) {
	switch name {
	case driven.PromptCoachSystem:
		return "You are %s. Expertise: %s. Style: %s. Phrases: %s.", nil
	case driven.PromptCoachAnswer:
		return "Question: %s\nEvidence:\n%s\nAnswer as %s.", nil
	case driven.PromptStrictGrounding:
		return "Cite only the provided posts.", nil
	case driven.PromptProfileFallback:
		return "Question: %s\nAnswer from your own experience as %s.", nil
	case driven.PromptPersonaExtract:
		return "Extract a profile from:\n%s", nil
	default:
		return "", fmt.Errorf("prompt %s: %w", name, domain.ErrNotFound)
	}
}

func (m *mockPromptStore) Reload() {}
