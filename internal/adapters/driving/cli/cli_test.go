package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/coach-cli/internal/adapters/driven/storage/memory"
	"github.com/arclight-labs/coach-cli/internal/core/services"
)

// setupTestServices wires memory-backed services so commands run without
// touching the filesystem or network. Returns a cleanup func.
func setupTestServices() func() {
	configStore = memory.NewConfigStore()
	corpusService = services.NewCorpusService(memory.NewCorpusStore())
	return func() {
		configStore = nil
		corpusService = nil
		knowledgeService = nil
		personaService = nil
		coachService = nil
	}
}

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIngestCmd_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "ingest", "creator-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestIngestCmd_LoadsItems(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	payload := []map[string]any{
		{"id": "post-1", "media_type": "image", "caption": "hello world", "likes": 10},
		{"id": "post-2", "media_type": "reel", "transcript": "spoken words", "duration_seconds": 30},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, data, 0600))

	out, err := execute(t, "ingest", "creator-1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 2 of 2 items for creator-1")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ingest", "creator-1", "/nonexistent/items.json")
	assert.Error(t, err)
}

func TestIngestCmd_NoService(t *testing.T) {
	_, err := execute(t, "ingest", "creator-1", "whatever.json")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestCoachesCmd_EmptyCorpus(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "coaches")
	require.NoError(t, err)
	assert.Contains(t, out, "No creators yet")
}

func TestCoachesCmd_ListsAfterIngest(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	payload := []map[string]any{
		{"id": "post-1", "media_type": "video", "transcript": "tips", "caption": "c"},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, data, 0600))

	_, err = execute(t, "ingest", "fitcoach", path)
	require.NoError(t, err)

	out, err := execute(t, "coaches")
	require.NoError(t, err)
	assert.Contains(t, out, "fitcoach")
	assert.Contains(t, out, "1 items")
}

func TestSearchCmd_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "search", "creator-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSearchCmd_NoService(t *testing.T) {
	_, err := execute(t, "search", "creator-1", "query")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestAskCmd_NoService(t *testing.T) {
	_, err := execute(t, "ask", "creator-1", "how do I grow?")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestBuildCmd_NoService(t *testing.T) {
	_, err := execute(t, "build", "creator-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestPersonaCmd_NoService(t *testing.T) {
	_, err := execute(t, "persona", "creator-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestConfigCmd_ShowAndSet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config", "set", "embedding.provider", "ollama")
	require.NoError(t, err)
	assert.Contains(t, out, "Set embedding.provider")

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "ollama")
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[LLM]")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "(not set)", maskAPIKey(""))
	assert.Equal(t, "****", maskAPIKey("abc"))
	assert.Equal(t, "****6789", maskAPIKey("sk-123456789"))
}

func TestResolveAPIKey_EnvIndirection(t *testing.T) {
	t.Setenv("COACH_TEST_KEY", "secret-value")
	assert.Equal(t, "secret-value", resolveAPIKey("env:COACH_TEST_KEY"))
	assert.Equal(t, "literal", resolveAPIKey("literal"))
}
