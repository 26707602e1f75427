// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/coach-cli/internal/adapters/driven/ai"
	"github.com/arclight-labs/coach-cli/internal/adapters/driven/config/file"
	"github.com/arclight-labs/coach-cli/internal/adapters/driven/storage/sqlite"
	"github.com/arclight-labs/coach-cli/internal/adapters/driven/vector/flat"
	"github.com/arclight-labs/coach-cli/internal/chunker"
	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driving"
	"github.com/arclight-labs/coach-cli/internal/core/services"
	"github.com/arclight-labs/coach-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose enables debug logging.
var verbose bool

// Services wired by initServices. Commands nil-check the ones they need
// so that partially-configured installs still run what they can.
var (
	configStore      driven.ConfigStore
	store            *sqlite.Store
	promptStore      *file.PromptStore
	embedder         driven.EmbeddingService
	llm              driven.LLMService
	corpusService    driving.CorpusService
	knowledgeService driving.KnowledgeService
	personaService   driving.PersonaService
	coachService     driving.CoachService
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Creator coaching from scraped content",
	Long: `coach turns a creator's scraped posts into a grounded coaching chat.

Ingest a creator's content, build their knowledge base, then ask
questions answered in the creator's voice with citations back to the
posts the answer came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute wires the services and runs the root command.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	if err := initServices(rootCmd); err != nil {
		return err
	}
	defer shutdownServices()
	return rootCmd.Execute()
}

// initServices wires adapters into core services.
// Tests inject their own services; a second call is a no-op.
func initServices(cmd *cobra.Command) error {
	if corpusService != nil {
		return nil
	}

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	store, err = sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	prompts, err := file.NewPromptStore(cfg.GetString("prompts.dir"))
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}
	if err := prompts.Watch(); err != nil {
		logger.Warn("prompt hot-reload disabled: %v", err)
	}
	promptStore = prompts

	// AI services are optional: ingest and stats work without them.
	embedder, err = ai.CreateEmbeddingService(embeddingSettings(cfg))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: embedding provider unavailable: %v\n", err)
	}
	llm, err = ai.CreateLLMService(llmSettings(cfg))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: LLM provider unavailable: %v\n", err)
	}

	corpusService = services.NewCorpusService(store.CorpusStore())

	if embedder != nil {
		knowledgeService = services.NewKnowledgeService(
			store.CorpusStore(),
			store.ChunkStore(),
			store.IndexStore(),
			embedder,
			flat.NewFactory(),
			chunker.New(chunker.WithTagger(chunker.DefaultKeywordTagger())),
		)
	}

	if llm != nil {
		personaService = services.NewPersonaService(
			store.CorpusStore(),
			store.PersonaStore(),
			llm,
			prompts,
		)
	}

	if knowledgeService != nil && llm != nil {
		coachService = services.NewCoachService(
			knowledgeService,
			store.CorpusStore(),
			store.PersonaStore(),
			store.ConversationStore(),
			llm,
			prompts,
			evidenceOptions(cfg),
		)
	}

	return nil
}

// shutdownServices releases adapter resources.
func shutdownServices() {
	if promptStore != nil {
		promptStore.Close()
	}
	if embedder != nil {
		embedder.Close()
	}
	if llm != nil {
		llm.Close()
	}
	if store != nil {
		store.Close()
	}
}

// embeddingSettings reads embedding provider config.
func embeddingSettings(cfg driven.ConfigStore) *domain.EmbeddingSettings {
	rps := 0.0
	if v := cfg.GetInt("embedding.requests_per_second"); v > 0 {
		rps = float64(v)
	}
	return &domain.EmbeddingSettings{
		Provider:          domain.AIProvider(cfg.GetString("embedding.provider")),
		Model:             cfg.GetString("embedding.model"),
		BaseURL:           cfg.GetString("embedding.base_url"),
		APIKey:            resolveAPIKey(cfg.GetString("embedding.api_key")),
		RequestsPerSecond: rps,
	}
}

// llmSettings reads LLM provider config.
func llmSettings(cfg driven.ConfigStore) *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider: domain.AIProvider(cfg.GetString("llm.provider")),
		Model:    cfg.GetString("llm.model"),
		BaseURL:  cfg.GetString("llm.base_url"),
		APIKey:   resolveAPIKey(cfg.GetString("llm.api_key")),
	}
}

// evidenceOptions reads retrieval tuning, falling back to defaults.
func evidenceOptions(cfg driven.ConfigStore) domain.EvidenceOptions {
	opts := domain.DefaultEvidenceOptions()
	if k := cfg.GetInt("evidence.k_candidates"); k > 0 {
		opts.KCandidates = k
	}
	if m := cfg.GetInt("evidence.min_keep"); m > 0 {
		opts.MinKeep = m
	}
	return opts
}

// resolveAPIKey expands "env:NAME" values from the environment so
// secrets can stay out of the config file.
func resolveAPIKey(value string) string {
	const envPrefix = "env:"
	if len(value) > len(envPrefix) && value[:len(envPrefix)] == envPrefix {
		return os.Getenv(value[len(envPrefix):])
	}
	return value
}
