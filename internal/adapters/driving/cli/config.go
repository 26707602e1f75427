package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/coach-cli/internal/adapters/driven/ai"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit provider configuration.

Recognised keys:
  embedding.provider             ollama or openai
  embedding.model                embedding model name
  embedding.base_url             API endpoint (local providers)
  embedding.api_key              API key, or env:NAME to read from the environment
  embedding.requests_per_second  client-side throttle (0 disables)
  llm.provider                   ollama, openai or anthropic
  llm.model                      LLM model name
  llm.base_url                   API endpoint (local providers)
  llm.api_key                    API key, or env:NAME
  storage.data_dir               database directory (default ~/.coach/data)
  prompts.dir                    prompt template directory (default ~/.coach/prompts)
  evidence.k_candidates          retrieval candidates per question
  evidence.min_keep              dedup relaxation floor`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate provider connectivity",
	Long:  `Creates the configured embedding and LLM services and pings them.`,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	embedding := embeddingSettings(configStore)
	llmCfg := llmSettings(configStore)

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", orUnset(embedding.Provider.String()))
	cmd.Printf("  Model: %s\n", orUnset(embedding.Model))
	if embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orUnset(embedding.BaseURL))
	}
	if embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", orUnset(llmCfg.Provider.String()))
	cmd.Printf("  Model: %s\n", orUnset(llmCfg.Model))
	if llmCfg.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orUnset(llmCfg.BaseURL))
	}
	if llmCfg.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(llmCfg.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(llmCfg.IsConfigured()))
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	key, value := args[0], args[1]

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	embedding := embeddingSettings(configStore)
	if !embedding.IsConfigured() {
		cmd.Println("Embedding: not configured")
	} else if err := ai.ValidateEmbeddingConfig(embedding); err != nil {
		cmd.Printf("Embedding: FAILED (%v)\n", err)
	} else {
		cmd.Printf("Embedding: ok (%s/%s)\n", embedding.Provider, embedding.Model)
	}

	llmCfg := llmSettings(configStore)
	if !llmCfg.IsConfigured() {
		cmd.Println("LLM: not configured")
	} else if err := ai.ValidateLLMConfig(llmCfg); err != nil {
		cmd.Printf("LLM: FAILED (%v)\n", err)
	} else {
		cmd.Printf("LLM: ok (%s/%s)\n", llmCfg.Provider, llmCfg.Model)
	}
	return nil
}

// maskAPIKey hides all but the last four characters of a key.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
