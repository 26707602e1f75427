package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptCoachSystem is the system prompt template for answer synthesis.
	// Expects %s placeholders for username, expertise areas, teaching style
	// and signature phrases.
	PromptCoachSystem = "coach_system"

	// PromptCoachAnswer is the user prompt template for answer synthesis.
	// Expects %s placeholders for the question, the evidence context and
	// the username.
	PromptCoachAnswer = "coach_answer"

	// PromptStrictGrounding is appended on the single retry after an
	// ungrounded citation. No format placeholders.
	PromptStrictGrounding = "strict_grounding"

	// PromptProfileFallback is the user prompt template for profile-only
	// answers when no evidence clears the relevance floor.
	// Expects %s placeholders for the question and the username.
	PromptProfileFallback = "profile_fallback"

	// PromptPersonaExtract is the prompt template for persona extraction.
	// Expects a %s placeholder for the corpus digest.
	PromptPersonaExtract = "persona_extract"
)
