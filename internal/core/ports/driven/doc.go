// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CorpusStore: Creator and ContentItem persistence
//   - ChunkStore: Knowledge chunk persistence
//   - PersonaStore: Versioned persona profile persistence
//   - ConversationStore: Session and message persistence
//   - IndexStore: Serialized vector index persistence per creator
//   - VectorIndexFactory: Creates and restores vector indexes
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Text generation. Without it, answer synthesis and
//     persona extraction are disabled; retrieval still works.
//   - PromptStore: Customisable prompt templates. Without it, services
//     fall back to embedded defaults.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
