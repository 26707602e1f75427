package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding provider is
	// unreachable or returned malformed output. Transient; callers decide
	// retry policy.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the text-generation provider is
	// unreachable or returned malformed output. Transient.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVersionMismatch indicates a knowledge base was built with a
	// different embedder version than the querying embedder. Fatal to the
	// search call; the index must be rebuilt, never silently mixed.
	ErrVersionMismatch = errors.New("embedder version mismatch")

	// ErrDimensionMismatch indicates a vector's size does not match the
	// index it is being added to or searched against.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrUngroundedCitation indicates generated text cited a ContentItem
	// outside the supplied evidence set. The answer is rejected, never
	// surfaced to the user.
	ErrUngroundedCitation = errors.New("citation outside evidence set")

	// ErrNoKnowledgeBase indicates no index exists for the creator yet.
	ErrNoKnowledgeBase = errors.New("knowledge base not built")
)
