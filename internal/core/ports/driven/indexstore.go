package driven

import "context"

// IndexStore persists serialized vector indexes keyed by creator id.
// The core requires only get/put/delete semantics per key, not a
// specific storage engine.
type IndexStore interface {
	// Put stores the serialized index for a creator, replacing any
	// previous blob.
	Put(ctx context.Context, creatorID string, blob []byte) error

	// Get retrieves the serialized index for a creator.
	// Returns domain.ErrNotFound when no index has been persisted.
	Get(ctx context.Context, creatorID string) ([]byte, error)

	// Delete removes the serialized index for a creator.
	Delete(ctx context.Context, creatorID string) error
}
