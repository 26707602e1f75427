package flat

import (
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// Factory creates flat indexes.
type Factory struct{}

var _ driven.VectorIndexFactory = (*Factory)(nil)

// NewFactory creates a factory for flat cosine indexes.
func NewFactory() *Factory {
	return &Factory{}
}

// New implements driven.VectorIndexFactory.
func (f *Factory) New(version string, dimensions int) (driven.VectorIndex, error) {
	return newIndex(version, dimensions)
}

// Restore implements driven.VectorIndexFactory.
func (f *Factory) Restore(blob []byte) (driven.VectorIndex, error) {
	return restore(blob)
}
