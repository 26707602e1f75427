package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// fakeEmbedder fails a configurable number of times before succeeding.
type fakeEmbedder struct {
	calls    int
	failures int
	failWith error
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.failWith
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for n := range texts {
		vec, err := f.Embed(ctx, texts[n])
		if err != nil {
			return nil, err
		}
		out[n] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 3 }
func (f *fakeEmbedder) Version() string              { return "fake/v1" }
func (f *fakeEmbedder) MaxInputTokens() int          { return 100 }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

func fastRetry(attempts int) domain.RetryPolicy {
	return domain.RetryPolicy{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Multiplier:     1.0,
		Retryable:      domain.IsTransient,
	}
}

func TestMiddleware_RetriesTransientFailures(t *testing.T) {
	inner := &fakeEmbedder{
		failures: 2,
		failWith: fmt.Errorf("provider 503: %w", domain.ErrEmbeddingUnavailable),
	}
	svc := Wrap(inner, MiddlewareConfig{Retry: fastRetry(3)})

	vec, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vec)
	assert.Equal(t, 3, inner.calls)
}

func TestMiddleware_StopsOnNonRetryableError(t *testing.T) {
	authErr := errors.New("401 invalid api key")
	inner := &fakeEmbedder{failures: 10, failWith: authErr}
	svc := Wrap(inner, MiddlewareConfig{Retry: fastRetry(3)})

	_, err := svc.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, inner.calls, "permanent errors must not be retried")
}

func TestMiddleware_ExhaustsAttempts(t *testing.T) {
	inner := &fakeEmbedder{
		failures: 10,
		failWith: fmt.Errorf("timeout: %w", domain.ErrEmbeddingUnavailable),
	}
	svc := Wrap(inner, MiddlewareConfig{Retry: fastRetry(3)})

	_, err := svc.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 3, inner.calls)
}

func TestMiddleware_EmbedBatchRetries(t *testing.T) {
	inner := &fakeEmbedder{
		failures: 1,
		failWith: fmt.Errorf("provider 429: %w", domain.ErrEmbeddingUnavailable),
	}
	svc := Wrap(inner, MiddlewareConfig{Retry: fastRetry(2)})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}

func TestMiddleware_ContextCancelDuringBackoff(t *testing.T) {
	inner := &fakeEmbedder{
		failures: 10,
		failWith: fmt.Errorf("timeout: %w", domain.ErrEmbeddingUnavailable),
	}
	retry := fastRetry(5)
	retry.InitialBackoff = time.Second
	svc := Wrap(inner, MiddlewareConfig{Retry: retry})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Embed(ctx, "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls)
}

func TestMiddleware_PassesThroughIdentity(t *testing.T) {
	inner := &fakeEmbedder{}
	svc := Wrap(inner, MiddlewareConfig{})

	assert.Equal(t, 3, svc.Dimensions())
	assert.Equal(t, "fake/v1", svc.Version())
	assert.Equal(t, 100, svc.MaxInputTokens())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestMiddleware_ThrottleAdmitsRequests(t *testing.T) {
	inner := &fakeEmbedder{}
	svc := Wrap(inner, MiddlewareConfig{RequestsPerSecond: 1000, Burst: 2})

	for i := 0; i < 3; i++ {
		_, err := svc.Embed(context.Background(), "hello")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)
}
