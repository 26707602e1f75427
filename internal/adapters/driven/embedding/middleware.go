// Package embedding provides cross-provider middleware for embedding
// services: request throttling and transient-failure retries.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// Ensure Middleware implements the interface.
var _ driven.EmbeddingService = (*Middleware)(nil)

// Middleware wraps an embedding service with a client-side rate limit
// and retries for transient provider failures. Identity methods pass
// through untouched so the wrapped service keeps its version.
type Middleware struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
	retry   domain.RetryPolicy
}

// MiddlewareConfig configures the wrapper.
type MiddlewareConfig struct {
	// RequestsPerSecond throttles outgoing requests. Zero disables
	// throttling.
	RequestsPerSecond float64

	// Burst is the limiter burst size (default 1 when throttled).
	Burst int

	// Retry controls transient-failure retries. The zero value uses
	// domain.DefaultRetryPolicy.
	Retry domain.RetryPolicy
}

// Wrap decorates an embedding service with throttling and retries.
func Wrap(inner driven.EmbeddingService, cfg MiddlewareConfig) *Middleware {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = domain.DefaultRetryPolicy()
	}
	return &Middleware{
		inner:   inner,
		limiter: limiter,
		retry:   retry,
	}
}

// Embed implements driven.EmbeddingService.
func (m *Middleware) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := m.retry.Do(ctx, func() error {
		if err := m.wait(ctx); err != nil {
			return err
		}
		var err error
		out, err = m.inner.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch implements driven.EmbeddingService.
func (m *Middleware) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := m.retry.Do(ctx, func() error {
		if err := m.wait(ctx); err != nil {
			return err
		}
		var err error
		out, err = m.inner.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

// Dimensions implements driven.EmbeddingService.
func (m *Middleware) Dimensions() int { return m.inner.Dimensions() }

// Version implements driven.EmbeddingService.
func (m *Middleware) Version() string { return m.inner.Version() }

// MaxInputTokens implements driven.EmbeddingService.
func (m *Middleware) MaxInputTokens() int { return m.inner.MaxInputTokens() }

// Ping implements driven.EmbeddingService.
func (m *Middleware) Ping(ctx context.Context) error { return m.inner.Ping(ctx) }

// Close implements driven.EmbeddingService.
func (m *Middleware) Close() error { return m.inner.Close() }

// wait blocks until the limiter admits a request.
func (m *Middleware) wait(ctx context.Context) error {
	if m.limiter == nil {
		return nil
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}
