// Package embedding composes the embedder chain used by the matching engine.
package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satvik-shyam/placematch/internal/domain"
	"github.com/satvik-shyam/placematch/internal/metrics"
)

// FallbackEmbedder tries a primary embedder and degrades to a deterministic
// fallback when it fails. Every fallback is logged with its cause; a primary
// outage must never fail matching outright.
type FallbackEmbedder struct {
	primary  domain.Embedder
	fallback domain.Embedder
	logger   *zap.Logger
}

// NewFallbackEmbedder creates the decorator. primary may be nil, in which
// case only the fallback is used.
func NewFallbackEmbedder(primary, fallback domain.Embedder, logger *zap.Logger) *FallbackEmbedder {
	return &FallbackEmbedder{primary: primary, fallback: fallback, logger: logger}
}

// Embed implements domain.Embedder.
func (e *FallbackEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if e.primary != nil {
		result, err := e.primary.Embed(ctx, text)
		if err == nil {
			return result, nil
		}
		metrics.EmbeddingFallbacksTotal.Inc()
		e.logger.Warn("Primary embedder failed, using deterministic fallback", zap.Error(err))
	}

	result, err := e.fallback.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("fallback embed: %w", err)
	}
	return result, nil
}
