// Package projector provides a deterministic, hash-derived pseudo-embedding.
// It stands in for a trained embedding model behind the domain.Embedder
// contract: identical text always yields an identical vector, and overlapping
// token sets yield vectors with high cosine similarity.
package projector

import (
	"context"
	"crypto/sha256"
	"math"
	"strings"

	"github.com/satvik-shyam/placematch/internal/domain"
)

// DefaultDimensions is the contract vector dimension.
const DefaultDimensions = 256

// Projector deterministically projects feature text into a fixed-dimension,
// L2-normalized vector.
type Projector struct {
	dimensions int
}

// New creates a projector. Non-positive dimensions fall back to the default.
func New(dimensions int) *Projector {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Projector{dimensions: dimensions}
}

// Dimensions returns the fixed output dimension.
func (p *Projector) Dimensions() int { return p.dimensions }

// Embed implements domain.Embedder. Each whitespace token is hashed with
// SHA-256 and its digest bytes are scatter-added as signed contributions at
// indices derived from the token position; the result is L2-normalized
// (a zero vector stays zero). No tokens are consumed: usage is always zero.
func (p *Projector) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	acc := make([]float64, p.dimensions)
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))

	for i, word := range words {
		digest := sha256.Sum256([]byte(word))
		spread := p.dimensions
		if spread > len(digest) {
			spread = len(digest)
		}
		for j := 0; j < spread; j++ {
			idx := (i*len(digest) + j) % p.dimensions
			acc[idx] += (float64(digest[j%len(digest)]) - 128) / 128.0
		}
	}

	var sumSquares float64
	for _, v := range acc {
		sumSquares += v * v
	}
	magnitude := math.Sqrt(sumSquares)

	vec := make([]float32, p.dimensions)
	for i, v := range acc {
		if magnitude > 0 {
			v /= magnitude
		}
		vec[i] = float32(v)
	}

	return domain.EmbeddingResult{Embedding: vec}, nil
}
