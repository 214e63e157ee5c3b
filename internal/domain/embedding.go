package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Implementations must be deterministic or be wrapped by a deterministic
// fallback before vectors are cached.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage through the
// embedder chain. Local embedders report zero usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
