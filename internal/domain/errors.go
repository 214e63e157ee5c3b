package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrNoSourceData signals that no parsed document exists for an entity.
	// This is an expected precondition state, not a failure: callers translate
	// it into an empty result ("upload a profile first").
	ErrNoSourceData = errors.New("no source data")
	// ErrDimensionMismatch signals that vectors of unequal length were compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrUpstreamUnavailable signals an unreachable collaborator store.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
