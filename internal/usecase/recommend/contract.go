package recommend

import (
	"context"

	"github.com/satvik-shyam/placematch/internal/domain"
)

// EmbeddingCache resolves entity vectors with change-aware caching.
type EmbeddingCache interface {
	GetOrCompute(
		ctx context.Context, kind domain.EntityKind, id int64,
		source func(context.Context) (string, error), force bool,
	) ([]float32, error)
}

// DocumentReader reads parsed documents for skill and experience data.
type DocumentReader interface {
	GetProfile(ctx context.Context, candidateID int64) (domain.ParsedProfile, error)
	GetJob(ctx context.Context, jobID int64) (domain.ParsedJob, error)
}

// JobLister enumerates currently open jobs.
type JobLister interface {
	ListOpen(ctx context.Context) ([]domain.JobPosting, error)
}

// RecommendationStore persists and mutates recommendation rows.
type RecommendationStore interface {
	Upsert(ctx context.Context, rec domain.Recommendation) error
	ListByCandidate(ctx context.Context, candidateID int64, includeApplied bool) ([]domain.Recommendation, error)
	MarkViewed(ctx context.Context, candidateID, jobID int64) (bool, error)
	MarkApplied(ctx context.Context, candidateID, jobID int64) (bool, error)
}
