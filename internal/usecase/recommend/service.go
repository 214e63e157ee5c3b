// Package recommend is the recommendation engine: it resolves vectors through
// the embedding cache, scores every open job against one candidate, ranks the
// results and owns the stored recommendation lifecycle.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/satvik-shyam/placematch/internal/domain"
	"github.com/satvik-shyam/placematch/internal/domain/feature"
	"github.com/satvik-shyam/placematch/internal/domain/scoring"
	"github.com/satvik-shyam/placematch/internal/metrics"
)

// Contract defaults.
const (
	DefaultTopN     = 10
	DefaultMinScore = 0.3
	DefaultTTL      = 7 * 24 * time.Hour

	// Sub-scores applied when a job has no parsed description: neutral skill
	// match, experience assumed fine. Missing parsing must not exclude a job
	// that still has a vector.
	unparsedJobSkillPct = 50.0
)

// Service generates, stores and serves job recommendations.
type Service struct {
	cache  EmbeddingCache
	docs   DocumentReader
	jobs   JobLister
	recs   RecommendationStore
	params scoring.Params
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// New creates a recommendation service. A non-positive ttl falls back to the
// 7-day contract default.
func New(
	cache EmbeddingCache,
	docs DocumentReader,
	jobs JobLister,
	recs RecommendationStore,
	params scoring.Params,
	ttl time.Duration,
	logger *zap.Logger,
) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		cache:  cache,
		docs:   docs,
		jobs:   jobs,
		recs:   recs,
		params: params,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Generate scores every open job against the candidate and returns the top-N
// ranked list. A candidate without a parsed profile yields an empty list, not
// an error: uploading a profile is the caller's precondition. force bypasses
// the embedding cache for both the candidate and every job.
func (s *Service) Generate(
	ctx context.Context, candidateID int64, topN int, minScore float64, force bool,
) ([]domain.ScoredJob, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	start := time.Now()
	defer func() {
		metrics.GenerateDuration.Observe(time.Since(start).Seconds())
	}()

	candidateVec, err := s.cache.GetOrCompute(ctx, domain.KindCandidate, candidateID,
		s.profileSource(candidateID), force)
	if err != nil {
		if errors.Is(err, domain.ErrNoSourceData) {
			s.logger.Debug("No parsed profile, skipping recommendation generation",
				zap.Int64("candidate_id", candidateID))
			return nil, nil
		}
		return nil, fmt.Errorf("resolve candidate vector: %w", err)
	}

	profile, err := s.docs.GetProfile(ctx, candidateID)
	if err != nil {
		if errors.Is(err, domain.ErrNoSourceData) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parsed profile %d: %w", candidateID, err)
	}

	openJobs, err := s.jobs.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}

	scored := make([]domain.ScoredJob, 0, len(openJobs))
	for _, job := range openJobs {
		entry, ok, err := s.scoreJob(ctx, candidateVec, profile, job, minScore, force)
		if err != nil {
			return nil, err
		}
		if ok {
			scored = append(scored, entry)
		}
	}

	// Stable: equal scores keep job enumeration order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}

	metrics.RecommendationsGeneratedTotal.Add(float64(len(scored)))
	s.logger.Debug("Generated recommendations",
		zap.Int64("candidate_id", candidateID),
		zap.Int("open_jobs", len(openJobs)),
		zap.Int("kept", len(scored)),
	)

	return scored, nil
}

// scoreJob computes one candidate/job score. ok is false when the job is
// skipped (no parsed document for a vector) or filtered by minScore.
func (s *Service) scoreJob(
	ctx context.Context,
	candidateVec []float32,
	profile domain.ParsedProfile,
	job domain.JobPosting,
	minScore float64,
	force bool,
) (domain.ScoredJob, bool, error) {
	jobVec, err := s.cache.GetOrCompute(ctx, domain.KindJob, job.ID, s.jobSource(job.ID), force)
	if err != nil {
		if errors.Is(err, domain.ErrNoSourceData) {
			return domain.ScoredJob{}, false, nil
		}
		return domain.ScoredJob{}, false, fmt.Errorf("resolve vector for job %d: %w", job.ID, err)
	}

	similarity, err := scoring.CosineSimilarity(candidateVec, jobVec)
	if err != nil {
		// Dimension mismatch means the embedding scheme changed under the
		// cache; fail fast instead of truncating.
		return domain.ScoredJob{}, false, fmt.Errorf("score job %d: %w", job.ID, err)
	}

	skillPct := unparsedJobSkillPct
	experienceOK := true
	parsed, err := s.docs.GetJob(ctx, job.ID)
	switch {
	case err == nil:
		skillPct = scoring.SkillMatchPercentage(profile.Skills, parsed.RequiredSkills)
		experienceOK = s.params.ExperienceMatch(profile.ExperienceYears, job.MinExperience, job.MaxExperience)
	case !errors.Is(err, domain.ErrNoSourceData):
		return domain.ScoredJob{}, false, fmt.Errorf("get parsed job %d: %w", job.ID, err)
	}

	combined := s.params.CombinedScore(similarity, skillPct, experienceOK)
	if combined < minScore {
		return domain.ScoredJob{}, false, nil
	}

	return domain.ScoredJob{
		JobID:               job.ID,
		Title:               job.Title,
		MatchScore:          round4(combined),
		SkillMatchPct:       round2(skillPct),
		ExperienceMatch:     experienceOK,
		EmbeddingSimilarity: round4((similarity + 1) / 2),
	}, true, nil
}

// Store upserts one recommendation row per scored job with a fresh reason and
// expiry, preserving viewed/applied flags on existing rows. Each upsert is
// independent: a failure mid-batch leaves earlier rows intact and Generate +
// Store can simply be re-run. Returns the number of rows written.
func (s *Service) Store(ctx context.Context, candidateID int64, scored []domain.ScoredJob) (int, error) {
	if len(scored) == 0 {
		return 0, nil
	}

	expiresAt := s.now().Add(s.ttl)

	count := 0
	for _, sj := range scored {
		rec := domain.Recommendation{
			CandidateID:     candidateID,
			JobID:           sj.JobID,
			MatchScore:      sj.MatchScore,
			SkillMatchPct:   sj.SkillMatchPct,
			ExperienceMatch: sj.ExperienceMatch,
			Reason:          buildReason(sj),
			ExpiresAt:       expiresAt,
		}
		if err := s.recs.Upsert(ctx, rec); err != nil {
			return count, fmt.Errorf("store recommendation (%d, %d): %w", candidateID, sj.JobID, err)
		}
		count++
	}

	metrics.RecommendationsStoredTotal.Add(float64(count))
	return count, nil
}

// List returns the candidate's stored, non-expired recommendations for jobs
// that are still open, highest score first.
func (s *Service) List(ctx context.Context, candidateID int64, includeApplied bool) ([]domain.Recommendation, error) {
	recs, err := s.recs.ListByCandidate(ctx, candidateID, includeApplied)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	return recs, nil
}

// MarkViewed flags a recommendation as seen. Reports whether the row existed.
func (s *Service) MarkViewed(ctx context.Context, candidateID, jobID int64) (bool, error) {
	ok, err := s.recs.MarkViewed(ctx, candidateID, jobID)
	if err != nil {
		return false, fmt.Errorf("mark viewed: %w", err)
	}
	return ok, nil
}

// MarkApplied flags a recommendation as applied. Reports whether the row existed.
func (s *Service) MarkApplied(ctx context.Context, candidateID, jobID int64) (bool, error) {
	ok, err := s.recs.MarkApplied(ctx, candidateID, jobID)
	if err != nil {
		return false, fmt.Errorf("mark applied: %w", err)
	}
	return ok, nil
}

func (s *Service) profileSource(candidateID int64) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		p, err := s.docs.GetProfile(ctx, candidateID)
		if err != nil {
			return "", err
		}
		return feature.ProfileString(p), nil
	}
}

func (s *Service) jobSource(jobID int64) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		j, err := s.docs.GetJob(ctx, jobID)
		if err != nil {
			return "", err
		}
		return feature.JobString(j), nil
	}
}

func round4(x float64) float64 { return math.Round(x*10000) / 10000 }

func round2(x float64) float64 { return math.Round(x*100) / 100 }
