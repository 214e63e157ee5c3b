// Package scoring is the pure matching kernel: cosine similarity, skill
// overlap, experience-range fit and the combined weighted score. No I/O.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/satvik-shyam/placematch/internal/domain"
)

// Contract defaults. The weights, the 2-year overflow tolerance and the 0.5
// partial credit for an experience miss are fixed by the matching contract;
// Params makes them overridable without changing the defaults.
const (
	DefaultSimilarityWeight        = 0.5
	DefaultSkillWeight             = 0.4
	DefaultExperienceWeight        = 0.1
	DefaultExperienceOverflowYears = 2

	experienceMissCredit = 0.5
)

// Weights are the blend factors of the combined score. They should sum to 1
// so the combined score stays in [0, 1].
type Weights struct {
	Similarity float64
	Skills     float64
	Experience float64
}

// Params holds the tunable kernel parameters.
type Params struct {
	Weights                 Weights
	ExperienceOverflowYears int
}

// DefaultParams returns the contract parameter values.
func DefaultParams() Params {
	return Params{
		Weights: Weights{
			Similarity: DefaultSimilarityWeight,
			Skills:     DefaultSkillWeight,
			Experience: DefaultExperienceWeight,
		},
		ExperienceOverflowYears: DefaultExperienceOverflowYears,
	}
}

// CosineSimilarity returns the angular similarity of two vectors in [-1, 1].
// Vectors of unequal length fail with domain.ErrDimensionMismatch. A zero
// magnitude on either side yields 0 rather than a division by zero.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0, nil
	}
	return dot / denom, nil
}

// SkillMatchPercentage returns the share of required skills the candidate has,
// in [0, 100]. Matching is case-insensitive. An empty requirement list is
// vacuously satisfied (100).
func SkillMatchPercentage(candidateSkills, requiredSkills []string) float64 {
	required := toSet(requiredSkills)
	if len(required) == 0 {
		return 100.0
	}

	have := toSet(candidateSkills)
	matches := 0
	for s := range required {
		if _, ok := have[s]; ok {
			matches++
		}
	}

	return float64(matches) / float64(len(required)) * 100
}

// ExperienceMatch reports whether the candidate's years fall within the job's
// range. A nil maxRequired means the upper range is unbounded. Candidates up
// to ExperienceOverflowYears over the maximum still match.
func (p Params) ExperienceMatch(years float64, minRequired int, maxRequired *int) bool {
	if years < float64(minRequired) {
		return false
	}
	if maxRequired != nil && years > float64(*maxRequired+p.ExperienceOverflowYears) {
		return false
	}
	return true
}

// CombinedScore blends the three sub-scores into [0, 1]. The raw cosine
// similarity is first mapped from [-1, 1] to [0, 1]; an experience miss
// contributes partial credit instead of zero.
func (p Params) CombinedScore(similarity, skillMatchPct float64, experienceOK bool) float64 {
	normalized := (similarity + 1) / 2

	expTerm := experienceMissCredit
	if experienceOK {
		expTerm = 1.0
	}

	return normalized*p.Weights.Similarity +
		skillMatchPct/100*p.Weights.Skills +
		expTerm*p.Weights.Experience
}

func toSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
