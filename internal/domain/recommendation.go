package domain

import "time"

// ScoredJob is one ranked entry produced by recommendation generation.
// Score fields are rounded for reproducible display: MatchScore and
// EmbeddingSimilarity to 4 decimal places, SkillMatchPct to 2.
type ScoredJob struct {
	JobID               int64   `json:"job_id"`
	Title               string  `json:"job_title"`
	MatchScore          float64 `json:"match_score"`
	SkillMatchPct       float64 `json:"skill_match_pct"`
	ExperienceMatch     bool    `json:"experience_match"`
	EmbeddingSimilarity float64 `json:"embedding_similarity"`
}

// Recommendation is a stored recommendation row, unique per
// (CandidateID, JobID). Regeneration overwrites scores, reason and expiry but
// preserves the IsViewed/IsApplied flags.
type Recommendation struct {
	CandidateID     int64
	JobID           int64
	JobTitle        string
	CompanyName     string
	MatchScore      float64
	SkillMatchPct   float64
	ExperienceMatch bool
	Reason          string
	IsViewed        bool
	IsApplied       bool
	CreatedAt       time.Time
	ExpiresAt       time.Time
}
