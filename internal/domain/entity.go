package domain

import "time"

// EntityKind distinguishes the two embeddable entity types.
type EntityKind string

// Embeddable entity kinds.
const (
	KindCandidate EntityKind = "candidate"
	KindJob       EntityKind = "job"
)

// Education is a single education entry from a parsed profile.
type Education struct {
	Degree string `json:"degree"`
	Field  string `json:"field"`
}

// WorkExperience is a single work-history entry from a parsed profile.
type WorkExperience struct {
	Role    string `json:"role"`
	Company string `json:"company"`
}

// ParsedProfile is the structured form of a candidate resume, produced by the
// external extraction pipeline. Read-only to the matching engine.
type ParsedProfile struct {
	Skills          []string         `json:"skills"`
	ExperienceYears float64          `json:"experience_years"`
	Education       []Education      `json:"education"`
	Experience      []WorkExperience `json:"experience"`
}

// ParsedJob is the structured form of a job description.
// MaxExperience nil means the upper range is unbounded.
type ParsedJob struct {
	Title           string   `json:"title"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	MinExperience   int      `json:"min_experience"`
	MaxExperience   *int     `json:"max_experience"`
}

// JobPosting is an open job row from the relational store.
type JobPosting struct {
	ID            int64
	Title         string
	CompanyID     int64
	MinExperience int
	MaxExperience *int
}

// CachedEmbedding is a cached feature vector with its change-detection hash.
// Unique per (Kind, EntityID); overwritten, never versioned.
type CachedEmbedding struct {
	Kind        EntityKind
	EntityID    int64
	Vector      []float32
	ContentHash string
	CreatedAt   time.Time
}
