// Package recommendation persists recommendation rows in PostgreSQL,
// one row per (candidate, job) pair.
package recommendation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satvik-shyam/placematch/internal/domain"
)

// Repo owns the ai_recommendations table.
type Repo struct {
	db *sql.DB
}

// New creates a recommendation repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// EnsureSchema creates the ai_recommendations table if missing. Only this
// table is owned here; candidates, jobs and companies belong to the main
// application schema.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS ai_recommendations (
			recommendation_id     BIGSERIAL PRIMARY KEY,
			candidate_id          BIGINT NOT NULL,
			job_id                BIGINT NOT NULL,
			match_score           DOUBLE PRECISION NOT NULL,
			skill_match_pct       DOUBLE PRECISION NOT NULL,
			experience_match      BOOLEAN NOT NULL,
			recommendation_reason TEXT NOT NULL DEFAULT '',
			is_viewed             BOOLEAN NOT NULL DEFAULT FALSE,
			is_applied            BOOLEAN NOT NULL DEFAULT FALSE,
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at            TIMESTAMPTZ NOT NULL,
			UNIQUE (candidate_id, job_id)
		)
	`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure ai_recommendations schema: %w", err)
	}
	return nil
}

// Upsert writes one recommendation row. A single INSERT ... ON CONFLICT is
// atomic per key. Regeneration refreshes scores, reason, expiry and
// created_at but never touches the is_viewed/is_applied flags.
func (r *Repo) Upsert(ctx context.Context, rec domain.Recommendation) error {
	const query = `
		INSERT INTO ai_recommendations (
			candidate_id, job_id, match_score, skill_match_pct,
			experience_match, recommendation_reason, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (candidate_id, job_id) DO UPDATE SET
			match_score = EXCLUDED.match_score,
			skill_match_pct = EXCLUDED.skill_match_pct,
			experience_match = EXCLUDED.experience_match,
			recommendation_reason = EXCLUDED.recommendation_reason,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.CandidateID,
		rec.JobID,
		rec.MatchScore,
		rec.SkillMatchPct,
		rec.ExperienceMatch,
		rec.Reason,
		rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert recommendation (%d, %d): %w", rec.CandidateID, rec.JobID, err)
	}
	return nil
}

// ListByCandidate returns non-expired recommendations for still-open jobs,
// highest score first. Applied rows are excluded unless includeApplied is set.
func (r *Repo) ListByCandidate(ctx context.Context, candidateID int64, includeApplied bool) ([]domain.Recommendation, error) {
	query := `
		SELECT
			r.candidate_id,
			r.job_id,
			j.title,
			c.company_name,
			r.match_score,
			r.skill_match_pct,
			r.experience_match,
			r.recommendation_reason,
			r.is_viewed,
			r.is_applied,
			r.created_at,
			r.expires_at
		FROM ai_recommendations r
		JOIN jobs j ON r.job_id = j.job_id
		JOIN companies c ON j.company_id = c.company_id
		WHERE r.candidate_id = $1
			AND r.expires_at > NOW()
			AND j.status = 'open'
	`
	if !includeApplied {
		query += " AND r.is_applied = FALSE"
	}
	query += " ORDER BY r.match_score DESC"

	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations for candidate %d: %w", candidateID, err)
	}
	defer rows.Close()

	var recs []domain.Recommendation
	for rows.Next() {
		var rec domain.Recommendation
		if err := rows.Scan(
			&rec.CandidateID,
			&rec.JobID,
			&rec.JobTitle,
			&rec.CompanyName,
			&rec.MatchScore,
			&rec.SkillMatchPct,
			&rec.ExperienceMatch,
			&rec.Reason,
			&rec.IsViewed,
			&rec.IsApplied,
			&rec.CreatedAt,
			&rec.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan recommendation row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendation rows: %w", err)
	}

	return recs, nil
}

// MarkViewed sets the viewed flag. Idempotent; reports whether a row existed.
func (r *Repo) MarkViewed(ctx context.Context, candidateID, jobID int64) (bool, error) {
	return r.setFlag(ctx, "is_viewed", candidateID, jobID)
}

// MarkApplied sets the applied flag. Idempotent; reports whether a row existed.
func (r *Repo) MarkApplied(ctx context.Context, candidateID, jobID int64) (bool, error) {
	return r.setFlag(ctx, "is_applied", candidateID, jobID)
}

func (r *Repo) setFlag(ctx context.Context, column string, candidateID, jobID int64) (bool, error) {
	// column is one of two compile-time constants, never user input.
	query := fmt.Sprintf(
		"UPDATE ai_recommendations SET %s = TRUE WHERE candidate_id = $1 AND job_id = $2", column,
	)

	res, err := r.db.ExecContext(ctx, query, candidateID, jobID)
	if err != nil {
		return false, fmt.Errorf("set %s (%d, %d): %w", column, candidateID, jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
