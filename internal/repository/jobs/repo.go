// Package jobs reads open job postings from the relational store. The jobs
// table is owned by the main application; this repository only queries it.
package jobs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satvik-shyam/placematch/internal/domain"
)

// Repo queries job postings.
type Repo struct {
	db *sql.DB
}

// New creates a job postings repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// ListOpen returns all currently open jobs in primary-key order. The stable
// order matters: it is the tie-break order of equal recommendation scores.
func (r *Repo) ListOpen(ctx context.Context) ([]domain.JobPosting, error) {
	const query = `
		SELECT job_id, title, company_id, min_experience, max_experience
		FROM jobs
		WHERE status = 'open'
		ORDER BY job_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.JobPosting
	for rows.Next() {
		var j domain.JobPosting
		var maxExp sql.NullInt64
		if err := rows.Scan(&j.ID, &j.Title, &j.CompanyID, &j.MinExperience, &maxExp); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		if maxExp.Valid {
			v := int(maxExp.Int64)
			j.MaxExperience = &v
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job rows: %w", err)
	}

	return jobs, nil
}
