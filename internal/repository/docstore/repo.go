// Package docstore holds the parsed-profile and parsed-job documents produced
// by the extraction pipeline, one JSON document per entity. The matching
// engine only reads them; the write path exists for the ingestion side.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/satvik-shyam/placematch/internal/db"
	"github.com/satvik-shyam/placematch/internal/domain"
)

// store is the consumer interface for parsed documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Repo reads and writes parsed documents.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a parsed-document repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// GetProfile returns the parsed profile for a candidate, or
// domain.ErrNoSourceData when none exists yet.
func (r *Repo) GetProfile(ctx context.Context, candidateID int64) (domain.ParsedProfile, error) {
	raw, err := r.get(ctx, r.profileKey(candidateID))
	if err != nil {
		return domain.ParsedProfile{}, err
	}

	var doc domain.ParsedProfile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.ParsedProfile{}, fmt.Errorf("parse profile %d: %w", candidateID, err)
	}
	return doc, nil
}

// PutProfile upserts the parsed profile for a candidate.
func (r *Repo) PutProfile(ctx context.Context, candidateID int64, doc domain.ParsedProfile) error {
	return r.put(ctx, r.profileKey(candidateID), doc)
}

// GetJob returns the parsed job description for a job, or
// domain.ErrNoSourceData when none exists yet.
func (r *Repo) GetJob(ctx context.Context, jobID int64) (domain.ParsedJob, error) {
	raw, err := r.get(ctx, r.jobKey(jobID))
	if err != nil {
		return domain.ParsedJob{}, err
	}

	var doc domain.ParsedJob
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.ParsedJob{}, fmt.Errorf("parse job %d: %w", jobID, err)
	}
	return doc, nil
}

// PutJob upserts the parsed job description for a job.
func (r *Repo) PutJob(ctx context.Context, jobID int64, doc domain.ParsedJob) error {
	return r.put(ctx, r.jobKey(jobID), doc)
}

func (r *Repo) get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNoSourceData
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}
	return unwrapJSONPath(raw)
}

func (r *Repo) put(ctx context.Context, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// unwrapJSONPath unwraps the single-element array JSON.GET returns for the
// "$" path. Plain objects pass through untouched.
func unwrapJSONPath(raw []byte) ([]byte, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return raw, nil
	}
	if len(elems) == 0 {
		return nil, domain.ErrNoSourceData
	}
	return elems[0], nil
}

func (r *Repo) profileKey(candidateID int64) string {
	return r.keyPrefix + "parsed_profile:" + strconv.FormatInt(candidateID, 10)
}

func (r *Repo) jobKey(jobID int64) string {
	return r.keyPrefix + "parsed_job:" + strconv.FormatInt(jobID, 10)
}
