// Package embcache is the entity-keyed embedding cache. It owns cached
// vectors exclusively: one redis hash per (entity kind, entity id), holding
// the vector, the content hash of the feature string it was computed from,
// and the computation time.
package embcache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/satvik-shyam/placematch/internal/db"
	"github.com/satvik-shyam/placematch/internal/domain"
	"github.com/satvik-shyam/placematch/internal/domain/feature"
)

const keySuffix = "emb_cache:"

// Hash field names.
const (
	fieldVector      = "vector"
	fieldContentHash = "content_hash"
	fieldCreatedAt   = "created_at"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// SourceFunc fetches the canonical feature string for an entity.
// It returns domain.ErrNoSourceData when no parsed document exists.
// Alias so callers can pass plain closures through consumer interfaces.
type SourceFunc = func(ctx context.Context) (string, error)

// Cache maps (entity kind, entity id) to a cached feature vector.
type Cache struct {
	store      store
	embedder   domain.Embedder
	keyPrefix  string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	now        func() time.Time
}

// New creates an embedding cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	s store,
	embedder domain.Embedder,
	keyPrefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		store:      s,
		embedder:   embedder,
		keyPrefix:  keyPrefix + keySuffix,
		cacheTotal: cacheTotal,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the cached embedding for an entity, or domain.ErrNotFound.
func (c *Cache) Get(ctx context.Context, kind domain.EntityKind, id int64) (domain.CachedEmbedding, error) {
	key := c.key(kind, id)

	fields, err := c.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.CachedEmbedding{}, domain.ErrNotFound
		}
		return domain.CachedEmbedding{}, fmt.Errorf("get cached embedding %s: %w", key, err)
	}

	vec, err := bytesToVector(fields[fieldVector])
	if err != nil {
		return domain.CachedEmbedding{}, fmt.Errorf("parse cached embedding %s: %w", key, err)
	}

	cached := domain.CachedEmbedding{
		Kind:        kind,
		EntityID:    id,
		Vector:      vec,
		ContentHash: fields[fieldContentHash],
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); parseErr == nil {
		cached.CreatedAt = ts
	}
	return cached, nil
}

// Put upserts the cached embedding for an entity. A single HSET keeps the
// write atomic per key; recomputes overwrite, they never version.
func (c *Cache) Put(ctx context.Context, kind domain.EntityKind, id int64, vector []float32, contentHash string) error {
	key := c.key(kind, id)
	fields := map[string]string{
		fieldVector:      vectorToBytes(vector),
		fieldContentHash: contentHash,
		fieldCreatedAt:   c.now().UTC().Format(time.RFC3339Nano),
	}
	if err := c.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("cache embedding %s: %w", key, err)
	}
	return nil
}

// GetOrCompute resolves an entity's vector. An unforced call returns any
// cached vector without validating its content hash against the current
// source (staleness between forced refreshes is tolerated by contract to
// avoid recomputation; the stored hash makes a stricter validate-on-read
// policy possible later). On a miss or with force set, the feature string is
// fetched, embedded and written through. A missing source document surfaces
// as domain.ErrNoSourceData.
func (c *Cache) GetOrCompute(
	ctx context.Context, kind domain.EntityKind, id int64, source SourceFunc, force bool,
) ([]float32, error) {
	if !force {
		cached, err := c.Get(ctx, kind, id)
		if err == nil {
			c.incCache("hit")
			return cached.Vector, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			// Degraded read counts as a miss; recompute below.
			c.logger.Warn("Failed to read embedding cache",
				zap.String("kind", string(kind)), zap.Int64("id", id), zap.Error(err))
		}
		c.incCache("miss")
	}

	text, err := source(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoSourceData) {
			return nil, domain.ErrNoSourceData
		}
		return nil, fmt.Errorf("fetch source for %s %d: %w", kind, id, err)
	}

	contentHash := feature.ContentHash(text)

	result, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed %s %d: %w", kind, id, err)
	}

	if err := c.Put(ctx, kind, id, result.Embedding, contentHash); err != nil {
		// Write-through failure is not fatal: the vector is still usable.
		c.logger.Warn("Failed to write embedding cache",
			zap.String("kind", string(kind)), zap.Int64("id", id), zap.Error(err))
	}

	return result.Embedding, nil
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) key(kind domain.EntityKind, id int64) string {
	return c.keyPrefix + string(kind) + ":" + strconv.FormatInt(id, 10)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) ([]float32, error) {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
