package projector

import (
	"context"
	"math"
	"testing"

	"github.com/satvik-shyam/placematch/internal/domain/scoring"
)

func TestEmbed_Deterministic(t *testing.T) {
	p := New(256)
	ctx := context.Background()

	a, err := p.Embed(ctx, "skills: Python, SQL | experience: 2 years")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := p.Embed(ctx, "skills: Python, SQL | experience: 2 years")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.Embedding) != 256 {
		t.Fatalf("expected dimension 256, got %d", len(a.Embedding))
	}
	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			t.Fatalf("vectors differ at index %d: %v vs %v", i, a.Embedding[i], b.Embedding[i])
		}
	}
}

func TestEmbed_UnitNorm(t *testing.T) {
	p := New(64)
	res, err := p.Embed(context.Background(), "backend engineer with go and postgres")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum float64
	for _, v := range res.Embedding {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-4 {
		t.Fatalf("expected unit L2 norm, got %v", math.Sqrt(sum))
	}
}

func TestEmbed_EmptyTextStaysZero(t *testing.T) {
	p := New(32)
	res, err := p.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range res.Embedding {
		if v != 0 {
			t.Fatalf("expected zero vector for empty text, index %d = %v", i, v)
		}
	}
}

func TestEmbed_CaseInsensitive(t *testing.T) {
	p := New(128)
	ctx := context.Background()

	a, _ := p.Embed(ctx, "Python SQL Docker")
	b, _ := p.Embed(ctx, "python sql docker")

	sim, err := scoring.CosineSimilarity(a.Embedding, b.Embedding)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim-1.0) > 1e-6 {
		t.Fatalf("case must not affect the projection, similarity = %v", sim)
	}
}

func TestEmbed_SimilarTextIsCloserThanUnrelated(t *testing.T) {
	p := New(256)
	ctx := context.Background()

	base, _ := p.Embed(ctx, "skills: python, sql, docker | experience: 3 years")
	similar, _ := p.Embed(ctx, "skills: python, sql, kubernetes | experience: 3 years")
	unrelated, _ := p.Embed(ctx, "title: florist | required skills: flower arrangement")

	simClose, err := scoring.CosineSimilarity(base.Embedding, similar.Embedding)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	simFar, err := scoring.CosineSimilarity(base.Embedding, unrelated.Embedding)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if simClose <= simFar {
		t.Fatalf("similar text should score higher: close=%v far=%v", simClose, simFar)
	}
}

func TestNew_DefaultDimensions(t *testing.T) {
	p := New(0)
	if p.Dimensions() != DefaultDimensions {
		t.Fatalf("expected default dimension %d, got %d", DefaultDimensions, p.Dimensions())
	}
}
