package retriever

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"docqa/internal/domain"
	"docqa/internal/logger"
)

// DegeneratePolicy says what happens when a chunk vector has zero magnitude
// or a non-finite component.
type DegeneratePolicy int

const (
	// DegenerateZero scores the chunk 0 and keeps ranking.
	DegenerateZero DegeneratePolicy = iota
	// DegenerateError fails the whole ranking.
	DegenerateError
)

func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch s {
	case "", "zero":
		return DegenerateZero, nil
	case "error":
		return DegenerateError, nil
	}
	return DegenerateZero, fmt.Errorf("unknown degenerate policy %q", s)
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// Zero-magnitude and non-finite vectors yield ErrDegenerateVector, never NaN.
func CosineSimilarity(a, b domain.Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 || math.IsInf(normA, 0) || math.IsInf(normB, 0) {
		return 0, domain.ErrDegenerateVector
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, domain.ErrDegenerateVector
	}
	// rounding can push |sim| slightly past 1
	return math.Max(-1, math.Min(1, sim)), nil
}

// CosineRanker scores chunks against a query vector.
type CosineRanker struct {
	policy DegeneratePolicy
}

func NewCosineRanker(policy DegeneratePolicy) *CosineRanker {
	return &CosineRanker{policy: policy}
}

// Rank returns every chunk with its score, highest first. Equal scores keep input order.
// Warnings go to the logger carried by ctx.
func (r *CosineRanker) Rank(ctx context.Context, query domain.Vector, chunks []domain.EmbeddedChunk) ([]domain.ScoredChunk, error) {
	if isDegenerate(query) {
		return nil, fmt.Errorf("query: %w", domain.ErrDegenerateVector)
	}
	log := logger.FromContext(ctx)

	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, ch := range chunks {
		score, err := CosineSimilarity(query, ch.Vector)
		switch {
		case err == nil:
		case r.policy == DegenerateZero && errors.Is(err, domain.ErrDegenerateVector):
			log.Warn("chunk has degenerate embedding, scoring 0", "chunk", ch.Chunk.Index)
			score = 0
		default:
			return nil, fmt.Errorf("chunk %d: %w", ch.Chunk.Index, err)
		}

		scored = append(scored, domain.ScoredChunk{Chunk: ch.Chunk, Score: score})
	}

	slices.SortStableFunc(scored, func(a, b domain.ScoredChunk) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	return scored, nil
}

// TopK returns the first min(k, len(ranked)) entries of ranked.
func TopK(ranked []domain.ScoredChunk, k int) []domain.ScoredChunk {
	if k <= 0 {
		return []domain.ScoredChunk{}
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// isDegenerate reports a vector with no direction: all zeros, or any NaN or Inf.
func isDegenerate(v domain.Vector) bool {
	zero := true
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
		if x != 0 {
			zero = false
		}
	}
	return zero
}
