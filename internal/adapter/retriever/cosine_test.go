package retriever

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"docqa/internal/domain"
	"docqa/internal/logger"
)

func embedded(vectors ...domain.Vector) []domain.EmbeddedChunk {
	out := make([]domain.EmbeddedChunk, len(vectors))
	for i, v := range vectors {
		out[i] = domain.EmbeddedChunk{Chunk: domain.Chunk{Index: i, Text: string(rune('a' + i))}, Vector: v}
	}
	return out
}

func TestCosineSimilarityIdentity(t *testing.T) {
	vectors := []domain.Vector{
		{1, 0},
		{3, 4},
		{-0.2, 0.7, 1.5},
		{1e-3, 2e3, -7},
	}

	for _, v := range vectors {
		same, err := CosineSimilarity(v, v)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(same-1) > 1e-9 {
			t.Errorf("expected cos(v,v)=1 for %v, got %f", v, same)
		}

		neg := make(domain.Vector, len(v))
		for i := range v {
			neg[i] = -v[i]
		}
		opposite, err := CosineSimilarity(v, neg)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(opposite+1) > 1e-9 {
			t.Errorf("expected cos(v,-v)=-1 for %v, got %f", v, opposite)
		}
	}
}

func TestCosineSimilarityErrors(t *testing.T) {
	if _, err := CosineSimilarity(domain.Vector{1, 0}, domain.Vector{1, 0, 0}); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := CosineSimilarity(domain.Vector{0, 0}, domain.Vector{1, 0}); !errors.Is(err, domain.ErrDegenerateVector) {
		t.Errorf("expected ErrDegenerateVector, got %v", err)
	}
}

func TestRankOrthogonalExample(t *testing.T) {
	ranker := NewCosineRanker(DegenerateZero)

	ranked, err := ranker.Rank(context.Background(), domain.Vector{1, 0}, embedded(domain.Vector{1, 0}, domain.Vector{0, 1}))
	if err != nil {
		t.Fatal(err)
	}

	if ranked[0].Chunk.Index != 0 || ranked[0].Score != 1.0 {
		t.Errorf("expected first chunk with score 1.0, got %+v", ranked[0])
	}
	if ranked[1].Chunk.Index != 1 || ranked[1].Score != 0.0 {
		t.Errorf("expected second chunk with score 0.0, got %+v", ranked[1])
	}

	top := TopK(ranked, 1)
	if len(top) != 1 || top[0].Chunk.Index != 0 {
		t.Errorf("expected only the first chunk, got %+v", top)
	}
}

func TestRankStableDescending(t *testing.T) {
	ranker := NewCosineRanker(DegenerateZero)

	// indexes 1, 2 and 4 tie
	chunks := embedded(
		domain.Vector{0, 1},
		domain.Vector{1, 1},
		domain.Vector{1, 1},
		domain.Vector{1, 0},
		domain.Vector{1, 1},
	)
	ranked, err := ranker.Rank(context.Background(), domain.Vector{1, 1}, chunks)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("not descending at %d: %f > %f", i, ranked[i].Score, ranked[i-1].Score)
		}
	}

	wantTies := []int{1, 2, 4}
	for i, idx := range wantTies {
		if ranked[i].Chunk.Index != idx {
			t.Errorf("expected tie order %v, got index %d at position %d", wantTies, ranked[i].Chunk.Index, i)
		}
	}
}

func TestRankDegeneratePolicies(t *testing.T) {
	chunks := embedded(domain.Vector{0, 0}, domain.Vector{1, 0})

	ranked, err := NewCosineRanker(DegenerateZero).Rank(context.Background(), domain.Vector{1, 0}, chunks)
	if err != nil {
		t.Fatalf("zero policy should not fail: %v", err)
	}
	if ranked[0].Chunk.Index != 1 || ranked[1].Score != 0 {
		t.Errorf("expected degenerate chunk last with score 0, got %+v", ranked)
	}
	for _, r := range ranked {
		if math.IsNaN(r.Score) {
			t.Error("score is NaN")
		}
	}

	if _, err := NewCosineRanker(DegenerateError).Rank(context.Background(), domain.Vector{1, 0}, chunks); !errors.Is(err, domain.ErrDegenerateVector) {
		t.Errorf("expected ErrDegenerateVector, got %v", err)
	}

	if _, err := NewCosineRanker(DegenerateZero).Rank(context.Background(), domain.Vector{0, 0}, chunks[1:]); !errors.Is(err, domain.ErrDegenerateVector) {
		t.Errorf("expected zero query to fail, got %v", err)
	}
}

func TestRankDimensionMismatch(t *testing.T) {
	chunks := embedded(domain.Vector{1, 0, 0})
	for _, policy := range []DegeneratePolicy{DegenerateZero, DegenerateError} {
		if _, err := NewCosineRanker(policy).Rank(context.Background(), domain.Vector{1, 0}, chunks); !errors.Is(err, domain.ErrDimensionMismatch) {
			t.Errorf("expected ErrDimensionMismatch, got %v", err)
		}
	}
}

func TestTopK(t *testing.T) {
	ranked := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Index: 2}, Score: 0.9},
		{Chunk: domain.Chunk{Index: 0}, Score: 0.5},
		{Chunk: domain.Chunk{Index: 1}, Score: 0.1},
	}

	tests := []struct {
		k    int
		want int
	}{
		{0, 0},
		{-1, 0},
		{1, 1},
		{3, 3},
		{15, 3},
	}

	for _, tt := range tests {
		top := TopK(ranked, tt.k)
		if len(top) != tt.want {
			t.Errorf("k=%d: expected %d results, got %d", tt.k, tt.want, len(top))
		}
		for i := range top {
			if top[i] != ranked[i] {
				t.Errorf("k=%d: result is not a prefix at %d", tt.k, i)
			}
		}
	}
}

func TestCosineSimilarityNonFinite(t *testing.T) {
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())

	tests := []struct {
		name string
		a, b domain.Vector
	}{
		{"inf component", domain.Vector{1, 0}, domain.Vector{inf, 1}},
		{"nan component", domain.Vector{1, 0}, domain.Vector{nan, 1}},
		{"inf on both sides", domain.Vector{inf, 0}, domain.Vector{inf, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := CosineSimilarity(tt.a, tt.b)
			if !errors.Is(err, domain.ErrDegenerateVector) {
				t.Errorf("expected ErrDegenerateVector, got score=%f err=%v", score, err)
			}
			if math.IsNaN(score) {
				t.Error("score is NaN")
			}
		})
	}
}

func TestRankNonFiniteChunk(t *testing.T) {
	chunks := embedded(
		domain.Vector{0, 1},
		domain.Vector{float32(math.NaN()), 1},
		domain.Vector{1, 0},
	)

	ranked, err := NewCosineRanker(DegenerateZero).Rank(context.Background(), domain.Vector{1, 0}, chunks)
	if err != nil {
		t.Fatalf("zero policy should not fail: %v", err)
	}
	if ranked[0].Chunk.Index != 2 || ranked[0].Score != 1 {
		t.Errorf("expected exact match first, got %+v", ranked)
	}
	for i, r := range ranked {
		if math.IsNaN(r.Score) {
			t.Errorf("score at %d is NaN", i)
		}
		if i > 0 && r.Score > ranked[i-1].Score {
			t.Errorf("not descending at %d: %+v", i, ranked)
		}
	}

	if _, err := NewCosineRanker(DegenerateError).Rank(context.Background(), domain.Vector{1, 0}, chunks); !errors.Is(err, domain.ErrDegenerateVector) {
		t.Errorf("expected ErrDegenerateVector, got %v", err)
	}
	if _, err := NewCosineRanker(DegenerateZero).Rank(context.Background(), domain.Vector{float32(math.Inf(-1)), 0}, chunks); !errors.Is(err, domain.ErrDegenerateVector) {
		t.Errorf("expected non-finite query to fail, got %v", err)
	}
}

func TestRankWarnsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil)).With("path", "notes.txt")
	ctx := logger.WithContext(context.Background(), log)

	_, err := NewCosineRanker(DegenerateZero).Rank(ctx, domain.Vector{1, 0}, embedded(domain.Vector{0, 0}, domain.Vector{1, 0}))
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "degenerate embedding") || !strings.Contains(out, "path=notes.txt") {
		t.Errorf("expected warning with path attribute, got %q", out)
	}
}
