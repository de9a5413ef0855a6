package port

import (
	"context"

	"docqa/internal/domain"
)

// Ranker orders chunks by similarity to a query vector, best first.
type Ranker interface {
	Rank(ctx context.Context, query domain.Vector, chunks []domain.EmbeddedChunk) ([]domain.ScoredChunk, error)
}
