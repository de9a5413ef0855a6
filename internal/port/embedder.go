package port

import (
	"context"

	"docqa/internal/domain"
)

// EmbeddingModel is an external service that turns one bounded piece of text into a vector.
type EmbeddingModel interface {
	// EmbedContent embeds a single input. Callers keep the input within the model's size limit.
	EmbedContent(ctx context.Context, text string) (domain.Vector, error)

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// Embedder produces one vector for text of any length.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Vector, error)
}
