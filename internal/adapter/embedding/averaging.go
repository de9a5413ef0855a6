package embedding

import (
	"context"
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// AveragingEmbedder embeds text of any length by splitting it into inputs the model accepts
// and averaging the resulting vectors.
type AveragingEmbedder struct {
	model    port.EmbeddingModel
	chunker  port.Chunker
	maxBytes int
}

func NewAveragingEmbedder(model port.EmbeddingModel, chunker port.Chunker, maxBytes int) *AveragingEmbedder {
	return &AveragingEmbedder{
		model:    model,
		chunker:  chunker,
		maxBytes: maxBytes,
	}
}

// Embed calls the model once per sub-chunk, in order. The first failure aborts the whole embed.
func (e *AveragingEmbedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	chunks, err := e.chunker.Chunk(text, e.maxBytes)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: nothing to embed", domain.ErrEmptyInput)
	}

	vectors := make([]domain.Vector, 0, len(chunks))
	for _, ch := range chunks {
		v, err := e.model.EmbedContent(ctx, ch.Text)
		if err != nil {
			return nil, &domain.CollaboratorError{Op: "embed", Model: e.model.ModelName(), Err: err}
		}
		vectors = append(vectors, v)
	}

	return Mean(vectors)
}

// Mean returns the element-wise arithmetic mean of vectors.
func Mean(vectors []domain.Vector) (domain.Vector, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: mean of zero vectors", domain.ErrEmptyInput)
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", domain.ErrDimensionMismatch, i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += float64(x)
		}
	}

	n := float64(len(vectors))
	mean := make(domain.Vector, dim)
	for j := range sum {
		mean[j] = float32(sum[j] / n)
	}
	return mean, nil
}
