package port

import (
	"context"
	"iter"

	"docqa/internal/domain"
)

// Generator represents a language model that streams its answer.
type Generator interface {
	// Generate sends history followed by prompt as the newest user turn.
	// Fragments arrive in order; a non-nil error ends the sequence.
	Generate(ctx context.Context, history []domain.Turn, prompt string) iter.Seq2[string, error]

	// ModelName returns the name of the model.
	ModelName() string
}
