package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// RateLimited throttles calls to an embedding model. It is safe for concurrent use.
type RateLimited struct {
	model   port.EmbeddingModel
	limiter *rate.Limiter
}

// NewRateLimited allows rps calls per second with the given burst. rps <= 0 disables throttling.
func NewRateLimited(model port.EmbeddingModel, rps float64, burst int) *RateLimited {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		model:   model,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (r *RateLimited) EmbedContent(ctx context.Context, text string) (domain.Vector, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	return r.model.EmbedContent(ctx, text)
}

func (r *RateLimited) ModelName() string {
	return r.model.ModelName()
}
