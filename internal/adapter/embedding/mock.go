package embedding

import (
	"context"
	"hash/fnv"
	"strings"

	"docqa/internal/domain"
)

// MockEmbedder hashes words into a fixed number of buckets. Texts sharing words
// get similar vectors, which is enough to exercise ranking offline.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) EmbedContent(ctx context.Context, text string) (domain.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := make(domain.Vector, e.dimension)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%uint32(e.dimension)]++
	}
	return v, nil
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
