package port

import "docqa/internal/domain"

type Chunker interface {
	Chunk(text string, maxBytes int) ([]domain.Chunk, error)
}
