package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docqa/internal/domain"
)

// Boundary decides whether a multi-word chunk may reach the byte budget exactly.
type Boundary int

const (
	// BoundaryInclusive allows len(chunk) == maxBytes.
	BoundaryInclusive Boundary = iota
	// BoundaryExclusive keeps multi-word chunks strictly below maxBytes.
	BoundaryExclusive
)

// ParseBoundary maps the config value to a Boundary.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "", "inclusive":
		return BoundaryInclusive, nil
	case "exclusive":
		return BoundaryExclusive, nil
	}
	return BoundaryInclusive, fmt.Errorf("unknown chunk boundary %q", s)
}

func (b Boundary) String() string {
	if b == BoundaryExclusive {
		return "exclusive"
	}
	return "inclusive"
}

// WordChunker packs whitespace-separated words into chunks bounded by UTF-8 byte length.
// Words are never split; a word longer than the budget becomes a chunk of its own.
type WordChunker struct {
	boundary Boundary
}

func NewWordChunker(boundary Boundary) *WordChunker {
	return &WordChunker{boundary: boundary}
}

func (c *WordChunker) Chunk(text string, maxBytes int) ([]domain.Chunk, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("%w: max bytes must be positive, got %d", domain.ErrInvalidInput, maxBytes)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidInput)
	}

	words := strings.Fields(text)
	chunks := make([]domain.Chunk, 0, len(text)/maxBytes+1)

	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  current.String(),
		})
		current.Reset()
	}

	for _, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}

		if c.fits(current.Len()+1+len(word), maxBytes) {
			current.WriteByte(' ')
			current.WriteString(word)
			continue
		}

		flush()
		current.WriteString(word)
	}
	flush()

	return chunks, nil
}

func (c *WordChunker) fits(n, maxBytes int) bool {
	if c.boundary == BoundaryExclusive {
		return n < maxBytes
	}
	return n <= maxBytes
}

// Texts returns the text of each chunk in order.
func Texts(chunks []domain.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	return texts
}
