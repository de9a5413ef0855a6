package llm

import (
	"context"
	"iter"
	"strings"
	"sync"

	"docqa/internal/domain"
)

// MockGenerator replays scripted fragments. With Err set, it fails after
// emitting the first FailAfter fragments.
type MockGenerator struct {
	Fragments []string
	Err       error
	FailAfter int

	mu          sync.Mutex
	lastHistory []domain.Turn
	lastPrompt  string
}

// NewEchoGenerator answers with the question found on the prompt's last line.
func NewEchoGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (g *MockGenerator) Generate(ctx context.Context, history []domain.Turn, prompt string) iter.Seq2[string, error] {
	g.mu.Lock()
	g.lastHistory = append([]domain.Turn(nil), history...)
	g.lastPrompt = prompt
	g.mu.Unlock()

	fragments := g.Fragments
	if fragments == nil && g.Err == nil {
		lines := strings.Split(prompt, "\n")
		fragments = []string{"You asked: ", lines[len(lines)-1]}
	}

	return func(yield func(string, error) bool) {
		for i, f := range fragments {
			if g.Err != nil && i == g.FailAfter {
				break
			}
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if g.Err != nil {
			yield("", g.Err)
		}
	}
}

func (g *MockGenerator) ModelName() string {
	return "mock"
}

// LastCall returns the history and prompt of the most recent Generate call.
func (g *MockGenerator) LastCall() ([]domain.Turn, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastHistory, g.lastPrompt
}
