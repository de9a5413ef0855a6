package cli

import (
	"fmt"

	"docqa/config"
	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/llm"
	"docqa/internal/adapter/memstore"
	"docqa/internal/adapter/prompt"
	"docqa/internal/adapter/retriever"
	"docqa/internal/adapter/store"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

func newEmbeddingModel(c config.EmbeddingConfig) (port.EmbeddingModel, error) {
	var (
		model port.EmbeddingModel
		err   error
	)

	switch c.Provider {
	case "gemini":
		model, err = embedding.NewGeminiEmbedder(c.APIKeyEnv, c.Model, c.BaseURL)
	case "openai":
		if c.APIKeyEnv == "" && c.BaseURL != "" {
			model = embedding.NewOllamaEmbedder(c.Model, c.BaseURL)
		} else {
			model, err = embedding.NewOpenAIEmbedder(c.APIKeyEnv, c.Model, c.BaseURL)
		}
	case "mock":
		model = embedding.NewMockEmbedder(c.Dimension)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", c.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return embedding.NewRateLimited(model, c.RequestsPerSecond, c.Burst), nil
}

func newGenerator(c config.GenerationConfig) (port.Generator, error) {
	var (
		gen port.Generator
		err error
	)

	switch c.Provider {
	case "gemini":
		gen, err = llm.NewGeminiGenerator(c.APIKeyEnv, c.Model, c.BaseURL, c.MaxOutputTokens)
	case "openai":
		gen, err = llm.NewOpenAIGenerator(c.APIKeyEnv, c.Model, c.BaseURL, c.MaxOutputTokens)
	case "mock":
		gen = llm.NewEchoGenerator()
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", c.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	return gen, nil
}

func newChunker(boundary string) (*chunker.WordChunker, error) {
	b, err := chunker.ParseBoundary(boundary)
	if err != nil {
		return nil, err
	}
	return chunker.NewWordChunker(b), nil
}

// newRetrieveUseCase wires the retrieval pipeline from configuration.
func newRetrieveUseCase(c *config.Config) (*usecase.RetrieveUseCase, error) {
	chk, err := newChunker(c.Chunk.Boundary)
	if err != nil {
		return nil, err
	}
	policy, err := retriever.ParseDegeneratePolicy(c.Retrieve.DegeneratePolicy)
	if err != nil {
		return nil, err
	}

	model, err := newEmbeddingModel(c.Embedding)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(c.Generation)
	if err != nil {
		return nil, err
	}

	return usecase.NewRetrieveUseCase(
		embedding.NewAveragingEmbedder(model, chk, c.Embedding.MaxInputBytes),
		chk,
		retriever.NewCosineRanker(policy),
		prompt.NewAssembler(c.Generation.Preamble),
		gen,
		usecase.RetrieveOptions{
			ChunkBytes:      c.Chunk.MaxBytes,
			TopK:            c.Retrieve.TopK,
			Concurrency:     c.Embedding.Concurrency,
			SeedHistory:     c.Generation.SeedHistory,
			MaxPromptTokens: c.Generation.MaxInputTokens,
		},
	), nil
}

func openHistory(c *config.Config, dir string) (port.HistoryStore, error) {
	if !c.History.Enabled {
		return memstore.NewMemoryHistoryStore(c.History.MaxTurns), nil
	}
	if err := config.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .docqa directory: %w", err)
	}
	st, err := store.NewBoltHistoryStore(config.HistoryDBPath(dir), c.History.MaxTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return st, nil
}
