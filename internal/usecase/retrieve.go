package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/prompt"
	"docqa/internal/adapter/retriever"
	"docqa/internal/domain"
	"docqa/internal/logger"
	"docqa/internal/port"
)

// ProgressFunc is called after each document chunk has been embedded.
// It may be called from several goroutines.
type ProgressFunc func(done, total int)

// RetrieveOptions tunes a RetrieveUseCase.
type RetrieveOptions struct {
	ChunkBytes      int           // byte budget per document chunk
	TopK            int           // chunks handed to the prompt
	Concurrency     int           // chunk embeddings in flight
	SeedHistory     []domain.Turn // sent before the caller's history
	MaxPromptTokens int           // warn above this estimate; 0 disables
}

// DefaultRetrieveOptions mirrors the default configuration.
func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{
		ChunkBytes:  500,
		TopK:        15,
		Concurrency: 8,
	}
}

// RetrieveUseCase answers one question about one document.
type RetrieveUseCase struct {
	embedder  port.Embedder
	chunker   port.Chunker
	ranker    port.Ranker
	assembler port.PromptAssembler
	generator port.Generator
	opts      RetrieveOptions
	progress  ProgressFunc
}

// NewRetrieveUseCase creates a new retrieve use case.
func NewRetrieveUseCase(
	embedder port.Embedder,
	chunker port.Chunker,
	ranker port.Ranker,
	assembler port.PromptAssembler,
	generator port.Generator,
	opts RetrieveOptions,
) *RetrieveUseCase {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &RetrieveUseCase{
		embedder:  embedder,
		chunker:   chunker,
		ranker:    ranker,
		assembler: assembler,
		generator: generator,
		opts:      opts,
	}
}

// WithProgress returns a copy of u that reports chunk embedding progress to fn.
func (u *RetrieveUseCase) WithProgress(fn ProgressFunc) *RetrieveUseCase {
	c := *u
	c.progress = fn
	return &c
}

// Retrieve embeds the query and the document's chunks, keeps the chunks closest to the query
// and asks the generator to answer from them.
//
// Failures before generation are returned. A generation failure is logged and leaves
// Response empty with GenerationErr set; the result is still returned.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, query, document string, history []domain.Turn) (*domain.RetrievalResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	queryVec, err := u.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// validate before normalizing, which would replace invalid bytes
	if !utf8.ValidString(document) {
		return nil, fmt.Errorf("chunk document: %w: document is not valid UTF-8", domain.ErrInvalidInput)
	}
	chunks, err := u.chunker.Chunk(chunker.Normalize(document), u.opts.ChunkBytes)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		log.Warn("document has no text to search")
	}

	embedded, err := u.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	log.Debug("embedded document", "chunks", len(chunks), "elapsed", time.Since(start))

	ranked, err := u.ranker.Rank(ctx, queryVec, embedded)
	if err != nil {
		return nil, fmt.Errorf("rank chunks: %w", err)
	}
	hits := retriever.TopK(ranked, u.opts.TopK)

	topChunks := make([]string, len(hits))
	for i, h := range hits {
		topChunks[i] = h.Chunk.Text
	}

	p := u.assembler.Assemble(topChunks, query)
	if u.opts.MaxPromptTokens > 0 {
		if est := prompt.EstimateTokens(p); est > u.opts.MaxPromptTokens {
			log.Warn("prompt may exceed model input limit", "estimated_tokens", est, "limit", u.opts.MaxPromptTokens)
		}
	}

	result := &domain.RetrievalResult{
		TopChunks: topChunks,
		Prompt:    p,
		Hits:      hits,
	}

	genStart := time.Now()
	response, err := u.generate(ctx, history, p)
	if err != nil {
		result.GenerationErr = &domain.CollaboratorError{Op: "generate", Model: u.generator.ModelName(), Err: err}
		log.Error("generation failed", "model", u.generator.ModelName(), "error", err)
		return result, nil
	}
	result.Response = response
	log.Debug("generated response", "bytes", len(response), "elapsed", time.Since(genStart))

	return result, nil
}

// embedChunks embeds every chunk concurrently. Either all vectors are returned or none.
func (u *RetrieveUseCase) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.EmbeddedChunk, error) {
	embedded := make([]domain.EmbeddedChunk, len(chunks))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)

	for i, ch := range chunks {
		g.Go(func() error {
			v, err := u.embedder.Embed(gctx, ch.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", ch.Index, err)
			}
			embedded[i] = domain.EmbeddedChunk{Chunk: ch, Vector: v}
			if u.progress != nil {
				u.progress(int(done.Add(1)), len(chunks))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embedded, nil
}

func (u *RetrieveUseCase) generate(ctx context.Context, history []domain.Turn, p string) (string, error) {
	turns := make([]domain.Turn, 0, len(u.opts.SeedHistory)+len(history))
	turns = append(turns, u.opts.SeedHistory...)
	turns = append(turns, history...)

	var sb strings.Builder
	for fragment, err := range u.generator.Generate(ctx, turns, p) {
		if err != nil {
			return "", err
		}
		sb.WriteString(fragment)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
