package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"docqa/config"
	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/embedding"
	docfs "docqa/internal/adapter/fs"
	"docqa/internal/adapter/retriever"
	"docqa/internal/domain"
	"docqa/internal/port"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding docqa.yaml and .env")
	docPath := flag.String("doc", "", "Plain-text document to search (synthetic when empty)")
	words := flag.Int("words", 2000, "Word count of the synthetic document")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 10, "Number of results")
	mock := flag.Bool("mock", false, "Use the offline mock embedder")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -q \"query\" [-doc paper.txt | -words 2000] [-mock]")
		fmt.Println("\nMeasures:")
		fmt.Println("  1. Chunking and embedding latency for one document")
		fmt.Println("  2. Semantic similarity (query vs top chunks)")
		os.Exit(1)
	}

	if err := loadEnv(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *mock {
		cfg.Embedding.Provider = "mock"
	}

	model, err := setupEmbedding(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding not available: %v\n", err)
		os.Exit(1)
	}

	text := syntheticDocument(*words)
	if *docPath != "" {
		if text, err = (docfs.FileReader{}).ReadFile(*docPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading document: %v\n", err)
			os.Exit(1)
		}
	}

	boundary, err := chunker.ParseBoundary(cfg.Chunk.Boundary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in config: %v\n", err)
		os.Exit(1)
	}
	chk := chunker.NewWordChunker(boundary)
	embedder := embedding.NewAveragingEmbedder(model, chk, cfg.Embedding.MaxInputBytes)
	ctx := context.Background()

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Model: %s (%s)\n", model.ModelName(), cfg.Embedding.Provider)
	if *docPath == "" {
		fmt.Printf("Document: synthetic, %d words\n", *words)
	} else {
		fmt.Printf("Document: %s\n", *docPath)
	}

	start := time.Now()
	chunks, err := chk.Chunk(chunker.Normalize(text), cfg.Chunk.MaxBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chunking error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Chunks: %d (max %d bytes) in %s\n", len(chunks), cfg.Chunk.MaxBytes, time.Since(start))

	start = time.Now()
	queryVec, err := embedder.Embed(ctx, *query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedding error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Query embedded: %d dimensions in %s\n", len(queryVec), time.Since(start))

	start = time.Now()
	embedded := make([]domain.EmbeddedChunk, 0, len(chunks))
	for _, ch := range chunks {
		v, err := embedder.Embed(ctx, ch.Text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Embedding error on chunk %d: %v\n", ch.Index, err)
			os.Exit(1)
		}
		embedded = append(embedded, domain.EmbeddedChunk{Chunk: ch, Vector: v})
	}
	elapsed := time.Since(start)
	fmt.Printf("Chunks embedded sequentially in %s", elapsed)
	if len(chunks) > 0 {
		fmt.Printf(" (%s/chunk)", elapsed/time.Duration(len(chunks)))
	}
	fmt.Println()
	fmt.Println()

	ranked, err := retriever.NewCosineRanker(retriever.DegenerateZero).Rank(ctx, queryVec, embedded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ranking error: %v\n", err)
		os.Exit(1)
	}
	results := retriever.TopK(ranked, *topK)
	if len(results) == 0 {
		fmt.Println("Document has no text.")
		return
	}

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Top %d semantic matches:\n\n", len(results))

	totalScore := 0.0
	for i, r := range results {
		preview := chunker.Preview(r.Chunk.Text, 150)

		similarity := r.Score
		totalScore += similarity

		rating := "LOW"
		if similarity > 0.7 {
			rating = "HIGH"
		} else if similarity > 0.5 {
			rating = "GOOD"
		} else if similarity > 0.3 {
			rating = "OK"
		}

		fmt.Printf("%d. [%s %.3f] chunk %d\n", i+1, rating, similarity, r.Chunk.Index)
		fmt.Printf("   %s\n\n", preview)
	}

	avgScore := totalScore / float64(len(results))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average similarity: %.3f\n", avgScore)
	fmt.Printf("  Top-1 similarity:   %.3f\n", results[0].Score)

	if avgScore > 0.5 {
		fmt.Println("  Status: GOOD - chunks are close to the query")
	} else if avgScore > 0.3 {
		fmt.Println("  Status: OK - results are somewhat related")
	} else {
		fmt.Println("  Status: POOR - try smaller chunks or a different embedding model")
	}
}

func setupEmbedding(cfg *config.Config) (port.EmbeddingModel, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return embedding.NewGeminiEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Embedding.Provider)
	}
}

// loadEnv reads dir/.env if present.
func loadEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

var syntheticVocabulary = strings.Fields(`retrieval embedding vector chunk query document model answer
	similarity cosine ranking context prompt paper research method result dataset experiment
	evaluation baseline transformer attention layer token training inference latency memory`)

// syntheticDocument builds a deterministic text of n words with sentence breaks.
func syntheticDocument(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(syntheticVocabulary[(i*7+i/len(syntheticVocabulary))%len(syntheticVocabulary)])
		if i%12 == 11 {
			b.WriteByte('.')
		}
	}
	return b.String()
}
