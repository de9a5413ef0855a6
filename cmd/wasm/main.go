//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/retriever"
	"docqa/internal/domain"
)

var (
	inclusive = chunker.NewWordChunker(chunker.BoundaryInclusive)
	ranker    = retriever.NewCosineRanker(retriever.DegenerateZero)
)

// The browser page calls the embedding and generation services itself and
// uses these functions for the local steps of the pipeline.
func main() {
	c := make(chan struct{})

	js.Global().Set("docqaNormalize", js.FuncOf(normalize))
	js.Global().Set("docqaChunk", js.FuncOf(chunk))
	js.Global().Set("docqaRank", js.FuncOf(rank))

	<-c
}

func normalize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: docqaNormalize(text)")
	}
	return chunker.Normalize(args[0].String())
}

func chunk(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: docqaChunk(text, [maxBytes])")
	}

	text := args[0].String()
	maxBytes := 500
	if len(args) > 1 {
		maxBytes = args[1].Int()
	}

	chunks, err := inclusive.Chunk(text, maxBytes)
	if err != nil {
		return makeError("chunking failed: " + err.Error())
	}

	return makeResult(map[string]interface{}{
		"chunks": chunker.Texts(chunks),
	})
}

// rank takes the query vector and chunk vectors as JSON arrays and returns the top-k chunk indexes.
func rank(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: docqaRank(queryVectorJSON, chunkVectorsJSON, [topK])")
	}

	var query domain.Vector
	if err := json.Unmarshal([]byte(args[0].String()), &query); err != nil {
		return makeError("bad query vector: " + err.Error())
	}
	var vectors []domain.Vector
	if err := json.Unmarshal([]byte(args[1].String()), &vectors); err != nil {
		return makeError("bad chunk vectors: " + err.Error())
	}
	topK := 15
	if len(args) > 2 {
		topK = args[2].Int()
	}

	embedded := make([]domain.EmbeddedChunk, len(vectors))
	for i, v := range vectors {
		embedded[i] = domain.EmbeddedChunk{Chunk: domain.Chunk{Index: i}, Vector: v}
	}

	ranked, err := ranker.Rank(context.Background(), query, embedded)
	if err != nil {
		return makeError("ranking failed: " + err.Error())
	}

	output := []map[string]interface{}{}
	for _, r := range retriever.TopK(ranked, topK) {
		output = append(output, map[string]interface{}{
			"index": r.Chunk.Index,
			"score": r.Score,
		})
	}

	return makeResult(map[string]interface{}{
		"results": output,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
