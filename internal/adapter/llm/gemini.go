package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"docqa/internal/domain"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiGenerator streams answers from the Gemini streamGenerateContent endpoint.
type GeminiGenerator struct {
	apiKey          string
	model           string
	baseURL         string
	maxOutputTokens int
	client          *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type streamChunk struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewGeminiGenerator(apiKeyEnv, model, baseURL string, maxOutputTokens int) (*GeminiGenerator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GeminiGenerator{
		apiKey:          apiKey,
		model:           strings.TrimPrefix(model, "models/"),
		baseURL:         strings.TrimRight(baseURL, "/"),
		maxOutputTokens: maxOutputTokens,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, history []domain.Turn, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		body, err := g.open(ctx, history, prompt)
		if err != nil {
			yield("", err)
			return
		}
		defer body.Close()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				yield("", fmt.Errorf("failed to parse stream chunk: %w", err))
				return
			}
			if chunk.Error != nil {
				yield("", fmt.Errorf("API error %d: %s", chunk.Error.Code, chunk.Error.Message))
				return
			}
			if chunk.PromptFeedback != nil && chunk.PromptFeedback.BlockReason != "" {
				yield("", fmt.Errorf("prompt blocked: %s", chunk.PromptFeedback.BlockReason))
				return
			}
			if len(chunk.Candidates) == 0 {
				continue
			}

			for _, part := range chunk.Candidates[0].Content.Parts {
				if part.Text == "" {
					continue
				}
				if !yield(part.Text, nil) {
					return
				}
			}
		}

		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("stream read failed: %w", err))
		}
	}
}

func (g *GeminiGenerator) open(ctx context.Context, history []domain.Turn, prompt string) (io.ReadCloser, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, geminiContent{
			Role:  geminiRole(turn.Role),
			Parts: []geminiPart{{Text: turn.Text}},
		})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt}}})

	jsonData, err := json.Marshal(generateRequest{
		Contents:         contents,
		GenerationConfig: generationConfig{MaxOutputTokens: g.maxOutputTokens},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		resp.Body.Close()
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

func (g *GeminiGenerator) ModelName() string {
	return g.model
}

func geminiRole(r domain.Role) string {
	if r == domain.RoleModel {
		return "model"
	}
	return "user"
}
