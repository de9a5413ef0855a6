package llm

import (
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"docqa/internal/domain"
)

// OpenAIGenerator streams chat completions from OpenAI or a compatible server.
type OpenAIGenerator struct {
	client          openai.Client
	model           string
	maxOutputTokens int
}

func NewOpenAIGenerator(apiKeyEnv, model, baseURL string, maxOutputTokens int) (*OpenAIGenerator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIGenerator{
		client:          openai.NewClient(opts...),
		model:           model,
		maxOutputTokens: maxOutputTokens,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, history []domain.Turn, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
		for _, turn := range history {
			if turn.Role == domain.RoleModel {
				messages = append(messages, openai.AssistantMessage(turn.Text))
			} else {
				messages = append(messages, openai.UserMessage(turn.Text))
			}
		}
		messages = append(messages, openai.UserMessage(prompt))

		params := openai.ChatCompletionNewParams{
			Messages: messages,
			Model:    openai.ChatModel(g.model),
		}
		if g.maxOutputTokens > 0 {
			params.MaxCompletionTokens = openai.Int(int64(g.maxOutputTokens))
		}

		stream := g.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			yield("", err)
		}
	}
}

func (g *OpenAIGenerator) ModelName() string {
	return g.model
}
