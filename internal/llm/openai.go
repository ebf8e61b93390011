package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompatible talks to any chat-completions endpoint: OpenAI itself or
// Gemini's OpenAI-compatible surface.
type OpenAICompatible struct {
	client      *openai.Client
	model       openai.ChatModel
	maxTokens   int
	temperature float64
}

func NewOpenAICompatible(cfg config.LLMConfig) *OpenAICompatible {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAICompatible{
		client:      &client,
		model:       openai.ChatModel(cfg.Model),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (c *OpenAICompatible) Summarize(ctx context.Context, text string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(text)),
		},
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
