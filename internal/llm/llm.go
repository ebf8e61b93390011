package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	defaultGeminiModel    = "gemini-2.0-flash"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

var (
	ErrNoAPIKey      = errors.New("llm api key not configured")
	ErrEmptyResponse = errors.New("llm returned no content")
)

// Summarizer turns the day's concatenated article summaries into one digest.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// BuildPrompt wraps the combined summaries in the analyst instructions.
func BuildPrompt(combined string) string {
	return `You are a financial news analyst. Summarize the following collection of financial news summaries, focusing on:
1. Key financial metrics and performance across the market
2. Market impact and stock movements
3. Strategic implications for industries or companies
4. Investment relevance for portfolio decisions

Keep the summary concise but informative (2-3 paragraphs):

` + combined
}

// New returns the summarizer for cfg.Provider.
func New(cfg config.LLMConfig) (Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	switch cfg.Provider {
	case ProviderGemini, "":
		if cfg.Model == "" {
			cfg.Model = defaultGeminiModel
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = geminiBaseURL
		}
		return NewOpenAICompatible(cfg), nil
	case ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = defaultOpenAIModel
		}
		return NewOpenAICompatible(cfg), nil
	case ProviderAnthropic:
		if cfg.Model == "" {
			cfg.Model = defaultAnthropicModel
		}
		return NewAnthropic(cfg), nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}
