// Package genai wraps the generative-text providers used to enhance complaint
// text, suggest categories and draft notification letters.
//
// Two providers are supported: Gemini over its REST generateContent endpoint and
// OpenAI chat completions. Callers depend on Generator and never on a concrete
// provider. When no API key is configured New returns a nil Generator and the
// callers fall back to their non-generated defaults.
package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civiguard-backend-go/internal/config"
)

var (
	// ErrEmptyResponse is returned when the provider answers without text.
	ErrEmptyResponse = errors.New("empty response from provider")
	// ErrRateLimited is returned on HTTP 429 or the provider's equivalent.
	ErrRateLimited = errors.New("provider rate limited")
)

// Request is a single prompt.
type Request struct {
	// System is an optional instruction preamble.
	System string
	Prompt string
	// JSON asks the provider for a JSON object instead of prose.
	JSON bool
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

const clientTimeout = 15 * time.Second

// New builds the provider selected by AI_PROVIDER. It returns (nil, nil) when
// generation is disabled.
func New(appConfig *config.Config) (Generator, error) {
	switch appConfig.AIProvider {
	case config.AIProviderGemini:
		return NewGeminiClient(GeminiConfig{
			APIKey:  appConfig.GeminiAPIKey,
			Model:   appConfig.GeminiModel,
			BaseURL: appConfig.GeminiBaseURL,
		}), nil
	case config.AIProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  appConfig.OpenAIAPIKey,
			Model:   appConfig.OpenAIModel,
			BaseURL: appConfig.OpenAIBaseURL,
		}), nil
	case config.AIProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", appConfig.AIProvider)
	}
}
