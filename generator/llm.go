package generator

import (
	"context"
	"fmt"
)

// LLMClient abstracts the hosted model so it can be swapped or faked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}

// Completion is the text of one model reply plus the token counts the
// provider reported for it.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
}

// LLMSettings is the provider configuration handed to NewLLM.
type LLMSettings struct {
	Provider        string
	Model           string
	APIKey          string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
}

// NewLLM builds the client for settings.Provider.
func NewLLM(settings LLMSettings) (LLMClient, error) {
	switch settings.Provider {
	case "gemini", "":
		return NewGeminiLLM(settings)
	case "openai":
		return NewOpenAILLMFromConfig(&settings)
	case "deepseek":
		// DeepSeek exposes an OpenAI-compatible API behind its own base URL.
		if settings.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLMFromConfig(&settings)
	case "anthropic":
		return NewAnthropicLLM(settings)
	case "mock":
		return MockLLM{Model: settings.Model}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", settings.Provider)
	}
}
