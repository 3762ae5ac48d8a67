package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicDefaultMaxTokens = 1024

// AnthropicLLM implements LLMClient on the Anthropic Messages API.
type AnthropicLLM struct {
	Model    string
	client   anthropic.Client
	defaults LLMSettings
}

func NewAnthropicLLM(cfg LLMSettings) (*AnthropicLLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key missing; set ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicLLM{
		Model:    cfg.Model,
		client:   anthropic.NewClient(opts...),
		defaults: cfg,
	}, nil
}

func (a *AnthropicLLM) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	maxTokens := prompt.maxTokens(a.defaults.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
	}
	if t, ok := prompt.temperature(a.defaults.Temperature); ok {
		params.Temperature = anthropic.Float(t)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		pe := &ProviderError{Provider: "anthropic", Message: "messages request failed", Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			pe.Status = apiErr.StatusCode
		}
		return Completion{}, pe
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Completion{}, emptyContent("anthropic")
	}
	return Completion{
		Text:         text,
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		Model:        string(resp.Model),
	}, nil
}
