package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
type OpenAILLM struct {
	Provider string
	Model    string
	client   openai.Client
	defaults LLMSettings
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	return &OpenAILLM{
		Provider: provider,
		Model:    cfg.Model,
		client:   openai.NewClient(opts...),
		defaults: *cfg,
	}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{}
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: msgs,
	}
	if t, ok := prompt.temperature(o.defaults.Temperature); ok {
		params.Temperature = openai.Float(t)
	}
	if n := prompt.maxTokens(o.defaults.MaxOutputTokens); n > 0 {
		params.MaxTokens = openai.Int(int64(n))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		pe := &ProviderError{Provider: o.Provider, Message: "chat completion failed", Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			pe.Status = apiErr.StatusCode
			if apiErr.Message != "" {
				pe.Message = apiErr.Message
			}
		}
		return Completion{}, pe
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Completion{}, emptyContent(o.Provider)
	}
	return Completion{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		Model:        resp.Model,
	}, nil
}
