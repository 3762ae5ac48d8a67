package generator

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// GeminiLLM implements LLMClient on Google's Gemini API.
type GeminiLLM struct {
	Model    string
	client   *genai.Client
	defaults LLMSettings
}

// NewGeminiLLM creates a Gemini client. No request is made until Complete.
func NewGeminiLLM(cfg LLMSettings) (*GeminiLLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; set GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Message: "failed to create client", Err: err}
	}
	return &GeminiLLM{
		Model:    strings.TrimPrefix(cfg.Model, "models/"),
		client:   client,
		defaults: cfg,
	}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	conf := &genai.GenerateContentConfig{}
	if prompt.System != "" {
		conf.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if t, ok := prompt.temperature(g.defaults.Temperature); ok {
		conf.Temperature = genai.Ptr(float32(t))
	}
	if n := prompt.maxTokens(g.defaults.MaxOutputTokens); n > 0 {
		conf.MaxOutputTokens = int32(n)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt.User), conf)
	if err != nil {
		return Completion{}, geminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Completion{}, emptyContent("gemini")
	}
	out := Completion{Text: text, Model: g.Model}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	return out, nil
}

// geminiError carries the HTTP status of an API failure so bad keys and
// unknown models are not retried.
func geminiError(err error) *ProviderError {
	pe := &ProviderError{Provider: "gemini", Message: "generate content failed: " + err.Error(), Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		pe.Status = apiErr.Code
		if apiErr.Message != "" {
			pe.Message = "generate content failed: " + apiErr.Message
		}
	}
	return pe
}
