package generator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"linkedin_post_generator/usage"
)

// CallStatus describes the most recent model call.
type CallStatus struct {
	Attempted bool
	OK        bool
	Err       string
	At        time.Time
}

// Client wraps an LLMClient with the single immediate re-attempt on transient
// failures and remembers whether the last call succeeded.
type Client struct {
	llm      LLMClient
	provider string
	model    string
	logger   *zap.Logger

	mu   sync.Mutex
	last CallStatus
}

func NewClient(llm LLMClient, provider, model string, logger *zap.Logger) (*Client, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{llm: llm, provider: provider, model: model, logger: logger}, nil
}

// Provider is the configured provider name.
func (c *Client) Provider() string { return c.provider }

// Model is the configured model name.
func (c *Client) Model() string { return c.model }

// LastCall returns the status of the most recent Complete.
func (c *Client) LastCall() CallStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Complete sends prompt and returns the reply along with its usage record.
// Errors are always *ProviderError.
func (c *Client) Complete(ctx context.Context, prompt Prompt) (Completion, usage.Record, error) {
	start := time.Now()
	out, err := c.llm.Complete(ctx, prompt)
	if err != nil && retryable(ctx, err) {
		c.logger.Warn("model call failed, retrying once",
			zap.String("step", prompt.Step),
			zap.String("provider", c.provider),
			zap.Error(err))
		out, err = c.llm.Complete(ctx, prompt)
	}
	elapsed := time.Since(start)
	c.setLast(err)

	if err != nil {
		c.logger.Error("model call failed",
			zap.String("step", prompt.Step),
			zap.String("provider", c.provider),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return Completion{}, usage.Record{}, c.asProviderError(err)
	}

	// Price by the reported model when it is in the table, else by the
	// configured one.
	model := out.Model
	if _, ok := usage.Lookup(model); !ok {
		model = c.model
	}
	rec := usage.NewRecord(prompt.Step, model, out.InputTokens, out.OutputTokens, elapsed)
	c.logger.Debug("model call",
		zap.String("step", prompt.Step),
		zap.String("model", rec.Model),
		zap.Int("input_tokens", rec.InputTokens),
		zap.Int("output_tokens", rec.OutputTokens),
		zap.Float64("cost", rec.Cost),
		zap.Duration("elapsed", elapsed))
	return out, rec, nil
}

func (c *Client) setLast(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = CallStatus{Attempted: true, OK: err == nil, At: time.Now()}
	if err != nil {
		c.last.Err = err.Error()
	}
}

func (c *Client) asProviderError(err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: c.provider, Message: err.Error(), Err: err}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}
	return true
}
