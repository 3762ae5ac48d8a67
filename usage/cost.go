// Package usage estimates the dollar cost of model calls and keeps the
// per-session running totals.
package usage

import (
	"fmt"
	"strings"
	"time"
)

// Rates are dollar prices per one million tokens.
type Rates struct {
	InputPerMillion  float64 `json:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million"`
}

// DefaultModel prices unknown models.
const DefaultModel = "gemini-1.5-flash"

// Pricing is approximate list pricing; check the provider before relying on it.
var Pricing = map[string]Rates{
	"gemini-1.5-flash": {InputPerMillion: 0.075, OutputPerMillion: 0.30},
	"gemini-1.5-pro":   {InputPerMillion: 3.50, OutputPerMillion: 10.50},
	"gemini-pro":       {InputPerMillion: 0.50, OutputPerMillion: 1.50},
	"gpt-4o-mini":      {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"deepseek-chat":    {InputPerMillion: 0.27, OutputPerMillion: 1.10},
	"claude-3-5-haiku": {InputPerMillion: 0.80, OutputPerMillion: 4.00},
	"mock-1":           {InputPerMillion: 0.075, OutputPerMillion: 0.30},
}

// RatesFor returns the rates for model, falling back to DefaultModel.
func RatesFor(model string) Rates {
	if r, ok := Lookup(model); ok {
		return r
	}
	return Pricing[DefaultModel]
}

// Lookup finds the rates for model. Providers report versioned names such as
// "gemini-1.5-pro-002" or "claude-3-5-haiku-20241022", so the longest Pricing
// key that prefixes the name at a "-" or "@" boundary wins.
func Lookup(model string) (Rates, bool) {
	name := normalizeModel(model)
	if r, ok := Pricing[name]; ok {
		return r, true
	}
	best := ""
	for key := range Pricing {
		if len(key) <= len(best) || !strings.HasPrefix(name, key) {
			continue
		}
		if next := name[len(key)]; next == '-' || next == '@' {
			best = key
		}
	}
	if best == "" {
		return Rates{}, false
	}
	return Pricing[best], true
}

func normalizeModel(model string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(model)), "models/")
}

// Estimate converts token counts into dollars. Negative counts count as zero.
func (r Rates) Estimate(inputTokens, outputTokens int) float64 {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}
	return float64(inputTokens)*r.InputPerMillion/1e6 + float64(outputTokens)*r.OutputPerMillion/1e6
}

// Estimate prices one call made against model.
func Estimate(model string, inputTokens, outputTokens int) float64 {
	return RatesFor(model).Estimate(inputTokens, outputTokens)
}

// Record is the usage of a single model call.
type Record struct {
	Step         string        `json:"step"`
	Model        string        `json:"model"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Cost         float64       `json:"cost"`
	Elapsed      time.Duration `json:"elapsed"`
	At           time.Time     `json:"at"`
}

// NewRecord prices a call and stamps it.
func NewRecord(step, model string, inputTokens, outputTokens int, elapsed time.Duration) Record {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}
	return Record{
		Step:         step,
		Model:        normalizeModel(model),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         Estimate(model, inputTokens, outputTokens),
		Elapsed:      elapsed,
		At:           time.Now(),
	}
}

// Totals sums a set of records.
type Totals struct {
	Requests          int           `json:"requests"`
	InputTokens       int64         `json:"input_tokens"`
	OutputTokens      int64         `json:"output_tokens"`
	Cost              float64       `json:"cost"`
	Elapsed           time.Duration `json:"elapsed"`
	AvgCostPerRequest float64       `json:"avg_cost_per_request"`
}

// Add folds rec into t.
func (t *Totals) Add(rec Record) {
	t.Requests++
	t.InputTokens += int64(rec.InputTokens)
	t.OutputTokens += int64(rec.OutputTokens)
	t.Cost += rec.Cost
	t.Elapsed += rec.Elapsed
	t.AvgCostPerRequest = t.Cost / float64(t.Requests)
}

// Sum totals records.
func Sum(records []Record) Totals {
	var t Totals
	for _, r := range records {
		t.Add(r)
	}
	return t
}

// FormatCost renders a dollar amount the way the results page shows it.
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.6f", cost)
}
