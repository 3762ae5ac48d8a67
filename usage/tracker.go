package usage

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "linkedin_post_generator/usage"

// Tracker keeps the running usage of one session. Totals only grow until
// Reset is called.
type Tracker struct {
	mu      sync.Mutex
	totals  Totals
	records []Record
	started time.Time
	metrics *meters
}

// Summary is the view of a Tracker shown to users.
type Summary struct {
	Totals
	SessionDuration time.Duration `json:"session_duration"`
	CostFormatted   string        `json:"cost_formatted"`
}

// NewTracker returns an empty tracker reporting to the global meter provider.
func NewTracker() *Tracker {
	return &Tracker{started: time.Now(), metrics: globalMeters()}
}

// NewTrackerWithProvider reports to mp instead of the global provider.
func NewTrackerWithProvider(mp metric.MeterProvider) *Tracker {
	return &Tracker{started: time.Now(), metrics: newMeters(mp)}
}

// Add records one call.
func (t *Tracker) Add(ctx context.Context, rec Record) {
	t.mu.Lock()
	t.totals.Add(rec)
	t.records = append(t.records, rec)
	t.mu.Unlock()

	t.metrics.record(ctx, rec)
}

// AddAll records the calls of a pipeline run in order.
func (t *Tracker) AddAll(ctx context.Context, recs []Record) {
	for _, r := range recs {
		t.Add(ctx, r)
	}
}

// Totals returns the running totals.
func (t *Tracker) Totals() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totals
}

// Records returns a copy of every recorded call.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Summary returns totals plus session duration.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summary{
		Totals:          t.totals,
		SessionDuration: time.Since(t.started),
		CostFormatted:   FormatCost(t.totals.Cost),
	}
}

// Reset clears the session.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals = Totals{}
	t.records = nil
	t.started = time.Now()
}

type meters struct {
	tokens metric.Int64Counter
	calls  metric.Int64Counter
	cost   metric.Float64Counter
}

var (
	metersOnce sync.Once
	shared     *meters
)

func globalMeters() *meters {
	metersOnce.Do(func() {
		shared = newMeters(otel.GetMeterProvider())
	})
	return shared
}

// newMeters builds the instruments. An instrument that fails to build is left
// nil and recording skips it.
func newMeters(mp metric.MeterProvider) *meters {
	m := mp.Meter(meterName)
	out := &meters{}
	if c, err := m.Int64Counter("llm.tokens", metric.WithDescription("Tokens reported by the model provider"), metric.WithUnit("{token}")); err == nil {
		out.tokens = c
	}
	if c, err := m.Int64Counter("llm.calls", metric.WithDescription("Model calls made by the pipeline")); err == nil {
		out.calls = c
	}
	if c, err := m.Float64Counter("llm.cost", metric.WithDescription("Estimated model cost"), metric.WithUnit("USD")); err == nil {
		out.cost = c
	}
	return out
}

func (m *meters) record(ctx context.Context, rec Record) {
	if m == nil {
		return
	}
	model := attribute.String("model", rec.Model)
	step := attribute.String("step", rec.Step)
	if m.tokens != nil {
		m.tokens.Add(ctx, int64(rec.InputTokens), metric.WithAttributes(model, step, attribute.String("direction", "input")))
		m.tokens.Add(ctx, int64(rec.OutputTokens), metric.WithAttributes(model, step, attribute.String("direction", "output")))
	}
	if m.calls != nil {
		m.calls.Add(ctx, 1, metric.WithAttributes(model, step))
	}
	if m.cost != nil {
		m.cost.Add(ctx, rec.Cost, metric.WithAttributes(model))
	}
}
