package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"linkedin_post_generator/usage"
)

// Turn records one pipeline run or one user edit. Turns are append-only.
type Turn struct {
	Kind      string    `json:"kind"`
	Result    *Result   `json:"result,omitempty"`
	Edit      *Post     `json:"edit,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	TurnGenerate = "generate"
	TurnEdit     = "edit"
)

// Session holds the runs of one user plus the running usage total. It lives
// only in memory and is dropped with the process.
type Session struct {
	ID    string
	Usage *usage.Tracker

	mu      sync.Mutex
	history []Turn
	latest  []Post
	agent   *Agent
}

// NewSession creates an empty session bound to agent.
func NewSession(id string, agent *Agent) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{ID: id, Usage: usage.NewTracker(), agent: agent}
}

// Generate runs the pipeline and records its usage in the session total.
// Calls that completed before a failure still count toward the total.
func (s *Session) Generate(ctx context.Context, req Request) (Result, error) {
	res, err := s.agent.Generate(ctx, req)
	s.Usage.AddAll(ctx, res.Calls)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{Kind: TurnGenerate, Result: &res, CreatedAt: time.Now()})
	s.latest = append([]Post(nil), res.Posts...)
	return res, nil
}

// Edit replaces the body of the latest post at index with text the user
// wrote. The original post is left untouched; a new Post value with a fresh
// ID is recorded and returned.
func (s *Session) Edit(index int, body string) (Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Post{}, &ValidationError{Field: "body", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.latest) {
		return Post{}, &ValidationError{Field: "index", Reason: fmt.Sprintf("no post at position %d", index)}
	}
	prev := s.latest[index]
	v := s.agent.Filter().Check(body)
	edited := Post{
		ID:           uuid.NewString(),
		Index:        prev.Index,
		Body:         body,
		CharCount:    v.CharCount,
		Hashtags:     append([]string(nil), prev.Hashtags...),
		QualityScore: v.Score,
		Engagement:   v.Engagement,
		Flagged:      !v.Passed,
		Tone:         prev.Tone,
		RequestTopic: prev.RequestTopic,
		EditedFrom:   prev.ID,
		CreatedAt:    time.Now(),
	}
	if !v.Passed {
		edited.FlagReasons = v.Reasons
	}

	latest := append([]Post(nil), s.latest...)
	latest[index] = edited
	s.latest = latest
	s.history = append(s.history, Turn{Kind: TurnEdit, Edit: &edited, CreatedAt: edited.CreatedAt})
	return edited, nil
}

// Latest returns the current posts, edits applied.
func (s *Session) Latest() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Post(nil), s.latest...)
}

// History returns every turn in order.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history...)
}
