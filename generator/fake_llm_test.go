package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"linkedin_post_generator/filter"
)

// scriptedLLM records every prompt and answers through reply. n is the
// zero-based number of earlier calls for the same step.
type scriptedLLM struct {
	mu      sync.Mutex
	prompts []Prompt
	perStep map[string]int
	reply   func(p Prompt, n int) (Completion, error)
}

func newScripted(reply func(p Prompt, n int) (Completion, error)) *scriptedLLM {
	return &scriptedLLM{perStep: make(map[string]int), reply: reply}
}

func (s *scriptedLLM) Complete(_ context.Context, p Prompt) (Completion, error) {
	s.mu.Lock()
	n := s.perStep[p.Step]
	s.perStep[p.Step]++
	s.prompts = append(s.prompts, p)
	s.mu.Unlock()
	return s.reply(p, n)
}

func (s *scriptedLLM) steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	for i, p := range s.prompts {
		out[i] = p.Step
	}
	return out
}

func (s *scriptedLLM) count(step string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perStep[step]
}

func (s *scriptedLLM) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func candidate(i int) string {
	return fmt.Sprintf("Candidate %d: remote teams that write things down ship faster and argue less. What do you think?", i)
}

func batch(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		sb.WriteString(fmt.Sprintf("Post %d:\n%s\n\n", i, candidate(i)))
	}
	return sb.String()
}

func text(s string) Completion {
	return Completion{Text: s, InputTokens: 100, OutputTokens: 50, Model: "gemini-1.5-flash"}
}

// happyReply answers every step successfully; generation returns n posts.
func happyReply(p Prompt, n int) (Completion, error) {
	switch p.Step {
	case StepOutline:
		return text("1. Hook\n2. Value\n3. Question"), nil
	case StepGenerate:
		return text(batch(countFromPrompt(p))), nil
	case StepSingle, StepRegenerate:
		return text(candidate(100 + n)), nil
	case StepHashtags:
		return text("#RemoteWork\n#Productivity\n#Leadership"), nil
	}
	return Completion{}, fmt.Errorf("unexpected step %s", p.Step)
}

func countFromPrompt(p Prompt) int {
	var n int
	i := strings.Index(p.User, "Write ")
	if i >= 0 {
		fmt.Sscanf(p.User[i:], "Write %d LinkedIn posts", &n)
	}
	return n
}

func testOptions(blocklist ...string) Options {
	return Options{
		Filter:            filter.New(blocklist, 20, 2000),
		Lengths:           Lengths{Min: 1000, Max: 1300},
		RegenerateFlagged: true,
	}
}
