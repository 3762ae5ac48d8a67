// Package filter holds the deterministic checks applied to generated posts.
package filter

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMinLength   = 100
	DefaultMaxLength   = 3000
	DefaultIdealLength = 1150
)

// Engagement buckets a quality score.
type Engagement string

const (
	EngagementHigh   Engagement = "High"
	EngagementMedium Engagement = "Medium"
	EngagementLow    Engagement = "Low"
)

var ctaPattern = regexp.MustCompile(`(?i)(what do you think|what's your take|share your|comment below|drop a comment|let me know|tell me|i'd love to hear|join the conversation|follow for more|repost|agree or disagree|thoughts\?)`)

// Filter checks a post against a keyword blocklist and length bounds and
// scores it. The zero value uses the default bounds and no blocklist.
type Filter struct {
	Blocklist   []string
	MinLength   int
	MaxLength   int
	IdealLength int
}

// Verdict is the outcome of Check.
type Verdict struct {
	Passed     bool       `json:"passed"`
	Reasons    []string   `json:"reasons,omitempty"`
	Score      float64    `json:"score"`
	Engagement Engagement `json:"engagement"`
	CharCount  int        `json:"char_count"`
	HasCTA     bool       `json:"has_cta"`
}

// New builds a Filter and fills unset bounds with defaults.
func New(blocklist []string, minLength, maxLength int) Filter {
	f := Filter{Blocklist: blocklist, MinLength: minLength, MaxLength: maxLength}
	return f.withDefaults()
}

func (f Filter) withDefaults() Filter {
	if f.MinLength <= 0 {
		f.MinLength = DefaultMinLength
	}
	if f.MaxLength <= f.MinLength {
		f.MaxLength = DefaultMaxLength
		if f.MaxLength <= f.MinLength {
			f.MaxLength = f.MinLength * 2
		}
	}
	if f.IdealLength <= 0 {
		f.IdealLength = DefaultIdealLength
	}
	if f.IdealLength < f.MinLength || f.IdealLength > f.MaxLength {
		f.IdealLength = (f.MinLength + f.MaxLength) / 2
	}
	return f
}

// Check runs every check on text. It never modifies the text.
func (f Filter) Check(text string) Verdict {
	f = f.withDefaults()
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)

	v := Verdict{CharCount: n}
	v.Reasons = append(v.Reasons, f.blocked(trimmed)...)
	if n < f.MinLength {
		v.Reasons = append(v.Reasons, fmt.Sprintf("too short: %d characters (minimum %d)", n, f.MinLength))
	}
	if n > f.MaxLength {
		v.Reasons = append(v.Reasons, fmt.Sprintf("too long: %d characters (maximum %d)", n, f.MaxLength))
	}
	v.Passed = len(v.Reasons) == 0
	v.HasCTA = HasCallToAction(trimmed)
	v.Score = f.score(n, v.HasCTA)
	v.Engagement = EngagementFor(v.Score)
	return v
}

// blocked returns one reason per blocklisted keyword found, case-insensitively.
func (f Filter) blocked(text string) []string {
	lower := strings.ToLower(text)
	var reasons []string
	for _, kw := range f.Blocklist {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			reasons = append(reasons, fmt.Sprintf("contains blocked keyword %q", kw))
		}
	}
	return reasons
}

// score gives up to 7 points for closeness to the ideal length and 3 for a
// call to action, rounded to one decimal.
func (f Filter) score(n int, hasCTA bool) float64 {
	span := float64(f.MaxLength - f.MinLength)
	dist := math.Abs(float64(n - f.IdealLength))
	closeness := 1 - dist/span
	if closeness < 0 {
		closeness = 0
	}
	s := 7 * closeness
	if hasCTA {
		s += 3
	}
	return math.Round(s*10) / 10
}

// HasCallToAction reports whether text invites a reaction, either through a
// known phrase or by ending its last paragraph with a question.
func HasCallToAction(text string) bool {
	if ctaPattern.MatchString(text) {
		return true
	}
	paragraphs := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(paragraphs) - 1; i >= 0; i-- {
		line := strings.TrimSpace(paragraphs[i])
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.HasSuffix(line, "?")
	}
	return false
}

// EngagementFor maps a 0-10 score to a bucket.
func EngagementFor(score float64) Engagement {
	switch {
	case score >= 8:
		return EngagementHigh
	case score >= 6:
		return EngagementMedium
	default:
		return EngagementLow
	}
}
