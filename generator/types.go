package generator

import (
	"strings"
	"time"

	"linkedin_post_generator/filter"
	"linkedin_post_generator/usage"
)

const (
	MinPosts     = 1
	MaxPosts     = 5
	DefaultPosts = 3
)

var Tones = []string{
	"Professional",
	"Conversational",
	"Enthusiastic",
	"Educational",
	"Inspirational",
	"Analytical",
	"Thought Leadership",
	"Personal Storytelling",
}

var Audiences = []string{
	"General Professionals",
	"Business Leaders",
	"Software Engineers",
	"Entrepreneurs",
	"Marketers",
	"Job Seekers",
	"Students",
}

var PostTypes = []string{
	"Story",
	"Tips",
	"Question",
	"Industry Insight",
	"Personal Experience",
	"Tutorial",
	"Case Study",
	"Opinion Piece",
}

// Request describes one submission. Build it with NewRequest and treat it as
// read-only afterwards.
type Request struct {
	Topic           string `json:"topic"`
	Tone            string `json:"tone"`
	Audience        string `json:"audience"`
	PostType        string `json:"post_type,omitempty"`
	PostCount       int    `json:"post_count"`
	IncludeHashtags bool   `json:"include_hashtags"`
	IncludeCTA      bool   `json:"include_cta"`
}

// Post is one candidate returned to the user.
type Post struct {
	ID           string            `json:"id"`
	Index        int               `json:"index"`
	Body         string            `json:"body"`
	CharCount    int               `json:"char_count"`
	Hashtags     []string          `json:"hashtags"`
	QualityScore float64           `json:"quality_score"`
	Engagement   filter.Engagement `json:"engagement"`
	Flagged      bool              `json:"flagged"`
	FlagReasons  []string          `json:"flag_reasons,omitempty"`
	Regenerated  bool              `json:"regenerated"`
	Tone         string            `json:"tone"`
	RequestTopic string            `json:"request_topic"`
	EditedFrom   string            `json:"edited_from,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// WithHashtags renders the body followed by the hashtag line.
func (p Post) WithHashtags() string {
	if len(p.Hashtags) == 0 {
		return p.Body
	}
	return p.Body + "\n\n" + strings.Join(p.Hashtags, " ")
}

// Result is the output of one pipeline run.
type Result struct {
	Request Request        `json:"request"`
	Outline string         `json:"outline"`
	Posts   []Post         `json:"posts"`
	Calls   []usage.Record `json:"calls"`
	Usage   usage.Totals   `json:"usage"`
	Elapsed time.Duration  `json:"elapsed"`
	Model   string         `json:"model"`
}

// Flagged counts flagged posts.
func (r Result) Flagged() int {
	n := 0
	for _, p := range r.Posts {
		if p.Flagged {
			n++
		}
	}
	return n
}
