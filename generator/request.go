package generator

import (
	"fmt"
	"strings"
)

// RequestInput is the raw form or JSON submission.
type RequestInput struct {
	Topic           string `json:"topic"`
	Tone            string `json:"tone"`
	Audience        string `json:"audience"`
	PostType        string `json:"post_type"`
	PostCount       *int   `json:"post_count"`
	IncludeHashtags *bool  `json:"include_hashtags"`
	IncludeCTA      *bool  `json:"include_cta"`
}

// Defaults fill the fields a submission may leave empty.
type Defaults struct {
	Tone      string
	Audience  string
	PostCount int
}

// NewRequest validates in and resolves enum values to their canonical form.
func NewRequest(in RequestInput, d Defaults) (Request, error) {
	req := Request{
		Topic:           strings.TrimSpace(in.Topic),
		PostCount:       d.PostCount,
		IncludeHashtags: true,
		IncludeCTA:      true,
	}
	if req.PostCount == 0 {
		req.PostCount = DefaultPosts
	}
	if in.PostCount != nil {
		req.PostCount = *in.PostCount
	}
	if in.IncludeHashtags != nil {
		req.IncludeHashtags = *in.IncludeHashtags
	}
	if in.IncludeCTA != nil {
		req.IncludeCTA = *in.IncludeCTA
	}

	tone := firstNonEmpty(in.Tone, d.Tone, Tones[0])
	canon, ok := lookup(Tones, tone)
	if !ok {
		return Request{}, &ValidationError{Field: "tone", Reason: fmt.Sprintf("%q is not one of %s", tone, strings.Join(Tones, ", "))}
	}
	req.Tone = canon

	audience := firstNonEmpty(in.Audience, d.Audience, Audiences[0])
	canon, ok = lookup(Audiences, audience)
	if !ok {
		return Request{}, &ValidationError{Field: "audience", Reason: fmt.Sprintf("%q is not one of %s", audience, strings.Join(Audiences, ", "))}
	}
	req.Audience = canon

	if pt := strings.TrimSpace(in.PostType); pt != "" {
		canon, ok = lookup(PostTypes, pt)
		if !ok {
			return Request{}, &ValidationError{Field: "post_type", Reason: fmt.Sprintf("%q is not one of %s", pt, strings.Join(PostTypes, ", "))}
		}
		req.PostType = canon
	}

	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the invariants the pipeline relies on.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return &ValidationError{Field: "topic", Reason: "must not be empty"}
	}
	if r.PostCount < MinPosts || r.PostCount > MaxPosts {
		return &ValidationError{Field: "post_count", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinPosts, MaxPosts, r.PostCount)}
	}
	if _, ok := lookup(Tones, r.Tone); !ok {
		return &ValidationError{Field: "tone", Reason: fmt.Sprintf("%q is not supported", r.Tone)}
	}
	if _, ok := lookup(Audiences, r.Audience); !ok {
		return &ValidationError{Field: "audience", Reason: fmt.Sprintf("%q is not supported", r.Audience)}
	}
	return nil
}

func lookup(options []string, v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return o, true
		}
	}
	return "", false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
