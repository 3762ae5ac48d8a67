package generator

import (
	"fmt"
	"strings"
)

// Step names, used for prompts, usage records and logs.
const (
	StepOutline    = "outline"
	StepGenerate   = "generate"
	StepSingle     = "generate_single"
	StepRegenerate = "regenerate"
	StepHashtags   = "hashtags"
)

// Prompt is what gets sent to the model for one call.
type Prompt struct {
	Step            string
	System          string
	User            string
	Temperature     *float64
	MaxOutputTokens int
}

func (p Prompt) temperature(fallback float64) (float64, bool) {
	if p.Temperature != nil {
		return *p.Temperature, true
	}
	if fallback > 0 {
		return fallback, true
	}
	return 0, false
}

func (p Prompt) maxTokens(fallback int) int {
	if p.MaxOutputTokens > 0 {
		return p.MaxOutputTokens
	}
	return fallback
}

// Lengths is the character range generation should aim for.
type Lengths struct {
	Min int
	Max int
}

const systemWriter = "You are an experienced LinkedIn ghostwriter. Write plain text suitable for LinkedIn: no Markdown headings, no bold markers, no preamble or explanations."

const lowTemperature = 0.2

// BuildOutlinePrompt asks for the short strategic plan that steers the rest
// of the run.
func BuildOutlinePrompt(req Request) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a concise content plan for %d LinkedIn posts about %q.\n\n", req.PostCount, req.Topic))
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- Target tone: %s\n", req.Tone))
	sb.WriteString(fmt.Sprintf("- Audience focus: %s\n", req.Audience))
	if req.PostType != "" {
		sb.WriteString(fmt.Sprintf("- Post type preference: %s\n", req.PostType))
	}
	sb.WriteString("- Give each post a unique angle and value proposition\n\n")
	sb.WriteString("For each post provide, in at most three lines:\n")
	sb.WriteString("1. Main angle or hook\n")
	sb.WriteString("2. Key value proposition\n")
	sb.WriteString("3. Engagement strategy")

	return Prompt{
		Step:   StepOutline,
		System: "You are a LinkedIn content strategist. Answer with the plan only.",
		User:   sb.String(),
	}
}

// BuildGenerationPrompt asks for all posts in one reply, each introduced by
// a "Post N:" line so the reply can be split in order.
func BuildGenerationPrompt(req Request, outline string, lengths Lengths) Prompt {
	var sb strings.Builder
	sb.WriteString("CONTENT PLAN:\n")
	sb.WriteString(strings.TrimSpace(outline))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Write %d LinkedIn posts about %q following the plan above, one per planned angle.\n\n", req.PostCount, req.Topic))
	writeRequirements(&sb, req, lengths)
	sb.WriteString("\nFormat exactly like this, with nothing before the first post:\n")
	for i := 1; i <= req.PostCount && i <= 2; i++ {
		sb.WriteString(fmt.Sprintf("Post %d:\n<post text>\n\n", i))
	}
	if req.PostCount > 2 {
		sb.WriteString(fmt.Sprintf("...continue up to Post %d.\n", req.PostCount))
	}

	return Prompt{Step: StepGenerate, System: systemWriter, User: sb.String()}
}

// BuildSinglePostPrompt asks for exactly one post; used when the batch reply
// came back short.
func BuildSinglePostPrompt(req Request, outline string, index int, lengths Lengths) Prompt {
	var sb strings.Builder
	sb.WriteString("CONTENT PLAN:\n")
	sb.WriteString(strings.TrimSpace(outline))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Write post number %d of %d about %q following the plan above.\n\n", index+1, req.PostCount, req.Topic))
	writeRequirements(&sb, req, lengths)
	sb.WriteString("\nReturn only the post text.")

	return Prompt{Step: StepSingle, System: systemWriter, User: sb.String()}
}

// BuildRegenerationPrompt asks for a replacement of a post the content filter
// rejected, telling the model why.
func BuildRegenerationPrompt(req Request, rejected string, reasons []string, lengths Lengths) Prompt {
	var sb strings.Builder
	sb.WriteString("The following LinkedIn post was rejected by our content checks.\n\n")
	sb.WriteString("REJECTED POST:\n")
	sb.WriteString(strings.TrimSpace(rejected))
	sb.WriteString("\n\nREASONS:\n")
	for _, r := range reasons {
		sb.WriteString(fmt.Sprintf("- %s\n", r))
	}
	sb.WriteString(fmt.Sprintf("\nWrite a replacement post about %q that fixes every reason above.\n\n", req.Topic))
	writeRequirements(&sb, req, lengths)
	sb.WriteString("\nReturn only the post text.")

	return Prompt{Step: StepRegenerate, System: systemWriter, User: sb.String()}
}

// BuildHashtagPrompt asks for hashtags for one post.
func BuildHashtagPrompt(req Request, post string, count int) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate %d relevant LinkedIn hashtags for this post.\n\n", count))
	sb.WriteString(fmt.Sprintf("Topic: %s\n", req.Topic))
	sb.WriteString(fmt.Sprintf("Audience: %s\n", req.Audience))
	if req.PostType != "" {
		sb.WriteString(fmt.Sprintf("Post Type: %s\n", req.PostType))
	}
	sb.WriteString("\nPOST:\n")
	sb.WriteString(strings.TrimSpace(post))
	sb.WriteString("\n\nMix broad and specific tags that actually exist on LinkedIn and keep them professional.\n")
	sb.WriteString("Return only the hashtags, one per line, each starting with #.")

	t := lowTemperature
	return Prompt{
		Step:            StepHashtags,
		System:          "You are a LinkedIn growth specialist.",
		User:            sb.String(),
		Temperature:     &t,
		MaxOutputTokens: 128,
	}
}

func writeRequirements(sb *strings.Builder, req Request, lengths Lengths) {
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- Tone: %s\n", req.Tone))
	sb.WriteString(fmt.Sprintf("- Speak directly to %s\n", req.Audience))
	if req.PostType != "" {
		sb.WriteString(fmt.Sprintf("- Format: %s\n", req.PostType))
	}
	sb.WriteString("- Open with a one or two line hook\n")
	sb.WriteString("- Deliver actionable, concrete value\n")
	if req.IncludeCTA {
		sb.WriteString("- End with a clear call to action or question for the reader\n")
	}
	if lengths.Min > 0 && lengths.Max > lengths.Min {
		sb.WriteString(fmt.Sprintf("- Length: %d-%d characters\n", lengths.Min, lengths.Max))
	}
	sb.WriteString("- Do not include hashtags\n")
}
