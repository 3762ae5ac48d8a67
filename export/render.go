package export

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Posts are written one thought per line, so single newlines are kept as
// line breaks. Raw HTML from the model is never passed through.
var md = goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps()))

var (
	emphasisRe = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	headingRe  = regexp.MustCompile(`^#{1,6}[ \t]+`)
	bulletRe   = regexp.MustCompile(`^[ \t]*[-*+][ \t]+`)
	orderedRe  = regexp.MustCompile(`^[ \t]*(\d+)[.)][ \t]+`)
)

// MarkdownToHTML renders a post body for the results page.
func MarkdownToHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText turns light Markdown into text that pastes cleanly into the
// LinkedIn composer, which shows Markdown markers literally. Headings become
// plain lines, bullets become "•" and emphasis markers are dropped. Hashtags
// are left alone.
func PlainText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		line = headingRe.ReplaceAllString(line, "")
		if bulletRe.MatchString(line) {
			line = bulletRe.ReplaceAllString(line, "• ")
		} else {
			line = orderedRe.ReplaceAllString(line, "$1. ")
		}
		line = emphasisRe.ReplaceAllString(line, "$2")
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Preview collapses whitespace and cuts text to at most limit characters.
func Preview(text string, limit int) string {
	joined := strings.Join(strings.Fields(text), " ")
	runes := []rune(joined)
	if limit <= 0 || len(runes) <= limit {
		return joined
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
