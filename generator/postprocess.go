package generator

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultHashtagCount is the number of tags requested per post.
const DefaultHashtagCount = 5

var (
	// A header owns its whole line; "Post 3 times a week" inside a body is text.
	postHeaderRe = regexp.MustCompile(`(?mi)^[ \t]*(?:\*\*|#{1,6}[ \t]*)?post[ \t]*#?(\d+)[ \t]*[:.)\-]?[ \t]*(?:\*\*)?[ \t\r]*$`)
	hashtagRe    = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	placeholder  = regexp.MustCompile(`(?i)^\[content focused on[^\]]*\]\s*`)
)

// ParsePosts splits a batch reply into post bodies in the order the model
// numbered them. Headers such as "Post 2:", "**Post 2:**" or "## Post 2" must
// stand on their own line. Empty segments and preamble before the first header are
// dropped. A reply with no headers counts as a single post.
func ParsePosts(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	locs := postHeaderRe.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return []string{cleanPost(raw)}
	}

	var posts []string
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := cleanPost(raw[loc[1]:end])
		if body != "" {
			posts = append(posts, body)
		}
	}
	return posts
}

// CleanPost trims a single-post reply.
func CleanPost(raw string) string {
	locs := postHeaderRe.FindStringIndex(strings.TrimSpace(raw))
	if locs != nil && locs[0] == 0 {
		return cleanPost(strings.TrimSpace(raw)[locs[1]:])
	}
	return cleanPost(raw)
}

func cleanPost(s string) string {
	s = strings.TrimSpace(s)
	s = placeholder.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "---"))
	return s
}

// ParseHashtags extracts up to max unique hashtags, keeping the model's order.
// Duplicates are compared case-insensitively.
func ParseHashtags(raw string, max int) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, tag := range hashtagRe.FindAllString(raw, -1) {
		if len(tag) < 3 {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
		if max > 0 && len(tags) == max {
			break
		}
	}
	return tags
}

// FallbackHashtags builds a deterministic tag set from the topic, used when
// the model's reply contains no usable tags.
func FallbackHashtags(topic string, max int) []string {
	tags := []string{"#LinkedIn", "#Professional", "#Career", "#Business", "#Leadership"}
	if tag := topicTag(topic); tag != "" {
		tags = append([]string{tags[0], tag}, tags[1:]...)
	}
	if max > 0 && len(tags) > max {
		tags = tags[:max]
	}
	return tags
}

func topicTag(topic string) string {
	var sb strings.Builder
	for _, word := range strings.FieldsFunc(topic, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	if len([]rune(sb.String())) <= 3 {
		return ""
	}
	return "#" + sb.String()
}
