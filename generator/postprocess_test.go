package generator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParsePosts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "  \n", want: nil},
		{name: "no headers", raw: "Just one post.\nWith two lines.", want: []string{"Just one post.\nWith two lines."}},
		{name: "plain headers", raw: "Post 1:\nFirst\n\nPost 2:\nSecond", want: []string{"First", "Second"}},
		{name: "preamble dropped", raw: "Sure! Here you go.\n\nPost 1:\nFirst\nPost 2:\nSecond", want: []string{"First", "Second"}},
		{name: "bold headers", raw: "**Post 1:**\nFirst\n**Post 2:**\nSecond", want: []string{"First", "Second"}},
		{name: "markdown headings", raw: "## Post 1\nFirst\n### Post 2\nSecond", want: []string{"First", "Second"}},
		{name: "empty segment skipped", raw: "Post 1:\n\nPost 2:\nSecond", want: []string{"Second"}},
		{name: "separator trimmed", raw: "Post 1:\nFirst\n---\nPost 2:\nSecond\n---", want: []string{"First", "Second"}},
		{name: "placeholder stripped", raw: "Post 1:\n[Content focused on trending angle #1]\nFirst", want: []string{"First"}},
		{
			name: "body line starting with post and a number",
			raw:  "Post 1:\nConsistency beats virality.\nPost 3 times a week and watch what happens.\n\nPost 2:\nSecond post body here.",
			want: []string{"Consistency beats virality.\nPost 3 times a week and watch what happens.", "Second post body here."},
		},
		{name: "crlf headers", raw: "Post 1:\r\nFirst\r\nPost 2:\r\nSecond", want: []string{"First", "Second"}},
		{name: "mid-line mention ignored", raw: "Post 1:\nRead my post 2 from last week.", want: []string{"Read my post 2 from last week."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParsePosts(tt.raw)); diff != "" {
				t.Errorf("ParsePosts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCleanPost(t *testing.T) {
	assert.Equal(t, "Body", CleanPost("Post 3:\nBody\n"))
	assert.Equal(t, "Body", CleanPost("  Body  "))
	assert.Empty(t, CleanPost("   "))
	assert.Equal(t, "Post 2 times a week.", CleanPost("Post 2 times a week."))
}

func TestParseHashtags(t *testing.T) {
	raw := "Here are some:\n#Leadership\n#leadership\n#AI #Remote_Work, #a\n#Growth #Teams #Extra"

	assert.Equal(t, []string{"#Leadership", "#AI", "#Remote_Work", "#Growth", "#Teams"}, ParseHashtags(raw, 5))
	assert.Equal(t, []string{"#Leadership", "#AI"}, ParseHashtags(raw, 2))
	assert.Len(t, ParseHashtags(raw, 0), 6)
	assert.Empty(t, ParseHashtags("no tags at all", 5))
}

func TestFallbackHashtags(t *testing.T) {
	assert.Equal(t,
		[]string{"#LinkedIn", "#RemoteWorkProductivity", "#Professional", "#Career", "#Business"},
		FallbackHashtags("remote work productivity", 5))

	assert.Equal(t,
		[]string{"#LinkedIn", "#Professional", "#Career", "#Business", "#Leadership"},
		FallbackHashtags("ai", 5))

	assert.Len(t, FallbackHashtags("remote work", 3), 3)
	assert.Len(t, FallbackHashtags("remote work", 0), 6)
}
