package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin_post_generator/generator"
)

var stamp = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func samplePosts() []generator.Post {
	return []generator.Post{
		{Index: 0, Body: "**Hook** line\n- first\n- second", Hashtags: []string{"#RemoteWork", "#Teams"}},
		{Index: 1, Body: "Second post."},
	}
}

func TestItems(t *testing.T) {
	items := Items(samplePosts())
	require.Len(t, items, 2)
	assert.Equal(t, Item{Label: "Post 1", Content: "Hook line\n• first\n• second\n\n#RemoteWork #Teams"}, items[0])
	assert.Equal(t, Item{Label: "Post 2", Content: "Second post."}, items[1])
}

func TestBuild_Separate(t *testing.T) {
	f, err := Build(Items(samplePosts()), FormatSeparate, stamp)
	require.NoError(t, err)

	assert.Equal(t, "all_content_20250314_092653.txt", f.Name)
	assert.True(t, strings.HasPrefix(f.ContentType, "text/plain"))
	body := string(f.Data)
	assert.True(t, strings.HasPrefix(body, "POST 1:\n\nHook line"))
	assert.Contains(t, body, strings.Repeat("=", 50)+"\n\nPOST 2:\n\nSecond post.")
}

func TestBuild_JSON(t *testing.T) {
	f, err := Build(Items(samplePosts()), FormatJSON, stamp)
	require.NoError(t, err)
	assert.Equal(t, "content_data_20250314_092653.json", f.Name)
	assert.Equal(t, "application/json", f.ContentType)

	var got map[string]string
	require.NoError(t, json.Unmarshal(f.Data, &got))
	assert.Equal(t, "Second post.", got["Post 2"])
	assert.Len(t, got, 2)
}

func TestBuild_Concat(t *testing.T) {
	f, err := Build(Items(samplePosts()), FormatConcat, stamp)
	require.NoError(t, err)
	assert.Equal(t, "concatenated_content_20250314_092653.txt", f.Name)
	assert.Equal(t, "Hook line\n• first\n• second\n\n#RemoteWork #Teams\n\nSecond post.\n", string(f.Data))
}

func TestBuild_UnknownFormat(t *testing.T) {
	_, err := Build(nil, Format("pdf"), stamp)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{in: "", want: FormatSeparate, ok: true},
		{in: "txt", want: FormatSeparate, ok: true},
		{in: "JSON", want: FormatJSON, ok: true},
		{in: " concat ", want: FormatConcat, ok: true},
		{in: "xml", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkdownToHTML(t *testing.T) {
	out, err := MarkdownToHTML("**Big news**\nsecond line\n\n#Leadership")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Big news</strong><br>")
	assert.Contains(t, out, "<p>#Leadership</p>")
}

func TestMarkdownToHTML_DropsRawHTML(t *testing.T) {
	out, err := MarkdownToHTML("<script>alert(1)</script>\n\nhello")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>hello</p>")
}

func TestPlainText(t *testing.T) {
	in := "## Three lessons\n\n1) Write it down\n2. Share it  \n* __Measure__ weekly\n\n#Growth #Teams"
	want := "Three lessons\n\n1. Write it down\n2. Share it\n• Measure weekly\n\n#Growth #Teams"
	assert.Equal(t, want, PlainText(in))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", Preview("a\n\nb   c", 10))
	assert.Equal(t, "héllo…", Preview("héllo world", 5))
	assert.Equal(t, "héllo world", Preview("héllo world", 0))
}
