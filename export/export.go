// Package export renders generated posts for display and builds the bulk
// download files.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"linkedin_post_generator/generator"
)

// Format selects a bulk download layout.
type Format string

const (
	// FormatSeparate writes each post in its own labelled section.
	FormatSeparate Format = "txt"
	// FormatJSON writes an object keyed by post label.
	FormatJSON Format = "json"
	// FormatConcat writes the posts back to back.
	FormatConcat Format = "concat"
)

const stampLayout = "20060102_150405"

var separator = "\n\n" + strings.Repeat("=", 50) + "\n\n"

// ParseFormat accepts the values of the format query parameter. Empty means
// FormatSeparate.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatSeparate:
		return FormatSeparate, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatConcat:
		return FormatConcat, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Item is one labelled piece of content.
type Item struct {
	Label   string
	Content string
}

// Items labels posts in request order. Content is the plain-text body plus
// its hashtags, ready to paste.
func Items(posts []generator.Post) []Item {
	items := make([]Item, len(posts))
	for i, p := range posts {
		content := PlainText(p.Body)
		if len(p.Hashtags) > 0 {
			content += "\n\n" + strings.Join(p.Hashtags, " ")
		}
		items[i] = Item{Label: fmt.Sprintf("Post %d", p.Index+1), Content: content}
	}
	return items
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Build renders items in format f. now stamps the file name.
func Build(items []Item, f Format, now time.Time) (File, error) {
	stamp := now.Format(stampLayout)
	switch f {
	case FormatSeparate:
		sections := make([]string, len(items))
		for i, it := range items {
			sections[i] = strings.ToUpper(it.Label) + ":\n\n" + it.Content
		}
		return File{
			Name:        "all_content_" + stamp + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(strings.Join(sections, separator) + "\n"),
		}, nil

	case FormatJSON:
		obj := make(map[string]string, len(items))
		for _, it := range items {
			obj[it.Label] = it.Content
		}
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return File{}, err
		}
		return File{
			Name:        "content_data_" + stamp + ".json",
			ContentType: "application/json",
			Data:        data,
		}, nil

	case FormatConcat:
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.Content
		}
		return File{
			Name:        "concatenated_content_" + stamp + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(strings.Join(parts, "\n\n") + "\n"),
		}, nil
	}
	return File{}, fmt.Errorf("unknown export format %q", f)
}
