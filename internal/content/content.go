// Package content holds small helpers over stored markdown: plain-text
// extraction, reading time estimates, and excerpts for outbound payloads.
package content

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// wordsPerMinute is the reading speed assumed for estimates.
const wordsPerMinute = 200

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)

	stripPolicy = bluemonday.StrictPolicy()
)

// PlainText renders markdown and strips every tag, leaving readable text.
func PlainText(markdown string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &buf); err != nil {
		// Fall back to the raw source; an estimate is still better than nothing.
		return strings.TrimSpace(markdown)
	}
	return strings.TrimSpace(stripPolicy.Sanitize(buf.String()))
}

// ReadingTime estimates reading time in seconds at 200 wpm, minimum one
// minute for non-empty content.
func ReadingTime(markdown string) int {
	words := len(strings.Fields(PlainText(markdown)))
	if words == 0 {
		return 0
	}

	minutes := words / wordsPerMinute
	if words%wordsPerMinute != 0 {
		minutes++
	}
	return minutes * 60
}

// Excerpt returns the first maxLen runes of the plain text, cut at a word
// boundary with an ellipsis when truncated.
func Excerpt(markdown string, maxLen int) string {
	text := PlainText(markdown)
	if maxLen <= 0 || len([]rune(text)) <= maxLen {
		return text
	}

	runes := []rune(text)[:maxLen]
	cut := strings.LastIndexByte(string(runes), ' ')
	if cut <= 0 {
		return string(runes) + "…"
	}
	return string(runes)[:cut] + "…"
}
