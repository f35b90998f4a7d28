package http

import (
	"regexp"
	"strings"
)

var (
	// Matches a single leading/trailing fenced code block. The greedy body
	// match runs to the LAST closing backticks so that code examples nested
	// inside the JSON (review suggestions often contain fenced snippets) do
	// not truncate the extraction. Only one strip is performed; responses
	// with multiple separate fences are not supported.
	jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")
)

// ExtractJSONFromMarkdown strips a single markdown code fence from around the
// text, if present, and returns the trimmed content. Text without a fence is
// returned trimmed as-is, since it may already be raw JSON.
func ExtractJSONFromMarkdown(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}
