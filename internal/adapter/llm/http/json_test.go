package http_test

import (
	"testing"

	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/stretchr/testify/assert"
)

func TestExtractJSONFromMarkdown_JSONFence(t *testing.T) {
	text := "```json\n{\"summary\": \"fine\"}\n```"
	assert.Equal(t, `{"summary": "fine"}`, llmhttp.ExtractJSONFromMarkdown(text))
}

func TestExtractJSONFromMarkdown_PlainFence(t *testing.T) {
	text := "```\n{\"approved\": true}\n```"
	assert.Equal(t, `{"approved": true}`, llmhttp.ExtractJSONFromMarkdown(text))
}

func TestExtractJSONFromMarkdown_NoFence(t *testing.T) {
	text := "  {\"approved\": false}  "
	assert.Equal(t, `{"approved": false}`, llmhttp.ExtractJSONFromMarkdown(text))
}

func TestExtractJSONFromMarkdown_NestedFence(t *testing.T) {
	// Greedy match extends to the outermost closing backticks so fenced code
	// examples inside comment bodies survive extraction.
	text := "```json\n{\"body\": \"use ```go\\nfoo()\\n``` instead\"}\n```"
	assert.Equal(t, "{\"body\": \"use ```go\\nfoo()\\n``` instead\"}", llmhttp.ExtractJSONFromMarkdown(text))
}

func TestExtractJSONFromMarkdown_SurroundingProse(t *testing.T) {
	text := "Here is the review:\n```json\n{\"summary\": \"ok\"}\n```"
	assert.Equal(t, `{"summary": "ok"}`, llmhttp.ExtractJSONFromMarkdown(text))
}
