package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/anthropic"
	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() ledger.RequestOptions {
	return ledger.RequestOptions{
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   4096,
		Temperature: 0.2,
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthropic.MessagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
		assert.Equal(t, 4096, req.MaxTokens)
		assert.NotEmpty(t, req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "test prompt", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropic.MessagesResponse{
			Model:      "claude-sonnet-4-20250514",
			StopReason: "end_turn",
			Content: []anthropic.ContentBlock{
				{Type: "text", Text: "hello "},
				{Type: "text", Text: "world"},
			},
			Usage: anthropic.Usage{InputTokens: 120, OutputTokens: 30},
		})
	}))
	defer server.Close()

	client := anthropic.NewHTTPClient("test-api-key")
	client.SetBaseURL(server.URL)

	completion, err := client.Complete(context.Background(), "test prompt", testOptions())

	require.NoError(t, err)
	assert.Equal(t, "hello world", completion.Text)
	assert.Equal(t, "claude-sonnet-4-20250514", completion.Model)
	assert.Equal(t, 120, completion.TokensIn)
	assert.Equal(t, 30, completion.TokensOut)
	assert.True(t, completion.HasUsage)
}

func TestComplete_MaxTokensFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropic.MessagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Greater(t, req.MaxTokens, 0)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropic.MessagesResponse{
			Model:   "claude-sonnet-4-20250514",
			Content: []anthropic.ContentBlock{{Type: "text", Text: "ok"}},
		})
	}))
	defer server.Close()

	client := anthropic.NewHTTPClient("test-api-key")
	client.SetBaseURL(server.URL)

	opts := testOptions()
	opts.MaxTokens = 0
	_, err := client.Complete(context.Background(), "prompt", opts)

	require.NoError(t, err)
}

func TestComplete_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantType   llmhttp.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, llmhttp.ErrTypeAuthentication},
		{"rate limited", http.StatusTooManyRequests, llmhttp.ErrTypeRateLimit},
		{"bad request", http.StatusBadRequest, llmhttp.ErrTypeInvalidRequest},
		{"server error", http.StatusInternalServerError, llmhttp.ErrTypeServiceUnavailable},
		{"overloaded", 529, llmhttp.ErrTypeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(anthropic.ErrorResponse{
					Type:  "error",
					Error: anthropic.ErrorDetail{Type: "api_error", Message: "upstream says no"},
				})
			}))
			defer server.Close()

			client := anthropic.NewHTTPClient("test-api-key")
			client.SetBaseURL(server.URL)

			_, err := client.Complete(context.Background(), "prompt", testOptions())

			require.Error(t, err)
			var apiErr *llmhttp.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, "anthropic", apiErr.Provider)
		})
	}
}

func TestComplete_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropic.MessagesResponse{Model: "claude-sonnet-4-20250514"})
	}))
	defer server.Close()

	client := anthropic.NewHTTPClient("test-api-key")
	client.SetBaseURL(server.URL)

	_, err := client.Complete(context.Background(), "prompt", testOptions())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestName(t *testing.T) {
	assert.Equal(t, "anthropic", anthropic.NewHTTPClient("k").Name())
}
