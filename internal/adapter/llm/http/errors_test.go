package http_test

import (
	"errors"
	"fmt"
	"testing"

	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errType  llmhttp.ErrorType
		expected string
	}{
		{llmhttp.ErrTypeAuthentication, "authentication error"},
		{llmhttp.ErrTypeRateLimit, "rate limit exceeded"},
		{llmhttp.ErrTypeServiceUnavailable, "service unavailable"},
		{llmhttp.ErrTypeInvalidRequest, "invalid request"},
		{llmhttp.ErrTypeTimeout, "timeout"},
		{llmhttp.ErrTypeNotFound, "not found"},
		{llmhttp.ErrTypeContentFiltered, "content filtered"},
		{llmhttp.ErrTypeUnknown, "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errType.String())
		})
	}
}

func TestError_Error(t *testing.T) {
	err := llmhttp.NewRateLimitError("openai", "too many requests")
	assert.Equal(t, "openai: rate limit exceeded: too many requests (status: 429)", err.Error())
}

func TestError_Is_MatchesOnType(t *testing.T) {
	err := llmhttp.NewAuthenticationError("anthropic", "bad key")
	wrapped := fmt.Errorf("call failed: %w", err)

	assert.True(t, errors.Is(wrapped, &llmhttp.Error{Type: llmhttp.ErrTypeAuthentication}))
	assert.False(t, errors.Is(wrapped, &llmhttp.Error{Type: llmhttp.ErrTypeRateLimit}))
}

func TestError_As(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", llmhttp.NewServiceUnavailableError("gemini", "overloaded"))

	var httpErr *llmhttp.Error
	assert.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, 503, httpErr.StatusCode)
	assert.Equal(t, "gemini", httpErr.Provider)
}
