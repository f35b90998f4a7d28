// Package openai implements the completion client for OpenAI's Chat
// Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm"
	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/ledger"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com"
	defaultTimeout = 60 * time.Second

	systemPrompt = "You are an expert code reviewer. Follow the instructions in the request and answer in the requested format."
)

// HTTPClient is the HTTP client for the OpenAI Chat Completions API.
type HTTPClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ llm.Completer = (*HTTPClient)(nil)

// NewHTTPClient creates a new OpenAI client.
func NewHTTPClient(apiKey string) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Name identifies the vendor.
func (c *HTTPClient) Name() string {
	return providerName
}

// Complete performs a single request to the Chat Completions endpoint.
func (c *HTTPClient) Complete(ctx context.Context, prompt string, opts ledger.RequestOptions) (*llm.Completion, error) {
	reqBody := ChatCompletionRequest{
		Model: opts.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, llmhttp.NewTimeoutError(providerName, "request timed out")
		}
		return nil, llmhttp.NewTimeoutError(providerName, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &llm.Completion{
		Text:      chatResp.Choices[0].Message.Content,
		Model:     chatResp.Model,
		Raw:       string(body),
		TokensIn:  chatResp.Usage.PromptTokens,
		TokensOut: chatResp.Usage.CompletionTokens,
		HasUsage:  chatResp.Usage.TotalTokens > 0,
	}, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	} else if len(body) > 0 && len(body) < 200 {
		message = string(body)
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return llmhttp.NewAuthenticationError(providerName, message)
	case http.StatusTooManyRequests:
		return llmhttp.NewRateLimitError(providerName, message)
	case http.StatusBadRequest:
		return llmhttp.NewInvalidRequestError(providerName, message)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return llmhttp.NewServiceUnavailableError(providerName, message)
	default:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	}
}
