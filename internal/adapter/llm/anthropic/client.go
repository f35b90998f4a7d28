// Package anthropic implements the completion client for Anthropic's
// Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm"
	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/ledger"
)

const (
	providerName     = "anthropic"
	defaultBaseURL   = "https://api.anthropic.com"
	defaultTimeout   = 60 * time.Second
	anthropicVersion = "2023-06-01"

	// The Messages API requires max_tokens; used when the resolved options
	// carry none.
	fallbackMaxTokens = 4096

	systemPrompt = "You are an expert code reviewer. Follow the instructions in the request and answer in the requested format."
)

// HTTPClient is the HTTP client for the Anthropic Messages API.
type HTTPClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ llm.Completer = (*HTTPClient)(nil)

// NewHTTPClient creates a new Anthropic client.
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

// Complete performs a single request to the Messages endpoint.
func (c *HTTPClient) Complete(ctx context.Context, prompt string, opts ledger.RequestOptions) (*llm.Completion, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = fallbackMaxTokens
	}

	reqBody := MessagesRequest{
		Model:       opts.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		System:      systemPrompt,
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

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

	var msgResp MessagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(msgResp.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	var text strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &llm.Completion{
		Text:      text.String(),
		Model:     msgResp.Model,
		Raw:       string(body),
		TokensIn:  msgResp.Usage.InputTokens,
		TokensOut: msgResp.Usage.OutputTokens,
		HasUsage:  msgResp.Usage.InputTokens > 0 || msgResp.Usage.OutputTokens > 0,
	}, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
// Anthropic returns 529 when the API is overloaded; it maps to the same
// category as the standard 5xx statuses.
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
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, 529:
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
