// Package gemini implements the completion client for Google's Gemini
// generateContent API.
package gemini

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
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultTimeout = 60 * time.Second
)

// HTTPClient is the HTTP client for the Gemini API. The API key travels in the
// URL query string, so error messages pass through RedactURLSecrets before
// they reach logs.
type HTTPClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ llm.Completer = (*HTTPClient)(nil)

// NewHTTPClient creates a new Gemini client.
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

// ResolveModel lists the available models and returns the first one that
// supports generateContent. Used at wiring time when no Gemini model is
// configured.
func (c *HTTPClient) ResolveModel(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", llmhttp.NewTimeoutError(providerName, llmhttp.RedactURLSecrets(err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp.StatusCode, body)
	}

	var listResp ListModelsResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	for _, model := range listResp.Models {
		for _, method := range model.SupportedGenerationMethods {
			if method == "generateContent" {
				return strings.TrimPrefix(model.Name, "models/"), nil
			}
		}
	}
	return "", fmt.Errorf("no model supporting generateContent available")
}

// Complete performs a single request to the generateContent endpoint.
func (c *HTTPClient) Complete(ctx context.Context, prompt string, opts ledger.RequestOptions) (*llm.Completion, error) {
	reqBody := GenerateContentRequest{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
		SafetySettings: []SafetySetting{
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
		},
	}
	if opts.Temperature > 0 || opts.MaxTokens > 0 {
		reqBody.GenerationConfig = &GenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
			CandidateCount:  1,
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, opts.Model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, llmhttp.NewTimeoutError(providerName, "request timed out")
		}
		return nil, llmhttp.NewTimeoutError(providerName, llmhttp.RedactURLSecrets(err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var genResp GenerateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := genResp.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return nil, llmhttp.NewContentFilteredError(providerName, "content blocked by safety filters")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	return &llm.Completion{
		Text:      text.String(),
		Model:     opts.Model,
		Raw:       string(body),
		TokensIn:  genResp.UsageMetadata.PromptTokenCount,
		TokensOut: genResp.UsageMetadata.CandidatesTokenCount,
		HasUsage:  genResp.UsageMetadata.TotalTokenCount > 0,
	}, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}
	message = llmhttp.RedactURLSecrets(message)

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
