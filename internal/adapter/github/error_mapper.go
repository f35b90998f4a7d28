package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
)

const providerName = "github"

// MapHTTPError maps GitHub API HTTP status codes to the shared typed error
// taxonomy so callers handle GitHub failures the same way as provider failures.
func MapHTTPError(statusCode int, body []byte) *llmhttp.Error {
	message := parseErrorMessage(statusCode, body)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeAuthentication,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	case http.StatusTooManyRequests:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeRateLimit,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	case http.StatusNotFound:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeNotFound,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	case http.StatusUnprocessableEntity:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeInvalidRequest,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	default:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Provider:   providerName,
		}
	}
}

// parseErrorMessage extracts a user-friendly message from GitHub's error body.
func parseErrorMessage(statusCode int, body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		preview := string(body)
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		if preview == "" {
			return fmt.Sprintf("HTTP %d", statusCode)
		}
		return fmt.Sprintf("HTTP %d: %s", statusCode, preview)
	}

	if errResp.Message == "" {
		return fmt.Sprintf("HTTP %d", statusCode)
	}

	if len(errResp.Errors) > 0 {
		var details []string
		for _, e := range errResp.Errors {
			if e.Message != "" {
				details = append(details, e.Message)
			} else if e.Field != "" {
				details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Code))
			}
		}
		if len(details) > 0 {
			return fmt.Sprintf("%s: %s", errResp.Message, strings.Join(details, "; "))
		}
	}

	return errResp.Message
}
