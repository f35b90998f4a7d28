package http

import (
	"fmt"
	"regexp"
)

const (
	// MaxLoggedResponseLength is the maximum length of response text to
	// include in logs. Longer responses are truncated so user source code
	// does not end up in log aggregators wholesale.
	MaxLoggedResponseLength = 200
)

// TruncateForLogging safely truncates a response string for logging purposes.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var urlSecretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`key=([^&"\s]+)`),
	regexp.MustCompile(`apiKey=([^&"\s]+)`),
	regexp.MustCompile(`api_key=([^&"\s]+)`),
	regexp.MustCompile(`token=([^&"\s]+)`),
	regexp.MustCompile(`access_token=([^&"\s]+)`),
}

// RedactURLSecrets redacts API keys and other secrets embedded in URLs before
// they appear in error messages or logs. Gemini in particular passes the API
// key as a query parameter, so an unredacted error message would leak it.
//
// Example:
//
//	input:  "https://api.example.com/endpoint?key=secret123&foo=bar"
//	output: "https://api.example.com/endpoint?key=[REDACTED]&foo=bar"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, re := range urlSecretPatterns {
		paramName := re.String()[:len(re.String())-len(`=([^&"\s]+)`)]
		result = re.ReplaceAllString(result, paramName+"=[REDACTED]")
	}
	return result
}
