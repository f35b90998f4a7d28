package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"
)

// Logger provides structured logging for API calls and application events.
// It is injected into every component at construction; there is no process-wide
// logger singleton.
type Logger interface {
	// LogRequest logs an outgoing API request (API key redacted).
	LogRequest(ctx context.Context, req RequestLog)

	// LogResponse logs an API response with timing and token info.
	LogResponse(ctx context.Context, resp ResponseLog)

	// LogError logs an API error.
	LogError(ctx context.Context, err ErrorLog)

	// LogInfo logs an informational application event with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})

	// LogWarning logs a warning with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// RequestLog contains request information for logging.
type RequestLog struct {
	Provider     string
	Model        string
	Timestamp    time.Time
	PromptChars  int
	PromptTokens int // Estimated; vendors report exact usage only on response
	APIKey       string
}

// ResponseLog contains response information for logging.
type ResponseLog struct {
	Provider  string
	Model     string
	Timestamp time.Time
	Duration  time.Duration
	TokensIn  int
	TokensOut int
	Cost      float64
}

// ErrorLog contains error information for logging.
type ErrorLog struct {
	Provider  string
	Model     string
	Timestamp time.Time
	Duration  time.Duration
	Error     error
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// ParseLogLevel maps a config string to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// ParseLogFormat maps a config string to a LogFormat. An empty string picks
// human output on a terminal and JSON otherwise, so service deployments get
// machine-parseable logs without configuration.
func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "human":
		return LogFormatHuman
	case "json":
		return LogFormatJSON
	default:
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return LogFormatHuman
		}
		return LogFormatJSON
	}
}

// DefaultLogger writes logs in structured format via the standard log package.
type DefaultLogger struct {
	level      LogLevel
	format     LogFormat
	redactKeys bool
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat, redactKeys bool) *DefaultLogger {
	return &DefaultLogger{
		level:      level,
		format:     format,
		redactKeys: redactKeys,
	}
}

// LogRequest logs an API request at debug level.
func (l *DefaultLogger) LogRequest(ctx context.Context, req RequestLog) {
	if l.level > LogLevelDebug {
		return
	}

	redacted := l.RedactAPIKey(req.APIKey)

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"debug","type":"request","provider":"%s","model":"%s","timestamp":"%s","prompt_chars":%d,"prompt_tokens":%d,"api_key":"%s"}`,
			req.Provider, req.Model, req.Timestamp.Format(time.RFC3339),
			req.PromptChars, req.PromptTokens, redacted)
	} else {
		log.Printf("[DEBUG] %s/%s: request sent (prompt=%d chars, ~%d tokens, key=%s)",
			req.Provider, req.Model, req.PromptChars, req.PromptTokens, redacted)
	}
}

// LogResponse logs an API response at info level.
func (l *DefaultLogger) LogResponse(ctx context.Context, resp ResponseLog) {
	if l.level > LogLevelInfo {
		return
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"info","type":"response","provider":"%s","model":"%s","timestamp":"%s","duration_ms":%d,"tokens_in":%d,"tokens_out":%d,"cost":%.6f}`,
			resp.Provider, resp.Model, resp.Timestamp.Format(time.RFC3339),
			resp.Duration.Milliseconds(), resp.TokensIn, resp.TokensOut, resp.Cost)
	} else {
		log.Printf("[INFO] %s/%s: response received (duration=%.1fs, tokens=%d/%d, cost=$%.4f)",
			resp.Provider, resp.Model, resp.Duration.Seconds(),
			resp.TokensIn, resp.TokensOut, resp.Cost)
	}
}

// LogError logs an API error.
func (l *DefaultLogger) LogError(ctx context.Context, errLog ErrorLog) {
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"error","type":"error","provider":"%s","model":"%s","timestamp":"%s","duration_ms":%d,"error":%s}`,
			errLog.Provider, errLog.Model, errLog.Timestamp.Format(time.RFC3339),
			errLog.Duration.Milliseconds(), jsonString(errLog.Error.Error()))
	} else {
		log.Printf("[ERROR] %s/%s: API call failed: %v", errLog.Provider, errLog.Model, errLog.Error)
	}
}

// LogInfo logs an application event at info level.
func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.logEvent("info", "[INFO]", message, fields)
}

// LogWarning logs a warning.
func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logEvent("warn", "[WARN]", message, fields)
}

func (l *DefaultLogger) logEvent(jsonLevel, humanLevel, message string, fields map[string]interface{}) {
	if l.format == LogFormatJSON {
		payload := map[string]interface{}{
			"level":   jsonLevel,
			"type":    "event",
			"message": message,
		}
		for k, v := range fields {
			payload[k] = v
		}
		if b, err := json.Marshal(payload); err == nil {
			log.Print(string(b))
			return
		}
	}
	log.Printf("%s %s%s", humanLevel, message, formatFields(fields))
}

// RedactAPIKey shows only the last 4 characters of an API key with explicit
// redaction markers.
func (l *DefaultLogger) RedactAPIKey(key string) string {
	if !l.redactKeys {
		return key
	}
	if len(key) <= 4 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("[REDACTED-%s]", key[len(key)-4:])
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `"?"`
	}
	return string(b)
}

// NopLogger discards all log output. Useful as a default when no logger is injected.
type NopLogger struct{}

func (NopLogger) LogRequest(context.Context, RequestLog)                       {}
func (NopLogger) LogResponse(context.Context, ResponseLog)                     {}
func (NopLogger) LogError(context.Context, ErrorLog)                           {}
func (NopLogger) LogInfo(context.Context, string, map[string]interface{})      {}
func (NopLogger) LogWarning(context.Context, string, map[string]interface{})   {}
