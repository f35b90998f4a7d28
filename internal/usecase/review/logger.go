package review

import "context"

// Logger provides structured logging for the review use case. Nil loggers are
// tolerated everywhere; the orchestrator falls back to the standard log package.
type Logger interface {
	// LogWarning logs a warning message with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}
