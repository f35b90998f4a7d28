package http

import "time"

// ParseTimeout parses timeout with fallback chain: provider override > global > default.
// Negative durations are rejected (would cause runtime panic in http.Client.Timeout).
func ParseTimeout(providerOverride *string, globalTimeout string, defaultVal time.Duration) time.Duration {
	if providerOverride != nil && *providerOverride != "" {
		if d, err := time.ParseDuration(*providerOverride); err == nil && d >= 0 {
			return d
		}
	}

	if globalTimeout != "" {
		if d, err := time.ParseDuration(globalTimeout); err == nil && d >= 0 {
			return d
		}
	}

	if defaultVal < 0 {
		return 60 * time.Second
	}
	return defaultVal
}
