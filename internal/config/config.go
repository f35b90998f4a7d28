// Package config defines the application configuration and its loader.
package config

import (
	"fmt"
	"time"
)

// Known provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderStatic    = "static"
)

// Config represents the full application configuration.
type Config struct {
	// Provider selects the active AI provider.
	Provider  string                    `yaml:"provider"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	GitHub    GitHubConfig              `yaml:"github"`
	Webhook   WebhookConfig             `yaml:"webhook"`
	Review    ReviewConfig              `yaml:"review"`
	// Pricing maps model name to per-1K-token rates, overriding the built-in
	// pricing table.
	Pricing       map[string]PricingConfig `yaml:"pricing"`
	Store         StoreConfig              `yaml:"store"`
	Observability ObservabilityConfig      `yaml:"observability"`
}

// ProviderConfig configures a single AI provider.
type ProviderConfig struct {
	APIKey      string   `yaml:"apiKey"`
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"maxTokens"`
	Temperature *float64 `yaml:"temperature,omitempty"`

	// Timeout overrides the default HTTP timeout for this provider.
	Timeout *string `yaml:"timeout,omitempty"`
}

// WebhookConfig configures the inbound gateway.
type WebhookConfig struct {
	Secret string `yaml:"secret"`
	Path   string `yaml:"path"`
	Port   int    `yaml:"port"`
}

// ReviewConfig configures review behavior.
type ReviewConfig struct {
	// Instructions are custom instructions appended to every review prompt.
	Instructions string `yaml:"instructions"`

	// TestFramework names the framework test generation should target.
	TestFramework string `yaml:"testFramework"`

	// AutoGenerateTests enables test generation after each submitted review.
	AutoGenerateTests bool `yaml:"autoGenerateTests"`

	// BotUsername is the GitHub username whose review comments the service
	// answers when developers reply to them.
	BotUsername string `yaml:"botUsername"`
}

// PricingConfig is a per-model pricing override in USD per 1K tokens.
type PricingConfig struct {
	InputPer1K  float64 `yaml:"inputPer1K"`
	OutputPer1K float64 `yaml:"outputPer1K"`
}

// GitHubConfig configures the GitHub collaborator.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// StoreConfig configures the review-history audit store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Level         string `yaml:"level"`         // debug, info, error
	Format        string `yaml:"format"`        // json, human; empty = auto-detect
	RedactAPIKeys bool   `yaml:"redactAPIKeys"` // redact API keys in logs
}

// Validate checks the configuration for startup-blocking mistakes.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderStatic:
	case "":
		return fmt.Errorf("provider must be set")
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	active := c.Providers[c.Provider]
	if c.Provider != ProviderStatic && active.APIKey == "" {
		return fmt.Errorf("providers.%s.apiKey must be set", c.Provider)
	}
	if active.MaxTokens < 0 {
		return fmt.Errorf("providers.%s.maxTokens must not be negative", c.Provider)
	}
	if active.Temperature != nil && (*active.Temperature < 0 || *active.Temperature > 2) {
		return fmt.Errorf("providers.%s.temperature must be between 0 and 2", c.Provider)
	}
	if active.Timeout != nil {
		if d, err := time.ParseDuration(*active.Timeout); err != nil || d <= 0 {
			return fmt.Errorf("providers.%s.timeout must be a positive duration", c.Provider)
		}
	}

	if c.GitHub.Token == "" {
		return fmt.Errorf("github.token must be set")
	}

	if c.Webhook.Secret == "" {
		return fmt.Errorf("webhook.secret must be set")
	}
	if c.Webhook.Port <= 0 || c.Webhook.Port > 65535 {
		return fmt.Errorf("webhook.port must be between 1 and 65535")
	}

	for model, pricing := range c.Pricing {
		if pricing.InputPer1K < 0 || pricing.OutputPer1K < 0 {
			return fmt.Errorf("pricing.%s rates must not be negative", model)
		}
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("store.path must be set when the store is enabled")
	}

	return nil
}

// ActiveProvider returns the configuration of the selected provider.
func (c Config) ActiveProvider() ProviderConfig {
	return c.Providers[c.Provider]
}
