package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	ConfigPaths []string
	FileName    string
	EnvPrefix   string
}

// Load returns the merged configuration from files and environment variables.
func Load(opts LoaderOptions) (Config, error) {
	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = "professor"
	}

	configFile := locateConfigFile(name, opts.ConfigPaths)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(name)
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "PROFESSOR"
	}
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return expandEnvVars(cfg), nil
}

// expandEnvVars expands ${VAR} and $VAR syntax in configuration strings so
// secrets can live in the environment while the YAML stays committable.
func expandEnvVars(cfg Config) Config {
	for name, provider := range cfg.Providers {
		provider.APIKey = expandEnvString(provider.APIKey)
		provider.Model = expandEnvString(provider.Model)
		if provider.Timeout != nil {
			timeout := expandEnvString(*provider.Timeout)
			provider.Timeout = &timeout
		}
		cfg.Providers[name] = provider
	}

	cfg.GitHub.Token = expandEnvString(cfg.GitHub.Token)
	cfg.Webhook.Secret = expandEnvString(cfg.Webhook.Secret)
	cfg.Webhook.Path = expandEnvString(cfg.Webhook.Path)
	cfg.Review.Instructions = expandEnvString(cfg.Review.Instructions)
	cfg.Review.BotUsername = expandEnvString(cfg.Review.BotUsername)
	cfg.Store.Path = expandEnvString(cfg.Store.Path)
	cfg.Observability.Logging.Level = expandEnvString(cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = expandEnvString(cfg.Observability.Logging.Format)

	return cfg
}

// expandEnvString replaces ${VAR} or $VAR with environment variable values.
// Unset variables are left verbatim.
func expandEnvString(s string) string {
	if s == "" {
		return s
	}

	re := regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})

	re = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[1:]); val != "" {
			return val
		}
		return match
	})

	return s
}

func locateConfigFile(name string, paths []string) string {
	searchPaths := append([]string{}, paths...)
	searchPaths = append(searchPaths, ".")
	for _, dir := range searchPaths {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name+".yaml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderStatic)

	v.SetDefault("providers.openai.model", "gpt-4o")
	v.SetDefault("providers.openai.maxTokens", 4096)
	v.SetDefault("providers.anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("providers.anthropic.maxTokens", 4096)
	v.SetDefault("providers.gemini.maxTokens", 4096)
	v.SetDefault("providers.static.model", "static-v1")

	v.SetDefault("webhook.path", "/webhook")
	v.SetDefault("webhook.port", 3000)

	v.SetDefault("review.testFramework", "jest")
	v.SetDefault("review.autoGenerateTests", false)
	v.SetDefault("review.botUsername", "github-actions[bot]")

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", defaultStorePath())

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "")
	v.SetDefault("observability.logging.redactAPIKeys", true)
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./reviews.db"
	}
	return filepath.Join(home, ".config", "professor", "reviews.db")
}
