package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/cli"
	githubadapter "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/github"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/anthropic"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/gemini"
	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/openai"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/static"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/observability"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/store/sqlite"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/webhook"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/config"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/usecase/review"
)

// version is set at build time via -ldflags.
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "professor",
		EnvPrefix:   "PROFESSOR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := buildLogger(cfg.Observability.Logging)
	reviewLogger := observability.NewReviewLogger(logger)

	completer, model, err := buildCompleter(ctx, cfg)
	if err != nil {
		return err
	}

	active := cfg.ActiveProvider()
	var temperature float64
	if active.Temperature != nil {
		temperature = *active.Temperature
	}

	aiService := llm.NewService(completer, llm.ServiceConfig{
		Model:         model,
		MaxTokens:     active.MaxTokens,
		Temperature:   temperature,
		Pricing:       llm.MergePricing(llm.DefaultPricingTable(), pricingOverrides(cfg.Pricing)),
		TestFramework: cfg.Review.TestFramework,
		Instructions:  cfg.Review.Instructions,
		Logger:        logger,
	})

	githubClient := githubadapter.NewClient(cfg.GitHub.Token, cfg.Review.BotUsername)

	// Audit store is best-effort: a broken store disables auditing but never
	// blocks reviews.
	var reviewStore review.Store
	if cfg.Store.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else if sqliteStore, err := sqlite.NewStore(cfg.Store.Path); err != nil {
			log.Printf("warning: failed to initialize store: %v", err)
		} else {
			defer sqliteStore.Close()
			reviewStore = sqliteStore
		}
	}

	orchestrator := review.NewOrchestrator(review.Deps{
		GitHub: githubClient,
		AI:     aiService,
		Logger: reviewLogger,
		Store:  reviewStore,
	})

	gateway := webhook.NewServer(webhook.Config{
		Secret:            cfg.Webhook.Secret,
		Path:              cfg.Webhook.Path,
		AutoGenerateTests: cfg.Review.AutoGenerateTests,
	}, orchestrator, reviewLogger)

	root := cli.NewRootCommand(cli.Dependencies{
		Gateway:     &gatewayRunner{gateway: gateway},
		DefaultPort: cfg.Webhook.Port,
		Version:     version,
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// buildCompleter constructs the vendor client for the configured provider.
// For Gemini with no configured model, the model is resolved from the vendor's
// model listing at startup.
func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, string, error) {
	active := cfg.ActiveProvider()
	timeout := llmhttp.ParseTimeout(active.Timeout, "", 60*time.Second)

	switch cfg.Provider {
	case config.ProviderOpenAI:
		client := openai.NewHTTPClient(active.APIKey)
		client.SetTimeout(timeout)
		return client, active.Model, nil

	case config.ProviderAnthropic:
		client := anthropic.NewHTTPClient(active.APIKey)
		client.SetTimeout(timeout)
		return client, active.Model, nil

	case config.ProviderGemini:
		client := gemini.NewHTTPClient(active.APIKey)
		client.SetTimeout(timeout)
		model := active.Model
		if model == "" {
			resolved, err := client.ResolveModel(ctx)
			if err != nil {
				return nil, "", fmt.Errorf("resolve gemini model: %w", err)
			}
			model = resolved
		}
		return client, model, nil

	case config.ProviderStatic:
		return static.New(""), active.Model, nil

	default:
		return nil, "", fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// pricingOverrides converts config pricing entries to a pricing table.
func pricingOverrides(entries map[string]config.PricingConfig) llm.PricingTable {
	if len(entries) == 0 {
		return nil
	}
	table := make(llm.PricingTable, len(entries))
	for model, rates := range entries {
		table[model] = llm.ModelPricing{
			InputPer1K:  rates.InputPer1K,
			OutputPer1K: rates.OutputPer1K,
		}
	}
	return table
}

func buildLogger(cfg config.LoggingConfig) llmhttp.Logger {
	level := llmhttp.ParseLogLevel(cfg.Level)
	format := llmhttp.ParseLogFormat(cfg.Format)
	return llmhttp.NewDefaultLogger(level, format, cfg.RedactAPIKeys)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "professor"))
	}
	return paths
}

// gatewayRunner serves the webhook gateway over HTTP and drains in-flight
// review work on shutdown.
type gatewayRunner struct {
	gateway *webhook.Server
}

func (r *gatewayRunner) Run(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r.gateway.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Printf("webhook gateway listening on :%d", port)

	select {
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("webhook server shutdown: %w", err)
	}

	// Wait for dispatched review work to finish before exiting.
	r.gateway.Wait()
	return nil
}

var _ cli.GatewayRunner = (*gatewayRunner)(nil)
var _ review.GitHub = (*githubadapter.Client)(nil)
var _ review.Store = (*sqlite.Store)(nil)
var _ llm.Capability = (*llm.Service)(nil)
var _ webhook.Reviewer = (*review.Orchestrator)(nil)
