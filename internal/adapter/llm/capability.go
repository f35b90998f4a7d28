package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/domain"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/ledger"
)

// ServiceConfig carries the construction-time settings shared by all vendor variants.
type ServiceConfig struct {
	Model         string
	MaxTokens     int
	Temperature   float64
	Pricing       PricingTable
	TestFramework string
	Instructions  string
	Logger        llmhttp.Logger
}

// Service implements Capability over any vendor Completer. The vendor-specific
// variants differ only in their Completer; option merging, request accounting,
// cost computation, prompt construction and response parsing are identical
// across all of them.
type Service struct {
	completer     Completer
	defaults      ledger.RequestOptions
	pricing       PricingTable
	testFramework string
	instructions  string
	logger        llmhttp.Logger
	ledger        *ledger.Ledger
}

// NewService constructs a capability around the given completer.
func NewService(completer Completer, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = llmhttp.NopLogger{}
	}
	framework := cfg.TestFramework
	if framework == "" {
		framework = "the standard testing framework for the file's language"
	}

	return &Service{
		completer: completer,
		defaults: ledger.RequestOptions{
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		},
		pricing:       cfg.Pricing,
		testFramework: framework,
		instructions:  cfg.Instructions,
		logger:        logger,
		ledger:        ledger.New(),
	}
}

// resolve merges caller options over the instance defaults. A caller-supplied
// model or token limit always wins.
func (s *Service) resolve(opts *RequestOptions) ledger.RequestOptions {
	resolved := s.defaults
	if opts == nil {
		return resolved
	}
	if opts.Model != "" {
		resolved.Model = opts.Model
	}
	if opts.MaxTokens > 0 {
		resolved.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		resolved.Temperature = *opts.Temperature
	}
	return resolved
}

// GenerateResponse performs one completion attempt and appends exactly one
// ledger record, success or failure. It never fails out-of-band: every vendor
// error is converted into a Response with Success=false.
func (s *Service) GenerateResponse(ctx context.Context, prompt string, opts *RequestOptions) Response {
	resolved := s.resolve(opts)
	start := time.Now()

	s.logger.LogRequest(ctx, llmhttp.RequestLog{
		Provider:     s.completer.Name(),
		Model:        resolved.Model,
		Timestamp:    start,
		PromptChars:  len(prompt),
		PromptTokens: EstimateTokens(prompt),
	})

	completion, err := s.completer.Complete(ctx, prompt, resolved)
	latency := time.Since(start)

	if err != nil {
		s.ledger.Append(ledger.CallRecord{
			Timestamp: start,
			Prompt:    prompt,
			Options:   resolved,
			Success:   false,
			Latency:   latency,
			Error:     err.Error(),
		})
		s.logger.LogError(ctx, llmhttp.ErrorLog{
			Provider:  s.completer.Name(),
			Model:     resolved.Model,
			Timestamp: time.Now(),
			Duration:  latency,
			Error:     err,
		})
		return Response{Success: false, Err: err}
	}

	record := ledger.CallRecord{
		Timestamp:   start,
		Prompt:      prompt,
		Options:     resolved,
		Success:     true,
		Latency:     latency,
		RawResponse: completion.Raw,
	}

	var cost float64
	if completion.HasUsage {
		tokensIn := completion.TokensIn
		tokensOut := completion.TokensOut
		total := tokensIn + tokensOut
		record.TokensIn = &tokensIn
		record.TokensOut = &tokensOut
		record.TotalTokens = &total

		if c, ok := s.pricing.Cost(resolved.Model, tokensIn, tokensOut); ok {
			cost = c
			record.Cost = &cost
		}
	}

	s.ledger.Append(record)

	s.logger.LogResponse(ctx, llmhttp.ResponseLog{
		Provider:  s.completer.Name(),
		Model:     resolved.Model,
		Timestamp: time.Now(),
		Duration:  latency,
		TokensIn:  completion.TokensIn,
		TokensOut: completion.TokensOut,
		Cost:      cost,
	})

	return Response{Content: completion.Text, Success: true, Raw: completion.Raw}
}

// ReviewPullRequest sends the changed files through the review prompt and
// parses the JSON review. Failures are propagated, never swallowed: the caller
// decides how to degrade.
func (s *Service) ReviewPullRequest(ctx context.Context, files []domain.ReviewFile) (domain.CodeReview, error) {
	prompt := buildReviewPrompt(files, s.instructions)
	resp := s.GenerateResponse(ctx, prompt, nil)
	if !resp.Success {
		return domain.CodeReview{}, fmt.Errorf("review request failed: %w", resp.Err)
	}

	jsonText := llmhttp.ExtractJSONFromMarkdown(resp.Content)

	var review domain.CodeReview
	if err := json.Unmarshal([]byte(jsonText), &review); err != nil {
		return domain.CodeReview{}, fmt.Errorf("Failed to parse response as JSON: %w", err)
	}

	return review, nil
}

// GenerateTests returns the raw generated test code, unmodified.
func (s *Service) GenerateTests(ctx context.Context, filePath, fileContent string) (string, error) {
	prompt := buildTestPrompt(s.testFramework, filePath, fileContent)
	resp := s.GenerateResponse(ctx, prompt, nil)
	if !resp.Success {
		return "", fmt.Errorf("test generation failed: %w", resp.Err)
	}
	return resp.Content, nil
}

// RespondToComment answers a developer's reply to a review comment.
func (s *Service) RespondToComment(ctx context.Context, userComment, codeContext string) (string, error) {
	prompt := buildCommentPrompt(userComment, codeContext)
	resp := s.GenerateResponse(ctx, prompt, nil)
	if !resp.Success {
		return "", fmt.Errorf("comment response failed: %w", resp.Err)
	}
	return resp.Content, nil
}

// Requests returns a copy of all call records in insertion order.
func (s *Service) Requests() []ledger.CallRecord {
	return s.ledger.Records()
}

// ClearRequests empties the ledger.
func (s *Service) ClearRequests() {
	s.ledger.Clear()
}

// UsageAnalytics aggregates the ledger, optionally date-scoped (inclusive bounds).
func (s *Service) UsageAnalytics(start, end *time.Time) ledger.UsageAnalytics {
	return s.ledger.UsageAnalytics(start, end)
}

// CostBreakdown aggregates the entire ledger per model.
func (s *Service) CostBreakdown() ledger.CostBreakdown {
	return s.ledger.CostBreakdown()
}
