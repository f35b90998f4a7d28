// Package llm defines the AI provider capability: a vendor-independent
// contract for generating completions, reviewing pull requests, generating
// tests, and answering developer comments, with every call accounted for in a
// request ledger.
package llm

import (
	"context"
	"time"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/domain"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/ledger"
)

// RequestOptions are caller-supplied overrides for a single call. Zero values
// mean "use the capability default"; Temperature is a pointer because 0 is a
// valid temperature.
type RequestOptions struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Response is the outcome of a low-level completion call. It carries its own
// success flag and error instead of an error return: GenerateResponse never
// fails out-of-band, every attempt resolves to a Response plus a ledger record.
type Response struct {
	Content string
	Success bool
	Err     error
	Raw     string
}

// Completion is the normalized result a vendor completer extracts from its
// API response. HasUsage is false when the vendor returned no usage metadata.
type Completion struct {
	Text      string
	Model     string
	Raw       string
	TokensIn  int
	TokensOut int
	HasUsage  bool
}

// Completer is the vendor-specific half of the capability: one HTTP client per
// vendor API, each owning its own response-shape extraction. All completers
// populate the same Completion fields regardless of where their API reports
// usage counts.
type Completer interface {
	// Name identifies the vendor, e.g. "openai".
	Name() string

	// Complete performs a single completion attempt. No retries: failures
	// surface immediately as typed errors.
	Complete(ctx context.Context, prompt string, opts ledger.RequestOptions) (*Completion, error)
}

// Capability is the full provider contract consumed by the orchestrator.
// Every vendor variant behaves identically through this interface.
type Capability interface {
	GenerateResponse(ctx context.Context, prompt string, opts *RequestOptions) Response
	ReviewPullRequest(ctx context.Context, files []domain.ReviewFile) (domain.CodeReview, error)
	GenerateTests(ctx context.Context, filePath, fileContent string) (string, error)
	RespondToComment(ctx context.Context, userComment, codeContext string) (string, error)

	Requests() []ledger.CallRecord
	ClearRequests()
	UsageAnalytics(start, end *time.Time) ledger.UsageAnalytics
	CostBreakdown() ledger.CostBreakdown
}
