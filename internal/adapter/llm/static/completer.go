// Package static provides a canned completer for dry runs and local
// development. It never leaves the process and reports no token usage.
package static

import (
	"context"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/ledger"
)

const defaultResponse = `{"comments": [], "summary": "Static review: no analysis performed.", "approved": true}`

// Completer returns a fixed response for every prompt.
type Completer struct {
	response string
}

var _ llm.Completer = (*Completer)(nil)

// New creates a static completer. An empty response falls back to an empty
// approving review.
func New(response string) *Completer {
	if response == "" {
		response = defaultResponse
	}
	return &Completer{response: response}
}

// Name identifies the vendor.
func (c *Completer) Name() string {
	return "static"
}

// Complete returns the canned response.
func (c *Completer) Complete(ctx context.Context, prompt string, opts ledger.RequestOptions) (*llm.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &llm.Completion{
		Text:  c.response,
		Model: opts.Model,
		Raw:   c.response,
	}, nil
}
