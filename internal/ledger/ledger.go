// Package ledger maintains the in-process record of AI completion calls and
// derives usage analytics from it. The ledger is append-only: records are
// written once by the capability that owns them and never mutated afterwards.
package ledger

import (
	"sync"
	"time"
)

// ModelUnknown is the breakdown key for records whose resolved options carry no model.
const ModelUnknown = "unknown"

// RequestOptions are the options a call was resolved to after merging caller
// overrides with the capability defaults.
type RequestOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// CallRecord is one entry per attempted completion request, success or failure.
// Token counts and cost are pointers because vendors do not always return usage
// metadata; TotalTokens is always TokensIn + TokensOut when both are present.
type CallRecord struct {
	Timestamp   time.Time
	Prompt      string
	Options     RequestOptions
	Success     bool
	Latency     time.Duration
	RawResponse string
	Error       string
	TokensIn    *int
	TokensOut   *int
	TotalTokens *int
	Cost        *float64
}

// UsageAnalytics are aggregate statistics over a date-filtered view of the ledger.
type UsageAnalytics struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	TotalTokensIn      int
	TotalTokensOut     int
	TotalTokens        int
	TotalCost          float64
	AverageLatency     time.Duration
	RequestsByModel    map[string]int
}

// ModelUsage is the per-model slice of a cost breakdown.
type ModelUsage struct {
	Requests int
	Tokens   int
	Cost     float64
}

// CostBreakdown maps model name to aggregate usage over the full ledger.
type CostBreakdown map[string]ModelUsage

// Ledger is an insertion-ordered, append-only collection of call records.
// All methods are safe for concurrent use; analytics reads never observe a
// partially-appended record.
type Ledger struct {
	mu      sync.RWMutex
	records []CallRecord
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append adds a record to the ledger. Called exactly once per completion attempt.
func (l *Ledger) Append(record CallRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
}

// Records returns a copy of all records in insertion order.
func (l *Ledger) Records() []CallRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]CallRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Clear removes all records. The only way records ever leave the ledger.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// UsageAnalytics computes aggregates over records whose timestamp falls within
// [start, end] inclusive. Either bound may be nil to leave that side open.
// Absent costs count as zero; average latency is zero for an empty view.
func (l *Ledger) UsageAnalytics(start, end *time.Time) UsageAnalytics {
	l.mu.RLock()
	defer l.mu.RUnlock()

	analytics := UsageAnalytics{
		RequestsByModel: make(map[string]int),
	}

	var totalLatency time.Duration
	for _, record := range l.records {
		if start != nil && record.Timestamp.Before(*start) {
			continue
		}
		if end != nil && record.Timestamp.After(*end) {
			continue
		}

		analytics.TotalRequests++
		if record.Success {
			analytics.SuccessfulRequests++
		} else {
			analytics.FailedRequests++
		}
		if record.TokensIn != nil {
			analytics.TotalTokensIn += *record.TokensIn
		}
		if record.TokensOut != nil {
			analytics.TotalTokensOut += *record.TokensOut
		}
		if record.TotalTokens != nil {
			analytics.TotalTokens += *record.TotalTokens
		}
		if record.Cost != nil {
			analytics.TotalCost += *record.Cost
		}
		totalLatency += record.Latency
		analytics.RequestsByModel[modelKey(record)]++
	}

	if analytics.TotalRequests > 0 {
		analytics.AverageLatency = totalLatency / time.Duration(analytics.TotalRequests)
	}

	return analytics
}

// CostBreakdown folds the entire, unfiltered ledger into per-model usage.
func (l *Ledger) CostBreakdown() CostBreakdown {
	l.mu.RLock()
	defer l.mu.RUnlock()

	breakdown := make(CostBreakdown)
	for _, record := range l.records {
		usage := breakdown[modelKey(record)]
		usage.Requests++
		if record.TotalTokens != nil {
			usage.Tokens += *record.TotalTokens
		}
		if record.Cost != nil {
			usage.Cost += *record.Cost
		}
		breakdown[modelKey(record)] = usage
	}
	return breakdown
}

func modelKey(record CallRecord) string {
	if record.Options.Model == "" {
		return ModelUnknown
	}
	return record.Options.Model
}
