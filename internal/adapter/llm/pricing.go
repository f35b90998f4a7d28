package llm

// ModelPricing contains per-1K-token rates for a model, in USD.
type ModelPricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// PricingTable maps model identifier to rates. Supplied at capability
// construction and immutable for the lifetime of the capability instance.
type PricingTable map[string]ModelPricing

// Cost returns the USD cost for the given usage, and whether the table has an
// entry for the model at all.
func (t PricingTable) Cost(model string, tokensIn, tokensOut int) (float64, bool) {
	rates, ok := t[model]
	if !ok {
		return 0, false
	}
	inputCost := float64(tokensIn) / 1000.0 * rates.InputPer1K
	outputCost := float64(tokensOut) / 1000.0 * rates.OutputPer1K
	return inputCost + outputCost, true
}

// DefaultPricingTable returns built-in rates for commonly configured models.
// Pricing as of: 2025-12-27
// Sources:
// - OpenAI: https://openai.com/api/pricing/
// - Anthropic: https://claude.com/pricing
// - Gemini: https://ai.google.dev/gemini-api/docs/pricing
func DefaultPricingTable() PricingTable {
	return PricingTable{
		// OpenAI
		"gpt-4o":      {InputPer1K: 0.0025, OutputPer1K: 0.01},
		"gpt-4o-mini": {InputPer1K: 0.00015, OutputPer1K: 0.0006},
		"o1":          {InputPer1K: 0.015, OutputPer1K: 0.06},
		"o1-mini":     {InputPer1K: 0.003, OutputPer1K: 0.012},
		"o3-mini":     {InputPer1K: 0.0011, OutputPer1K: 0.0044},

		// Anthropic
		"claude-opus-4-5-20251101":   {InputPer1K: 0.005, OutputPer1K: 0.025},
		"claude-sonnet-4-5-20250929": {InputPer1K: 0.003, OutputPer1K: 0.015},
		"claude-haiku-4-5":           {InputPer1K: 0.001, OutputPer1K: 0.005},
		"claude-3-5-sonnet-20241022": {InputPer1K: 0.003, OutputPer1K: 0.015},
		"claude-3-5-haiku-20241022":  {InputPer1K: 0.0008, OutputPer1K: 0.004},

		// Gemini
		"gemini-2.5-pro":   {InputPer1K: 0.00125, OutputPer1K: 0.01},
		"gemini-2.5-flash": {InputPer1K: 0.00015, OutputPer1K: 0.0006},
		"gemini-1.5-pro":   {InputPer1K: 0.00125, OutputPer1K: 0.005},
		"gemini-1.5-flash": {InputPer1K: 0.000075, OutputPer1K: 0.0003},
	}
}

// MergePricing overlays override entries on top of base without mutating either.
func MergePricing(base, overrides PricingTable) PricingTable {
	merged := make(PricingTable, len(base)+len(overrides))
	for model, rates := range base {
		merged[model] = rates
	}
	for model, rates := range overrides {
		merged[model] = rates
	}
	return merged
}
