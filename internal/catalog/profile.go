package catalog

import (
	"fmt"
	"strings"
)

// Provider identifies the vendor serving a model.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderLocal     Provider = "local"
)

// Category groups models by the kind of workload they serve.
type Category string

const (
	CategoryChat           Category = "chat"
	CategoryVision         Category = "vision"
	CategoryEmbeddings     Category = "embeddings"
	CategoryTextGeneration Category = "text_generation"
)

// Providers lists every known provider in declaration order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderLocal}
}

// Categories lists every known category in declaration order.
func Categories() []Category {
	return []Category{CategoryChat, CategoryVision, CategoryEmbeddings, CategoryTextGeneration}
}

// ParseProvider normalizes a provider string and reports whether it is known.
func ParseProvider(raw string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderLocal:
		return p, true
	default:
		return p, false
	}
}

// ParseCategory normalizes a category string and reports whether it is known.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryChat, CategoryVision, CategoryEmbeddings, CategoryTextGeneration:
		return c, true
	default:
		return c, false
	}
}

// Profile describes the static capability, cost, and performance of a model.
type Profile struct {
	Name                    string   `json:"name"`
	Provider                Provider `json:"provider"`
	Category                Category `json:"category"`
	CostPer1KInput          float64  `json:"cost_per_1k_input_tokens"`  // USD per 1K input tokens.
	CostPer1KOutput         float64  `json:"cost_per_1k_output_tokens"` // USD per 1K output tokens.
	AvgLatencyMs            int      `json:"avg_latency_ms"`
	AccuracyScore           float64  `json:"accuracy_score"` // Nominal accuracy in [0,1].
	MaxOutputTokens         int      `json:"max_tokens"`
	ContextWindow           int      `json:"context_window"`
	SupportsStreaming       bool     `json:"supports_streaming"`
	SupportsFunctionCalling bool     `json:"supports_function_calling"`
	Description             string   `json:"description"`
}

// CostPer1K returns the combined input and output price per 1K tokens.
func (p Profile) CostPer1K() float64 {
	return p.CostPer1KInput + p.CostPer1KOutput
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidProfile)
	}
	if _, ok := ParseProvider(string(p.Provider)); !ok {
		return fmt.Errorf("%w: %s: unknown provider %q", ErrInvalidProfile, p.Name, p.Provider)
	}
	if _, ok := ParseCategory(string(p.Category)); !ok {
		return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidProfile, p.Name, p.Category)
	}
	if p.AccuracyScore < 0 || p.AccuracyScore > 1 {
		return fmt.Errorf("%w: %s: accuracy %.3f outside [0,1]", ErrInvalidProfile, p.Name, p.AccuracyScore)
	}
	if p.CostPer1KInput < 0 || p.CostPer1KOutput < 0 {
		return fmt.Errorf("%w: %s: negative cost", ErrInvalidProfile, p.Name)
	}
	return nil
}
