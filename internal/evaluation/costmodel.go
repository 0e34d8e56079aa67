package evaluation

import (
	"context"
	"fmt"
	"strings"
)

// Characteristics are the per-request figures a cost model reports for a model.
type Characteristics struct {
	LatencyMs      int
	CostPerRequest float64
	Accuracy       float64 // Probability that a single sample is answered correctly.
}

// CostModel characterizes one model call for one sample. Implementations may call a real
// provider; the engine bounds every call with its provider timeout.
type CostModel interface {
	Characteristics(ctx context.Context, model string, sample Sample) (Characteristics, error)
}

type nameRule struct {
	patterns []string
	chars    Characteristics
}

// simulatedRules are matched in order by substring against the model name.
var simulatedRules = []nameRule{
	{patterns: []string{"gpt-4"}, chars: Characteristics{LatencyMs: 2000, CostPerRequest: 0.03, Accuracy: 0.95}},
	{patterns: []string{"gpt-3.5"}, chars: Characteristics{LatencyMs: 800, CostPerRequest: 0.002, Accuracy: 0.85}},
	{patterns: []string{"claude-3-opus"}, chars: Characteristics{LatencyMs: 1800, CostPerRequest: 0.075, Accuracy: 0.93}},
	{patterns: []string{"claude-3-sonnet"}, chars: Characteristics{LatencyMs: 1200, CostPerRequest: 0.015, Accuracy: 0.90}},
	{patterns: []string{"claude-3-haiku", "claude-instant"}, chars: Characteristics{LatencyMs: 600, CostPerRequest: 0.001, Accuracy: 0.83}},
}

var simulatedDefault = Characteristics{LatencyMs: 1000, CostPerRequest: 0.01, Accuracy: 0.80}

// SimulatedCostModel stands in for live benchmarking: it derives fixed figures from the
// model name without calling any provider.
type SimulatedCostModel struct{}

// Characteristics implements CostModel.
func (SimulatedCostModel) Characteristics(_ context.Context, model string, _ Sample) (Characteristics, error) {
	if strings.TrimSpace(model) == "" {
		return Characteristics{}, fmt.Errorf("%w: empty model name", ErrUnknownModel)
	}
	for _, rule := range simulatedRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(model, pattern) {
				return rule.chars, nil
			}
		}
	}
	return simulatedDefault, nil
}
