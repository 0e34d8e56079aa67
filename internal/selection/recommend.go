package selection

import (
	"strings"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
)

// CompanySettings carries the per-company preferences used by Recommend.
type CompanySettings struct {
	PreferredModel string   `json:"preferred_model,omitempty"`
	Tier           Tier     `json:"tier"`
	Priority       Priority `json:"priority"`
	MaxCostPer1K   *float64 `json:"max_cost_per_1k,omitempty"`
}

// Recommend returns the company's preferred model when it exists in the catalog, otherwise
// the SelectBest result for the company's tier, priority, and budget.
func (p *Policy) Recommend(settings CompanySettings, taskType string) catalog.Profile {
	if preferred := strings.TrimSpace(settings.PreferredModel); preferred != "" {
		if m, ok := p.catalog.Get(preferred); ok {
			return m
		}
	}

	tier := settings.Tier
	if tier == "" {
		tier = TierFree
	}
	priority := settings.Priority
	if priority == "" {
		priority = PriorityBalanced
	}
	return p.SelectBest(Criteria{
		TaskType:       taskType,
		Priority:       priority,
		MaxBudgetPer1K: settings.MaxCostPer1K,
		Tier:           tier,
	})
}
