// Package selection picks a model from the catalog for a task given priority, budget, and
// subscription tier.
package selection

import (
	"strings"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultFallbackModel is returned when no candidate survives filtering.
	DefaultFallbackModel = "gpt-3.5-turbo"

	balancedAccuracyWeight = 0.4
	balancedCostWeight     = 0.3
	balancedLatencyWeight  = 0.3
	balancedCostCap        = 0.1  // USD per 1K tokens.
	balancedLatencyCapMs   = 3000 // Milliseconds.
)

// DefaultFreeTierModels are the only models a free-tier caller may receive.
func DefaultFreeTierModels() []string {
	return []string{
		"gpt-3.5-turbo",
		"claude-3-haiku-20240307",
		"claude-instant-1.2",
		"text-embedding-ada-002",
	}
}

// DefaultProExcludedModels are withheld from pro-tier callers.
func DefaultProExcludedModels() []string {
	return []string{"gpt-4", "claude-3-opus-20240229"}
}

// Policy selects models from a catalog. It holds no mutable state.
type Policy struct {
	catalog       *catalog.Catalog
	fallbackModel string
	freeModels    map[string]struct{}
	proExcluded   map[string]struct{}
}

// Option configures a Policy.
type Option func(*Policy)

// WithFallbackModel overrides the model returned when nothing matches.
func WithFallbackModel(name string) Option {
	return func(p *Policy) {
		if name = strings.TrimSpace(name); name != "" {
			p.fallbackModel = name
		}
	}
}

// WithFreeTierModels replaces the free-tier allow-list.
func WithFreeTierModels(names ...string) Option {
	return func(p *Policy) { p.freeModels = toSet(names) }
}

// WithProExcludedModels replaces the pro-tier exclusion list.
func WithProExcludedModels(names ...string) Option {
	return func(p *Policy) { p.proExcluded = toSet(names) }
}

// NewPolicy constructs a Policy over c.
func NewPolicy(c *catalog.Catalog, opts ...Option) *Policy {
	p := &Policy{
		catalog:       c,
		fallbackModel: DefaultFallbackModel,
		freeModels:    toSet(DefaultFreeTierModels()),
		proExcluded:   toSet(DefaultProExcludedModels()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SelectBest returns the best profile for the criteria. It never fails: when every
// candidate is filtered out the fallback model is returned.
func (p *Policy) SelectBest(c Criteria) catalog.Profile {
	category := CategoryForTask(c.TaskType)
	candidates := p.catalog.List(catalog.Filter{Category: category})

	if c.MaxBudgetPer1K != nil && *c.MaxBudgetPer1K != 0 {
		budget := *c.MaxBudgetPer1K
		candidates = filter(candidates, func(m catalog.Profile) bool {
			return m.CostPer1K() <= budget
		})
	}
	candidates = p.filterByTier(candidates, c.Tier)

	if len(candidates) == 0 {
		fallback := p.fallback()
		log.WithFields(log.Fields{
			"task_type": c.TaskType,
			"priority":  c.Priority,
			"tier":      c.Tier,
			"fallback":  fallback.Name,
		}).Warn("selection: no models match criteria, using fallback")
		return fallback
	}

	switch c.Priority {
	case PrioritySpeed:
		return minBy(candidates, func(m catalog.Profile) float64 { return float64(m.AvgLatencyMs) })
	case PriorityAccuracy:
		return maxBy(candidates, func(m catalog.Profile) float64 { return m.AccuracyScore })
	case PriorityCost:
		return minBy(candidates, catalog.Profile.CostPer1K)
	default:
		return maxBy(candidates, BalancedScore)
	}
}

// BalancedScore weighs accuracy, cost, and latency into a single higher-is-better value.
// Cost and latency are capped at 0.1 USD/1K and 3000 ms before inversion.
func BalancedScore(m catalog.Profile) float64 {
	normCost := 1 - minFloat(m.CostPer1K()/balancedCostCap, 1)
	normLatency := 1 - minFloat(float64(m.AvgLatencyMs)/balancedLatencyCapMs, 1)
	return m.AccuracyScore*balancedAccuracyWeight +
		normCost*balancedCostWeight +
		normLatency*balancedLatencyWeight
}

func (p *Policy) filterByTier(models []catalog.Profile, tier Tier) []catalog.Profile {
	switch tier {
	case TierFree:
		return filter(models, func(m catalog.Profile) bool {
			_, ok := p.freeModels[m.Name]
			return ok
		})
	case TierPro:
		return filter(models, func(m catalog.Profile) bool {
			_, excluded := p.proExcluded[m.Name]
			return !excluded
		})
	default:
		return models
	}
}

// fallback resolves the configured fallback, degrading to the cheapest chat model when a
// custom catalog does not carry it.
func (p *Policy) fallback() catalog.Profile {
	if m, ok := p.catalog.Get(p.fallbackModel); ok {
		return m
	}
	if chat := p.catalog.List(catalog.Filter{Category: catalog.CategoryChat}); len(chat) > 0 {
		return minBy(chat, catalog.Profile.CostPer1K)
	}
	if all := p.catalog.List(catalog.Filter{}); len(all) > 0 {
		return minBy(all, catalog.Profile.CostPer1K)
	}
	return catalog.Profile{Name: p.fallbackModel, Provider: catalog.ProviderOpenAI, Category: catalog.CategoryChat}
}

func filter(models []catalog.Profile, keep func(catalog.Profile) bool) []catalog.Profile {
	out := make([]catalog.Profile, 0, len(models))
	for _, m := range models {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// minBy returns the first element with the smallest key.
func minBy(models []catalog.Profile, key func(catalog.Profile) float64) catalog.Profile {
	best := models[0]
	bestKey := key(best)
	for _, m := range models[1:] {
		if k := key(m); k < bestKey {
			best, bestKey = m, k
		}
	}
	return best
}

// maxBy returns the first element with the largest key.
func maxBy(models []catalog.Profile, key func(catalog.Profile) float64) catalog.Profile {
	best := models[0]
	bestKey := key(best)
	for _, m := range models[1:] {
		if k := key(m); k > bestKey {
			best, bestKey = m, k
		}
	}
	return best
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func toSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
