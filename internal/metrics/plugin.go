package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"

	coreusage "github.com/router-for-me/CLIProxyAPI/v6/sdk/cliproxy/usage"
)

// UsagePlugin feeds proxied request outcomes into a Tracker.
type UsagePlugin struct {
	tracker *Tracker
	catalog *catalog.Catalog
	nowFn   func() time.Time
}

// NewUsagePlugin constructs a UsagePlugin. Cost is priced from the catalog when the model
// is known there and recorded as zero otherwise.
func NewUsagePlugin(tracker *Tracker, c *catalog.Catalog) *UsagePlugin {
	return &UsagePlugin{tracker: tracker, catalog: c, nowFn: time.Now}
}

// HandleUsage records one usage event.
func (p *UsagePlugin) HandleUsage(_ context.Context, record coreusage.Record) {
	if p == nil || p.tracker == nil {
		return
	}
	model := strings.TrimSpace(record.Model)
	if model == "" {
		return
	}

	totalTokens := record.Detail.TotalTokens
	if totalTokens == 0 {
		totalTokens = record.Detail.InputTokens + record.Detail.OutputTokens + record.Detail.ReasoningTokens
	}

	var latencyMs int64
	if !record.RequestedAt.IsZero() {
		if elapsed := p.nowFn().Sub(record.RequestedAt); elapsed > 0 {
			latencyMs = elapsed.Milliseconds()
		}
	}

	p.tracker.Update(model, int64(totalTokens), p.cost(model, record), latencyMs, !record.Failed)
}

func (p *UsagePlugin) cost(model string, record coreusage.Record) float64 {
	if p.catalog == nil || record.Failed {
		return 0
	}
	profile, ok := p.catalog.Get(model)
	if !ok {
		return 0
	}
	input := float64(record.Detail.InputTokens) / 1000 * profile.CostPer1KInput
	output := float64(record.Detail.OutputTokens+record.Detail.ReasoningTokens) / 1000 * profile.CostPer1KOutput
	return input + output
}

var _ coreusage.Plugin = (*UsagePlugin)(nil)
