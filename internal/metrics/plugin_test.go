package metrics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"

	coreusage "github.com/router-for-me/CLIProxyAPI/v6/sdk/cliproxy/usage"
)

func TestUsagePluginFeedsTracker(t *testing.T) {
	tr := NewTracker()
	plugin := NewUsagePlugin(tr, catalog.NewDefault())
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	plugin.nowFn = func() time.Time { return now }

	record := coreusage.Record{
		Provider:    "openai",
		Model:       "gpt-4-turbo",
		RequestedAt: now.Add(-1500 * time.Millisecond),
	}
	record.Detail.InputTokens = 1000
	record.Detail.OutputTokens = 2000
	plugin.HandleUsage(context.Background(), record)

	got, ok := tr.Get("gpt-4-turbo")
	if !ok {
		t.Fatalf("expected usage to be tracked")
	}
	if got.TotalTokens != 3000 {
		t.Fatalf("expected derived total tokens 3000, got %d", got.TotalTokens)
	}
	if got.AvgLatencyMs != 1500 {
		t.Fatalf("expected latency 1500, got %v", got.AvgLatencyMs)
	}
	// 1k input at 0.01 plus 2k output at 0.03.
	if math.Abs(got.TotalCost-0.07) > 1e-9 {
		t.Fatalf("expected cost 0.07, got %v", got.TotalCost)
	}
	if got.ErrorRate != 0 {
		t.Fatalf("expected no errors, got %v", got.ErrorRate)
	}
}

func TestUsagePluginFailedAndUnknownModels(t *testing.T) {
	tr := NewTracker()
	plugin := NewUsagePlugin(tr, catalog.NewDefault())

	failed := coreusage.Record{Model: "gpt-4", Failed: true}
	failed.Detail.TotalTokens = 10
	plugin.HandleUsage(context.Background(), failed)

	unknown := coreusage.Record{Model: "custom-model"}
	unknown.Detail.InputTokens = 500
	plugin.HandleUsage(context.Background(), unknown)

	plugin.HandleUsage(context.Background(), coreusage.Record{Model: "  "})

	got, _ := tr.Get("gpt-4")
	if got.ErrorRate != 1 || got.TotalCost != 0 || got.TotalTokens != 10 {
		t.Fatalf("unexpected failed record: %+v", got)
	}
	custom, ok := tr.Get("custom-model")
	if !ok || custom.TotalCost != 0 || custom.TotalTokens != 500 {
		t.Fatalf("unexpected unknown-model record: %+v", custom)
	}
	if len(tr.All()) != 2 {
		t.Fatalf("expected blank model to be ignored")
	}
}
