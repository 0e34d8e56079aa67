package evaluation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
)

func TestRunABTestAccuracy(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.RunABTest(context.Background(), "gpt-4-turbo", "gpt-3.5-turbo", "chat", samples(100), MetricAccuracy)
	if err != nil {
		t.Fatalf("ab test: %v", err)
	}
	if res.Winner != "gpt-4-turbo" {
		t.Fatalf("expected gpt-4-turbo to win, got %s", res.Winner)
	}
	if math.Abs(res.Improvement-0.10) > 1e-9 {
		t.Fatalf("expected absolute improvement 0.10, got %v", res.Improvement)
	}
	if res.Recommendation != "Use gpt-4-turbo for 10.0% better accuracy" {
		t.Fatalf("unexpected recommendation %q", res.Recommendation)
	}
	if res.EvalA.ModelName != "gpt-4-turbo" || res.EvalB.ModelName != "gpt-3.5-turbo" {
		t.Fatalf("evaluations not attached to their models")
	}
}

func TestRunABTestLatencyIsRelative(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.RunABTest(context.Background(), "gpt-4-turbo", "gpt-3.5-turbo", "chat", samples(10), MetricLatency)
	if err != nil {
		t.Fatalf("ab test: %v", err)
	}
	if res.Winner != "gpt-3.5-turbo" {
		t.Fatalf("expected faster model to win, got %s", res.Winner)
	}
	if math.Abs(res.Improvement-0.6) > 1e-9 {
		t.Fatalf("expected (2000-800)/2000, got %v", res.Improvement)
	}
}

func TestRunABTestCostIsRelative(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.RunABTest(context.Background(), "claude-3-haiku-20240307", "claude-3-sonnet-20240229", "chat", samples(10), MetricCost)
	if err != nil {
		t.Fatalf("ab test: %v", err)
	}
	if res.Winner != "claude-3-haiku-20240307" {
		t.Fatalf("expected cheaper model to win, got %s", res.Winner)
	}
	want := (0.015 - 0.001) / 0.015
	if math.Abs(res.Improvement-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, res.Improvement)
	}
}

func TestRunABTestTiesAndUnknownMetric(t *testing.T) {
	e := newTestEngine(t)
	tie, err := e.RunABTest(context.Background(), "gpt-3.5-turbo", "gpt-3.5-turbo-16k", "chat", samples(10), MetricAccuracy)
	if err != nil {
		t.Fatalf("ab test: %v", err)
	}
	if tie.Winner != "gpt-3.5-turbo-16k" || tie.Improvement != 0 {
		t.Fatalf("expected tie to go to b with zero improvement, got %s %v", tie.Winner, tie.Improvement)
	}

	unknown, err := e.RunABTest(context.Background(), "gpt-4", "claude-instant-1.2", "chat", samples(10), Metric("vibes"))
	if err != nil {
		t.Fatalf("ab test: %v", err)
	}
	if unknown.Winner != "gpt-4" || unknown.Improvement != 0 {
		t.Fatalf("expected a to win unknown metric with zero improvement, got %s %v", unknown.Winner, unknown.Improvement)
	}
}

func TestRelativeDiffZeroValues(t *testing.T) {
	if got := relativeDiff(0, 0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func upgradeEngine(t *testing.T, candidateAcc float64) *Engine {
	t.Helper()
	profile := func(name string, cost float64) catalog.Profile {
		return catalog.Profile{
			Name:           name,
			Provider:       catalog.ProviderLocal,
			Category:       catalog.CategoryChat,
			CostPer1KInput: cost,
			AccuracyScore:  0.5,
		}
	}
	c, err := catalog.New([]catalog.Profile{
		profile("current", 0.01),
		profile("candidate", 0.02),
		profile("premium", 1.0),
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	model := stubCostModel{chars: map[string]Characteristics{
		"current":   {LatencyMs: 500, CostPerRequest: 0.01, Accuracy: 0.80},
		"candidate": {LatencyMs: 700, CostPerRequest: 0.02, Accuracy: candidateAcc},
		"premium":   {LatencyMs: 900, CostPerRequest: 0.5, Accuracy: 0.99},
	}}
	return NewEngine(c,
		WithCostModel(model),
		WithDraw(evenDraw(100)),
		WithSampleDelay(0),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestSuggestUpgradeAboveThreshold(t *testing.T) {
	e := upgradeEngine(t, 0.86)
	res, err := e.SuggestUpgrade(context.Background(), "current", "chat", 10, samples(100))
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Recommendation != RecommendUpgrade || res.SuggestedModel != "candidate" {
		t.Fatalf("expected upgrade to candidate, got %+v", res)
	}
	if math.Abs(res.AccuracyImprovement-0.06) > 1e-9 {
		t.Fatalf("expected improvement 0.06, got %v", res.AccuracyImprovement)
	}
	if res.CostIncrease == nil || math.Abs(*res.CostIncrease-0.01) > 1e-9 {
		t.Fatalf("expected cost increase 0.01, got %v", res.CostIncrease)
	}
	if res.Rationale != "Upgrade to candidate for 6.0% better accuracy" {
		t.Fatalf("unexpected rationale %q", res.Rationale)
	}
}

func TestSuggestUpgradeBelowThresholdKeepsCurrent(t *testing.T) {
	e := upgradeEngine(t, 0.84)
	res, err := e.SuggestUpgrade(context.Background(), "current", "chat", 10, samples(100))
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Recommendation != RecommendKeepCurrent || res.SuggestedModel != "" || res.CostIncrease != nil {
		t.Fatalf("expected keep_current, got %+v", res)
	}
}

func TestSuggestUpgradeRespectsBudget(t *testing.T) {
	e := upgradeEngine(t, 0.81)
	res, err := e.SuggestUpgrade(context.Background(), "current", "chat", 1000, samples(100))
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.SuggestedModel != "premium" {
		t.Fatalf("expected premium within a large budget, got %+v", res)
	}

	res, err = e.SuggestUpgrade(context.Background(), "current", "chat", 10, samples(100))
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Recommendation != RecommendKeepCurrent {
		t.Fatalf("expected premium to be excluded by budget, got %+v", res)
	}
}

func TestMonthlyCostProxy(t *testing.T) {
	p := catalog.Profile{CostPer1KInput: 0.01, CostPer1KOutput: 0.03}
	if got := MonthlyCostProxy(p); math.Abs(got-4) > 1e-9 {
		t.Fatalf("expected 4, got %v", got)
	}
}
