package selection

import (
	"testing"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
)

func TestRecommendPreferredModelOverridesScoring(t *testing.T) {
	policy := NewPolicy(catalog.NewDefault())

	// The preferred model wins even when the tier would exclude it.
	got := policy.Recommend(CompanySettings{PreferredModel: "gpt-4", Tier: TierFree}, "chat")
	if got.Name != "gpt-4" {
		t.Fatalf("expected preferred gpt-4, got %s", got.Name)
	}
}

func TestRecommendUnknownPreferredDefersToSelection(t *testing.T) {
	policy := NewPolicy(catalog.NewDefault())
	settings := CompanySettings{PreferredModel: "not-a-model", Tier: TierPro, Priority: PriorityCost}

	got := policy.Recommend(settings, "chat")
	want := policy.SelectBest(Criteria{TaskType: "chat", Priority: PriorityCost, Tier: TierPro})
	if got.Name != want.Name {
		t.Fatalf("expected %s, got %s", want.Name, got.Name)
	}
}

func TestRecommendDefaultsToFreeBalanced(t *testing.T) {
	policy := NewPolicy(catalog.NewDefault())
	got := policy.Recommend(CompanySettings{}, "summarize")
	want := policy.SelectBest(Criteria{TaskType: "summarize", Priority: PriorityBalanced, Tier: TierFree})
	if got.Name != want.Name {
		t.Fatalf("expected %s, got %s", want.Name, got.Name)
	}
}
