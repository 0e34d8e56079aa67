package evaluation

import (
	"context"
	"fmt"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	log "github.com/sirupsen/logrus"
)

const (
	// monthlyVolumeThousands approximates expected monthly token volume in thousands. It
	// turns a per-1k price into a monthly cost proxy and is a modeling assumption.
	monthlyVolumeThousands = 100
	// upgradeThreshold is the accuracy gain a candidate must exceed to be recommended.
	upgradeThreshold = 0.05
)

// MonthlyCostProxy estimates the monthly spend of p.
func MonthlyCostProxy(p catalog.Profile) float64 {
	return p.CostPer1K() * monthlyVolumeThousands
}

// SuggestUpgrade compares currentModel against every affordable chat model and recommends
// the one with the largest accuracy gain when that gain exceeds the threshold. Candidates
// whose evaluation fails are skipped.
func (e *Engine) SuggestUpgrade(ctx context.Context, currentModel, taskType string, budget float64, samples []Sample) (UpgradeSuggestion, error) {
	if len(samples) == 0 {
		return UpgradeSuggestion{}, ErrEmptySampleData
	}

	current, err := e.EvaluateSingle(ctx, currentModel, taskType, samples)
	if err != nil {
		return UpgradeSuggestion{}, err
	}

	var (
		best            *Evaluation
		bestImprovement float64
	)
	for _, candidate := range e.catalog.List(catalog.Filter{Category: catalog.CategoryChat}) {
		if candidate.Name == currentModel || MonthlyCostProxy(candidate) > budget {
			continue
		}
		eval, errEval := e.EvaluateSingle(ctx, candidate.Name, taskType, samples)
		if errEval != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return UpgradeSuggestion{}, ctxErr
			}
			log.WithError(errEval).WithField("model", candidate.Name).Warn("evaluation: skipping upgrade candidate")
			continue
		}
		if improvement := eval.Accuracy - current.Accuracy; improvement > bestImprovement {
			bestImprovement = improvement
			best = &eval
		}
	}

	if best == nil || bestImprovement <= upgradeThreshold {
		return UpgradeSuggestion{
			Recommendation: RecommendKeepCurrent,
			CurrentModel:   currentModel,
			Rationale:      "Current model is optimal for your budget and requirements",
		}, nil
	}

	costIncrease := best.CostPerRequest - current.CostPerRequest
	return UpgradeSuggestion{
		Recommendation:      RecommendUpgrade,
		CurrentModel:        currentModel,
		SuggestedModel:      best.ModelName,
		AccuracyImprovement: bestImprovement,
		CostIncrease:        &costIncrease,
		Rationale:           fmt.Sprintf("Upgrade to %s for %.1f%% better accuracy", best.ModelName, bestImprovement*100),
	}, nil
}
