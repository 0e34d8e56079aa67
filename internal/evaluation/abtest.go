package evaluation

import (
	"context"
	"fmt"
	"math"
)

// RunABTest evaluates both models on the same samples and declares a winner on metric.
// Model a must be strictly better to win; ties go to b. Accuracy improvement is the
// absolute difference, latency and cost improvements are relative to the larger value.
// An unknown metric names a as winner with zero improvement.
func (e *Engine) RunABTest(ctx context.Context, modelA, modelB, taskType string, samples []Sample, metric Metric) (ABTestResult, error) {
	evalA, err := e.EvaluateSingle(ctx, modelA, taskType, samples)
	if err != nil {
		return ABTestResult{}, err
	}
	evalB, err := e.EvaluateSingle(ctx, modelB, taskType, samples)
	if err != nil {
		return ABTestResult{}, err
	}

	winner, improvement := modelA, 0.0
	switch metric {
	case MetricAccuracy:
		if evalA.Accuracy <= evalB.Accuracy {
			winner = modelB
		}
		improvement = math.Abs(evalA.Accuracy - evalB.Accuracy)
	case MetricLatency:
		if evalA.LatencyMs >= evalB.LatencyMs {
			winner = modelB
		}
		improvement = relativeDiff(float64(evalA.LatencyMs), float64(evalB.LatencyMs))
	case MetricCost:
		if evalA.CostPerRequest >= evalB.CostPerRequest {
			winner = modelB
		}
		improvement = relativeDiff(evalA.CostPerRequest, evalB.CostPerRequest)
	}

	return ABTestResult{
		ModelA:         modelA,
		ModelB:         modelB,
		EvalA:          evalA,
		EvalB:          evalB,
		Winner:         winner,
		Improvement:    improvement,
		Metric:         metric,
		Recommendation: fmt.Sprintf("Use %s for %.1f%% better %s", winner, improvement*100, metric),
	}, nil
}

func relativeDiff(a, b float64) float64 {
	larger := math.Max(a, b)
	if larger == 0 {
		return 0
	}
	return math.Abs(a-b) / larger
}
