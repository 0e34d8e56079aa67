package evaluation

import (
	"context"
	"math"

	log "github.com/sirupsen/logrus"
)

var (
	gridTemperatures = []float64{0.3, 0.5, 0.7, 0.9}
	gridTopP         = []float64{0.8, 0.9, 1.0}
	gridMaxTokens    = []int{500, 1000, 2000}
)

const (
	baseTrialScore     = 0.85
	idealTemperature   = 0.7
	temperaturePenalty = 0.1
)

// DefaultTrials is used when a request does not name a trial count.
const DefaultTrials = 20

// Grid returns the hyperparameter grid in evaluation order: temperature outermost, then
// top_p, then max_tokens.
func Grid() []HyperParams {
	grid := make([]HyperParams, 0, len(gridTemperatures)*len(gridTopP)*len(gridMaxTokens))
	for _, t := range gridTemperatures {
		for _, p := range gridTopP {
			for _, m := range gridMaxTokens {
				grid = append(grid, HyperParams{Temperature: t, TopP: p, MaxTokens: m})
			}
		}
	}
	return grid
}

// TrialScore is the simulated objective for one grid point.
func TrialScore(p HyperParams) float64 {
	return baseTrialScore - math.Abs(p.Temperature-idealTemperature)*temperaturePenalty
}

// DefaultHyperParams is reported as the best point when no trial runs.
func DefaultHyperParams() HyperParams {
	return HyperParams{Temperature: 0.7, TopP: 1.0, MaxTokens: 1000}
}

// OptimizeHyperparameters scores the first nTrials grid points and keeps the first best.
// Samples must be present but their content does not affect the score. Non-positive
// nTrials runs no trials and reports DefaultHyperParams with a zero score.
func (e *Engine) OptimizeHyperparameters(ctx context.Context, model, taskType string, samples []Sample, nTrials int) (OptimizationResult, error) {
	if len(samples) == 0 {
		return OptimizationResult{}, ErrEmptySampleData
	}

	grid := Grid()
	if nTrials < 0 {
		nTrials = 0
	}
	if nTrials > len(grid) {
		nTrials = len(grid)
	}

	result := OptimizationResult{
		ModelName:  model,
		TaskType:   taskType,
		BestParams: DefaultHyperParams(),
		Trials:     make([]Trial, 0, nTrials),
	}
	for _, params := range grid[:nTrials] {
		if err := e.wait(ctx); err != nil {
			return OptimizationResult{}, err
		}
		score := TrialScore(params)
		result.Trials = append(result.Trials, Trial{Params: params, Score: score})
		if score > result.BestScore {
			result.BestScore = score
			result.BestParams = params
		}
	}

	if e.recorder != nil {
		if err := e.recorder.RecordOptimization(ctx, result); err != nil {
			log.WithError(err).WithField("model", model).Warn("evaluation: persist optimization failed")
		}
	}
	return result, nil
}
