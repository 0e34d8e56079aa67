package evaluation

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrEmptySampleData indicates an evaluation was requested without samples.
	ErrEmptySampleData = errors.New("sample data is empty")
	// ErrUnknownModel indicates a cost model could not characterize the model.
	ErrUnknownModel = errors.New("unknown model")
)

// Sample is one opaque evaluation record supplied by the caller.
type Sample map[string]any

// Metric orders evaluation results.
type Metric string

const (
	MetricAccuracy Metric = "accuracy"
	MetricLatency  Metric = "latency"
	MetricCost     Metric = "cost"
)

// ParseMetric normalizes raw. Empty input maps to MetricAccuracy; other unknown values are
// returned as-is so callers keep the unsorted behaviour.
func ParseMetric(raw string) Metric {
	m := Metric(strings.ToLower(strings.TrimSpace(raw)))
	if m == "" {
		return MetricAccuracy
	}
	return m
}

// Evaluation is the immutable result of evaluating one model on a sample set.
type Evaluation struct {
	ModelName      string    `json:"model_name"`
	TaskType       string    `json:"task_type"`
	Accuracy       float64   `json:"accuracy"`
	LatencyMs      int       `json:"latency_ms"`
	CostPerRequest float64   `json:"cost_per_request"`
	SampleSize     int       `json:"sample_size"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// HyperParams is one point of the hyperparameter grid.
type HyperParams struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

// Trial is one scored grid point.
type Trial struct {
	Params HyperParams `json:"params"`
	Score  float64     `json:"score"`
}

// OptimizationResult summarizes a hyperparameter search.
type OptimizationResult struct {
	ModelName  string      `json:"model_name"`
	TaskType   string      `json:"task_type"`
	BestParams HyperParams `json:"best_params"`
	BestScore  float64     `json:"best_score"`
	Trials     []Trial     `json:"trials"`
}

// ABTestResult compares two models on one metric.
type ABTestResult struct {
	ModelA         string     `json:"model_a"`
	ModelB         string     `json:"model_b"`
	EvalA          Evaluation `json:"eval_a"`
	EvalB          Evaluation `json:"eval_b"`
	Winner         string     `json:"winner"`
	Improvement    float64    `json:"improvement"`
	Metric         Metric     `json:"metric"`
	Recommendation string     `json:"recommendation"`
}

// Upgrade recommendations.
const (
	RecommendUpgrade     = "upgrade"
	RecommendKeepCurrent = "keep_current"
)

// UpgradeSuggestion is the outcome of SuggestUpgrade.
type UpgradeSuggestion struct {
	Recommendation      string   `json:"recommendation"`
	CurrentModel        string   `json:"current_model"`
	SuggestedModel      string   `json:"suggested_model,omitempty"`
	AccuracyImprovement float64  `json:"accuracy_improvement,omitempty"`
	CostIncrease        *float64 `json:"cost_increase,omitempty"`
	Rationale           string   `json:"rationale"`
}
