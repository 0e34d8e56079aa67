package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CLIProxyAPISelector/internal/evaluation"
)

// EvaluationReader exposes persisted evaluation output.
type EvaluationReader interface {
	ListEvaluations(ctx context.Context, taskType string) (map[string][]evaluation.Evaluation, error)
	ListOptimizations(ctx context.Context, model string, limit int) ([]evaluation.OptimizationResult, error)
}

// EvaluationHandler serves the evaluation workflow endpoints.
type EvaluationHandler struct {
	engine    *evaluation.Engine
	persisted EvaluationReader
}

// NewEvaluationHandler constructs an EvaluationHandler. persisted may be nil when the
// service runs without a database.
func NewEvaluationHandler(engine *evaluation.Engine, persisted EvaluationReader) *EvaluationHandler {
	return &EvaluationHandler{engine: engine, persisted: persisted}
}

type evaluateRequest struct {
	TaskType   string           `json:"task_type" binding:"required"`
	SampleData []map[string]any `json:"sample_data"`
	ModelList  []string         `json:"model_list"`
	Metric     string           `json:"metric"`
}

// Evaluate benchmarks a set of models on the submitted samples.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var body evaluateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	evals, err := h.engine.EvaluateModels(
		c.Request.Context(),
		strings.TrimSpace(body.TaskType),
		toSamples(body.SampleData),
		body.ModelList,
		evaluation.ParseMetric(body.Metric),
	)
	if err != nil {
		writeError(c, "evaluate models", err)
		return
	}

	var best any
	if len(evals) > 0 {
		best = evals[0].ModelName
	}
	companySuccess(c, gin.H{
		"evaluations": evals,
		"best_model":  best,
	})
}

type optimizeRequest struct {
	ModelName  string           `json:"model_name" binding:"required"`
	TaskType   string           `json:"task_type" binding:"required"`
	SampleData []map[string]any `json:"sample_data"`
	NTrials    *int             `json:"n_trials"`
}

// Optimize searches the hyperparameter grid for a model.
func (h *EvaluationHandler) Optimize(c *gin.Context) {
	var body optimizeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	trials := evaluation.DefaultTrials
	if body.NTrials != nil {
		trials = *body.NTrials
	}

	result, err := h.engine.OptimizeHyperparameters(
		c.Request.Context(),
		strings.TrimSpace(body.ModelName),
		strings.TrimSpace(body.TaskType),
		toSamples(body.SampleData),
		trials,
	)
	if err != nil {
		writeError(c, "optimize hyperparameters", err)
		return
	}
	companySuccess(c, gin.H{"optimization_result": result})
}

type abTestRequest struct {
	ModelA     string           `json:"model_a" binding:"required"`
	ModelB     string           `json:"model_b" binding:"required"`
	TaskType   string           `json:"task_type" binding:"required"`
	SampleData []map[string]any `json:"sample_data"`
	Metric     string           `json:"metric"`
}

// ABTest compares two models head to head.
func (h *EvaluationHandler) ABTest(c *gin.Context) {
	var body abTestRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	result, err := h.engine.RunABTest(
		c.Request.Context(),
		strings.TrimSpace(body.ModelA),
		strings.TrimSpace(body.ModelB),
		strings.TrimSpace(body.TaskType),
		toSamples(body.SampleData),
		evaluation.ParseMetric(body.Metric),
	)
	if err != nil {
		writeError(c, "run ab test", err)
		return
	}
	companySuccess(c, gin.H{"test_result": result})
}

type upgradeRequest struct {
	CurrentModel  string           `json:"current_model" binding:"required"`
	TaskType      string           `json:"task_type" binding:"required"`
	MonthlyBudget *float64         `json:"monthly_budget" binding:"required"`
	SampleData    []map[string]any `json:"sample_data"`
}

// SuggestUpgrade proposes a better model within the monthly budget.
func (h *EvaluationHandler) SuggestUpgrade(c *gin.Context) {
	var body upgradeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	suggestion, err := h.engine.SuggestUpgrade(
		c.Request.Context(),
		strings.TrimSpace(body.CurrentModel),
		strings.TrimSpace(body.TaskType),
		*body.MonthlyBudget,
		toSamples(body.SampleData),
	)
	if err != nil {
		writeError(c, "suggest upgrade", err)
		return
	}
	companySuccess(c, gin.H{"suggestion": suggestion})
}

// History returns evaluation batches, from memory by default or from the database when
// persisted=true.
func (h *EvaluationHandler) History(c *gin.Context) {
	taskType := strings.TrimSpace(c.Query("task_type"))

	if persisted, _ := strconv.ParseBool(c.Query("persisted")); persisted {
		if h.persisted == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "evaluation storage is not configured"})
			return
		}
		history, err := h.persisted.ListEvaluations(c.Request.Context(), taskType)
		if err != nil {
			writeError(c, "list evaluation history", err)
			return
		}
		companySuccess(c, gin.H{"history": history})
		return
	}

	companySuccess(c, gin.H{"history": h.engine.History(taskType)})
}

// Optimizations lists persisted hyperparameter searches.
func (h *EvaluationHandler) Optimizations(c *gin.Context) {
	if h.persisted == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "evaluation storage is not configured"})
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, errParse := strconv.Atoi(raw)
		if errParse != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	runs, err := h.persisted.ListOptimizations(c.Request.Context(), strings.TrimSpace(c.Query("model_name")), limit)
	if err != nil {
		writeError(c, "list optimizations", err)
		return
	}
	companySuccess(c, gin.H{"optimizations": runs})
}
