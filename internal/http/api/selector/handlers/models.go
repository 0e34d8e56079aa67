package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	"github.com/router-for-me/CLIProxyAPISelector/internal/metrics"
	"github.com/router-for-me/CLIProxyAPISelector/internal/selection"
)

// ModelHandler serves catalog, selection and usage metric endpoints.
type ModelHandler struct {
	catalog  *catalog.Catalog
	policy   *selection.Policy
	tracker  *metrics.Tracker
	settings SettingsStore
}

// NewModelHandler constructs a ModelHandler.
func NewModelHandler(c *catalog.Catalog, policy *selection.Policy, tracker *metrics.Tracker, settings SettingsStore) *ModelHandler {
	return &ModelHandler{catalog: c, policy: policy, tracker: tracker, settings: settings}
}

// List returns catalog models filtered by optional category and provider.
func (h *ModelHandler) List(c *gin.Context) {
	var filter catalog.Filter
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		category, ok := catalog.ParseCategory(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		filter.Category = category
	}
	if raw := strings.TrimSpace(c.Query("provider")); raw != "" {
		provider, ok := catalog.ParseProvider(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider"})
			return
		}
		filter.Provider = provider
	}

	list := h.catalog.List(filter)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(list),
		"models": list,
	})
}

// Info returns one catalog model.
func (h *ModelHandler) Info(c *gin.Context) {
	profile, err := h.catalog.Lookup(c.Param("model_name"))
	if err != nil {
		writeError(c, "get model", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "model": profile})
}

type selectRequest struct {
	TaskType       string   `json:"task_type" binding:"required"`
	Priority       string   `json:"priority"`
	MaxBudgetPer1K *float64 `json:"max_budget_per_1k"`
}

// Select picks the best model for the request criteria under the company's tier.
func (h *ModelHandler) Select(c *gin.Context) {
	var body selectRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	settings, errSettings := h.settings.Get(c.Request.Context(), c.GetString(CompanyIDKey))
	if errSettings != nil {
		writeError(c, "load company settings", errSettings)
		return
	}

	criteria := selection.Criteria{
		TaskType:       strings.TrimSpace(body.TaskType),
		Priority:       selection.ParsePriority(body.Priority),
		MaxBudgetPer1K: body.MaxBudgetPer1K,
		Tier:           settings.Tier,
	}
	model := h.policy.SelectBest(criteria)
	companySuccess(c, gin.H{
		"selected_model": model,
		"criteria": gin.H{
			"task_type":         criteria.TaskType,
			"priority":          criteria.Priority,
			"max_budget_per_1k": criteria.MaxBudgetPer1K,
			"subscription_tier": criteria.Tier,
		},
	})
}

type recommendRequest struct {
	TaskType string `json:"task_type"`
}

// Recommend applies the company's stored preferences to pick a model.
func (h *ModelHandler) Recommend(c *gin.Context) {
	taskType := strings.TrimSpace(c.Query("task_type"))
	if taskType == "" && c.Request.ContentLength != 0 {
		var body recommendRequest
		if errBind := c.ShouldBindJSON(&body); errBind != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		taskType = strings.TrimSpace(body.TaskType)
	}
	if taskType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_type is required"})
		return
	}

	settings, errSettings := h.settings.Get(c.Request.Context(), c.GetString(CompanyIDKey))
	if errSettings != nil {
		writeError(c, "load company settings", errSettings)
		return
	}
	model := h.policy.Recommend(settings, taskType)

	rationale := fmt.Sprintf("Based on your %s tier and %s priority", settings.Tier, settings.Priority)
	if settings.PreferredModel != "" && settings.PreferredModel == model.Name {
		rationale = "Preferred model configured for your company"
	}
	companySuccess(c, gin.H{
		"recommended_model": model,
		"rationale":         rationale,
	})
}

// Metrics returns usage aggregates for one model or for every tracked model.
func (h *ModelHandler) Metrics(c *gin.Context) {
	out := make(map[string]any)
	if name := strings.TrimSpace(c.Query("model_name")); name != "" {
		if record, ok := h.tracker.Get(name); ok {
			out[name] = record
		} else {
			out[name] = nil
		}
	} else {
		for _, record := range h.tracker.All() {
			out[record.ModelName] = record
		}
	}
	companySuccess(c, gin.H{"metrics": out})
}

// Health reports catalog availability.
func (h *ModelHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"service":          "model-selector",
		"models_available": h.catalog.Len(),
	})
}
