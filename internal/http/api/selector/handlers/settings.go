package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	"github.com/router-for-me/CLIProxyAPISelector/internal/selection"
	log "github.com/sirupsen/logrus"
)

// SettingsStore reads and writes per-company preferences.
type SettingsStore interface {
	Get(ctx context.Context, companyID string) (selection.CompanySettings, error)
	Put(ctx context.Context, companyID string, settings selection.CompanySettings) error
}

// SettingsHandler manages the caller company's model preferences.
type SettingsHandler struct {
	store   SettingsStore
	catalog *catalog.Catalog
	durable bool
}

// NewSettingsHandler constructs a SettingsHandler. Writes are refused unless durable.
func NewSettingsHandler(store SettingsStore, c *catalog.Catalog, durable bool) *SettingsHandler {
	return &SettingsHandler{store: store, catalog: c, durable: durable}
}

// Get returns the company's stored preferences or the defaults.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.store.Get(c.Request.Context(), c.GetString(CompanyIDKey))
	if err != nil {
		writeError(c, "load company settings", err)
		return
	}
	companySuccess(c, gin.H{"settings": settings})
}

type updateSettingsRequest struct {
	PreferredModel string   `json:"preferred_model"`
	Tier           string   `json:"tier"`
	Priority       string   `json:"priority"`
	MaxCostPer1K   *float64 `json:"max_cost_per_1k"`
}

// Update replaces the company's preferences.
func (h *SettingsHandler) Update(c *gin.Context) {
	if !h.durable {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "settings storage is not configured"})
		return
	}
	var body updateSettingsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	preferred := strings.TrimSpace(body.PreferredModel)
	if preferred != "" {
		if _, ok := h.catalog.Get(preferred); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown preferred_model"})
			return
		}
	}
	if body.MaxCostPer1K != nil && *body.MaxCostPer1K < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_cost_per_1k must be non-negative"})
		return
	}

	settings := selection.CompanySettings{
		PreferredModel: preferred,
		MaxCostPer1K:   body.MaxCostPer1K,
	}
	if raw := strings.TrimSpace(body.Tier); raw != "" {
		settings.Tier = selection.ParseTier(raw)
	}
	if raw := strings.TrimSpace(body.Priority); raw != "" {
		settings.Priority = selection.ParsePriority(raw)
	}

	companyID := c.GetString(CompanyIDKey)
	if errPut := h.store.Put(c.Request.Context(), companyID, settings); errPut != nil {
		writeError(c, "update company settings", errPut)
		return
	}
	stored, errGet := h.store.Get(c.Request.Context(), companyID)
	if errGet != nil {
		writeError(c, "load company settings", errGet)
		return
	}
	log.WithField("company_id", companyID).Info("company model settings updated")
	companySuccess(c, gin.H{"settings": stored})
}
