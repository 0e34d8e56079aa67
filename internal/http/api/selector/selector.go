// Package selector wires the model selection and evaluation HTTP surface.
package selector

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CLIProxyAPISelector/internal/auth"
	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	"github.com/router-for-me/CLIProxyAPISelector/internal/evaluation"
	handlers "github.com/router-for-me/CLIProxyAPISelector/internal/http/api/selector/handlers"
	"github.com/router-for-me/CLIProxyAPISelector/internal/metrics"
	"github.com/router-for-me/CLIProxyAPISelector/internal/ratelimit"
	"github.com/router-for-me/CLIProxyAPISelector/internal/selection"
	"github.com/router-for-me/CLIProxyAPISelector/internal/store"
	log "github.com/sirupsen/logrus"
)

// CompanyHeader carries the company id when token auth is disabled.
const CompanyHeader = "X-Company-ID"

// Deps collects everything the routes need.
type Deps struct {
	Catalog     *catalog.Catalog
	Policy      *selection.Policy
	Engine      *evaluation.Engine
	Tracker     *metrics.Tracker
	Settings    handlers.SettingsStore
	Persisted   handlers.EvaluationReader
	Durable     bool
	RateLimiter *ratelimit.Manager
	JWTSecret   string
}

// RegisterRoutes registers the selector routes on r.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Catalog == nil || deps.Engine == nil {
		return
	}
	policy := deps.Policy
	if policy == nil {
		policy = selection.NewPolicy(deps.Catalog)
	}
	settings := deps.Settings
	if settings == nil {
		settings = store.NewGormCompanySettingsStore(nil)
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = metrics.NewTracker()
	}

	modelHandler := handlers.NewModelHandler(deps.Catalog, policy, tracker, settings)
	evaluationHandler := handlers.NewEvaluationHandler(deps.Engine, deps.Persisted)
	settingsHandler := handlers.NewSettingsHandler(settings, deps.Catalog, deps.Durable)

	r.GET("/healthz", modelHandler.Health)

	group := r.Group("/models")
	group.GET("/health", modelHandler.Health)
	group.GET("/list", modelHandler.List)
	group.GET("/info/:model_name", modelHandler.Info)

	authed := group.Group("")
	authed.Use(companyMiddleware(deps.JWTSecret))

	limited := func(route string, h gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{rateLimitMiddleware(deps.RateLimiter, route), h}
	}
	authed.POST("/select", limited("select", modelHandler.Select)...)
	authed.GET("/recommend", limited("recommend", modelHandler.Recommend)...)
	authed.POST("/recommend", limited("recommend", modelHandler.Recommend)...)
	authed.GET("/metrics", limited("metrics", modelHandler.Metrics)...)
	authed.POST("/evaluate", limited("evaluate", evaluationHandler.Evaluate)...)
	authed.POST("/optimize-hyperparameters", limited("optimize", evaluationHandler.Optimize)...)
	authed.POST("/ab-test", limited("ab-test", evaluationHandler.ABTest)...)
	authed.POST("/suggest-upgrade", limited("suggest-upgrade", evaluationHandler.SuggestUpgrade)...)
	authed.GET("/evaluation-history", limited("history", evaluationHandler.History)...)
	authed.GET("/optimizations", limited("history", evaluationHandler.Optimizations)...)
	authed.GET("/settings", settingsHandler.Get)
	authed.PUT("/settings", settingsHandler.Update)
}

// companyMiddleware resolves the caller company from a bearer token, or from the
// X-Company-ID header when no secret is configured.
func companyMiddleware(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	return func(c *gin.Context) {
		if secret == "" {
			companyID := strings.TrimSpace(c.GetHeader(CompanyHeader))
			if companyID == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing company id"})
				return
			}
			c.Set(handlers.CompanyIDKey, companyID)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := auth.ParseCompanyToken(secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(handlers.CompanyIDKey, claims.CompanyID)
		c.Next()
	}
}

// rateLimitMiddleware counts one request per company against the route's window.
func rateLimitMiddleware(manager *ratelimit.Manager, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.Next()
			return
		}
		companyID := c.GetString(handlers.CompanyIDKey)
		result, errCheck := manager.Check(c.Request.Context(), companyID, route)
		if errCheck != nil {
			log.WithError(errCheck).WithField("route", route).Warn("rate limit check failed")
			c.Next()
			return
		}
		if result.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))
		}
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
