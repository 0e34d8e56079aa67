package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	"github.com/router-for-me/CLIProxyAPISelector/internal/evaluation"
	log "github.com/sirupsen/logrus"
)

// CompanyIDKey is the gin context key holding the resolved company id.
const CompanyIDKey = "companyID"

// companySuccess writes a 200 response carrying the caller's company id.
func companySuccess(c *gin.Context, body gin.H) {
	out := gin.H{
		"status":     "success",
		"company_id": c.GetString(CompanyIDKey),
	}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

// writeError maps engine and catalog errors onto HTTP statuses.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, evaluation.ErrEmptySampleData), errors.Is(err, evaluation.ErrUnknownModel):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrModelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": op + " interrupted"})
	default:
		log.WithError(err).WithField("op", op).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}

func toSamples(raw []map[string]any) []evaluation.Sample {
	out := make([]evaluation.Sample, len(raw))
	for i, s := range raw {
		out[i] = evaluation.Sample(s)
	}
	return out
}
