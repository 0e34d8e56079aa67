package store

import (
	"context"
	"fmt"
	"time"

	"github.com/router-for-me/CLIProxyAPISelector/internal/metrics"
	"github.com/router-for-me/CLIProxyAPISelector/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUsageStore persists tracker snapshots.
type GormUsageStore struct {
	db *gorm.DB
}

// NewGormUsageStore constructs a GormUsageStore.
func NewGormUsageStore(db *gorm.DB) *GormUsageStore { return &GormUsageStore{db: db} }

// SaveUsage upserts one row per model.
func (s *GormUsageStore) SaveUsage(ctx context.Context, records []metrics.Record) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("usage store: not initialized")
	}
	if len(records) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC()
	rows := make([]models.ModelUsage, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.ModelUsage{
			ModelName:     r.ModelName,
			TotalRequests: r.TotalRequests,
			TotalTokens:   r.TotalTokens,
			TotalCost:     r.TotalCost,
			AvgLatencyMs:  r.AvgLatencyMs,
			ErrorRate:     r.ErrorRate,
			LastUsed:      r.LastUsed.UTC(),
			UpdatedAt:     now,
		})
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_requests",
			"total_tokens",
			"total_cost",
			"avg_latency_ms",
			"error_rate",
			"last_used",
			"updated_at",
		}),
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("usage store: upsert: %w", err)
	}
	return nil
}

// LoadUsage returns every persisted snapshot.
func (s *GormUsageStore) LoadUsage(ctx context.Context) ([]metrics.Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("usage store: not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var rows []models.ModelUsage
	if err := s.db.WithContext(ctx).Order("model_name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("usage store: load: %w", err)
	}
	out := make([]metrics.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, metrics.Record{
			ModelName:     row.ModelName,
			TotalRequests: row.TotalRequests,
			TotalTokens:   row.TotalTokens,
			TotalCost:     row.TotalCost,
			AvgLatencyMs:  row.AvgLatencyMs,
			ErrorRate:     row.ErrorRate,
			LastUsed:      row.LastUsed.UTC(),
		})
	}
	return out, nil
}

var _ metrics.Sink = (*GormUsageStore)(nil)
