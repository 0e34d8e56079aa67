package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/router-for-me/CLIProxyAPISelector/internal/models"
	"github.com/router-for-me/CLIProxyAPISelector/internal/selection"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultCompanySettings applies to companies without a stored row.
func DefaultCompanySettings() selection.CompanySettings {
	return selection.CompanySettings{
		Tier:     selection.TierPro,
		Priority: selection.PriorityBalanced,
	}
}

// GormCompanySettingsStore reads and writes per-company model preferences.
type GormCompanySettingsStore struct {
	db *gorm.DB
}

// NewGormCompanySettingsStore constructs a GormCompanySettingsStore.
func NewGormCompanySettingsStore(db *gorm.DB) *GormCompanySettingsStore {
	return &GormCompanySettingsStore{db: db}
}

// Get returns the stored settings for companyID, or the defaults when none are stored.
func (s *GormCompanySettingsStore) Get(ctx context.Context, companyID string) (selection.CompanySettings, error) {
	if s == nil || s.db == nil {
		return DefaultCompanySettings(), nil
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return DefaultCompanySettings(), nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var row models.CompanySetting
	if err := s.db.WithContext(ctx).Where("company_id = ?", companyID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultCompanySettings(), nil
		}
		return selection.CompanySettings{}, fmt.Errorf("company settings: query: %w", err)
	}
	return selection.CompanySettings{
		PreferredModel: row.PreferredModel,
		Tier:           selection.ParseTier(row.Tier),
		Priority:       selection.ParsePriority(row.Priority),
		MaxCostPer1K:   row.MaxCostPer1K,
	}, nil
}

// Put upserts the settings for companyID.
func (s *GormCompanySettingsStore) Put(ctx context.Context, companyID string, settings selection.CompanySettings) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("company settings: not initialized")
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return fmt.Errorf("company settings: missing company id")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	defaults := DefaultCompanySettings()
	if settings.Tier == "" {
		settings.Tier = defaults.Tier
	}
	if settings.Priority == "" {
		settings.Priority = defaults.Priority
	}

	row := models.CompanySetting{
		CompanyID:      companyID,
		PreferredModel: strings.TrimSpace(settings.PreferredModel),
		Tier:           string(settings.Tier),
		Priority:       string(settings.Priority),
		MaxCostPer1K:   settings.MaxCostPer1K,
		Extra:          datatypes.JSON("{}"),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preferred_model", "tier", "priority", "max_cost_per_1k", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("company settings: upsert: %w", err)
	}
	return nil
}
