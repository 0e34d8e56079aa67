package models

import (
	"time"

	"gorm.io/datatypes"
)

// CompanySetting stores per-company model preferences.
type CompanySetting struct {
	CompanyID      string         `gorm:"type:varchar(64);primaryKey"`
	PreferredModel string         `gorm:"type:varchar(255);not null;default:''"` // Explicit override, empty when unset.
	Tier           string         `gorm:"type:varchar(32);not null;default:'pro'"`
	Priority       string         `gorm:"type:varchar(32);not null;default:'balanced'"`
	MaxCostPer1K   *float64       `gorm:"column:max_cost_per_1k;type:decimal(20,10)"`
	Extra          datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"not null;autoUpdateTime"`
}

// TableName overrides the default table name.
func (CompanySetting) TableName() string {
	return "company_settings"
}
