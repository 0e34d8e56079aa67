package models

import (
	"time"

	"gorm.io/datatypes"
)

// OptimizationRun stores a hyperparameter search outcome.
type OptimizationRun struct {
	ID         string         `gorm:"type:varchar(36);primaryKey"`
	ModelName  string         `gorm:"type:varchar(255);not null;index"`
	TaskType   string         `gorm:"type:varchar(64);not null;default:''"`
	BestParams datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Winning grid point.
	BestScore  float64        `gorm:"not null;default:0"`
	TrialCount int            `gorm:"not null;default:0"`
	Trials     datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Every scored grid point.
	CreatedAt  time.Time      `gorm:"not null;autoCreateTime;index"`
}

// TableName overrides the default table name.
func (OptimizationRun) TableName() string {
	return "optimization_runs"
}
