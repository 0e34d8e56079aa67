package models

import "time"

// ModelUsage is the persisted snapshot of a model's running usage aggregate.
type ModelUsage struct {
	ModelName     string    `gorm:"type:varchar(255);primaryKey"`
	TotalRequests int64     `gorm:"not null;default:0"`
	TotalTokens   int64     `gorm:"not null;default:0"`
	TotalCost     float64   `gorm:"type:decimal(20,10);not null;default:0"`
	AvgLatencyMs  float64   `gorm:"not null;default:0"`
	ErrorRate     float64   `gorm:"not null;default:0"`
	LastUsed      time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName overrides the default table name.
func (ModelUsage) TableName() string {
	return "model_usage"
}
