package models

import "time"

// Evaluation stores one model result of a persisted evaluation batch.
type Evaluation struct {
	ID         string `gorm:"type:varchar(36);primaryKey"`                                          // Row UUID.
	HistoryKey string `gorm:"type:varchar(255);not null;index:idx_evaluations_key_rank,priority:1"` // <task_type>_<YYYY-MM-DD>.
	TaskType   string `gorm:"type:varchar(64);not null;index"`                                      // Requested task type.
	ModelName  string `gorm:"type:varchar(255);not null;index"`                                     // Evaluated model.
	Rank       int    `gorm:"not null;default:0;index:idx_evaluations_key_rank,priority:2"`         // Position within the batch.

	Accuracy       float64 `gorm:"not null;default:0"`                     // Fraction of correct samples.
	LatencyMs      int     `gorm:"not null;default:0"`                     // Mean latency.
	CostPerRequest float64 `gorm:"type:decimal(20,10);not null;default:0"` // Mean cost.
	SampleSize     int     `gorm:"not null;default:0"`

	EvaluatedAt time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
}

// TableName overrides the default table name.
func (Evaluation) TableName() string {
	return "evaluations"
}
