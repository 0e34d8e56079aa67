package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/router-for-me/CLIProxyAPISelector/internal/evaluation"
	"github.com/router-for-me/CLIProxyAPISelector/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormEvaluationStore persists evaluation batches and optimization runs.
type GormEvaluationStore struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
}

// NewGormEvaluationStore constructs a GormEvaluationStore. Each write prunes rows from UTC
// days before evaluation.HistoryCutoff of the batch, matching the in-memory history;
// non-positive retention keeps everything.
func NewGormEvaluationStore(db *gorm.DB, retention time.Duration) *GormEvaluationStore {
	return &GormEvaluationStore{db: db, retention: retention, now: time.Now}
}

// RecordEvaluations replaces the batch stored under key.
func (s *GormEvaluationStore) RecordEvaluations(ctx context.Context, key string, evals []evaluation.Evaluation) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("evaluation store: not initialized")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("evaluation store: missing key")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	batchAt := time.Time{}
	rows := make([]models.Evaluation, 0, len(evals))
	for i, e := range evals {
		if e.EvaluatedAt.After(batchAt) {
			batchAt = e.EvaluatedAt
		}
		rows = append(rows, models.Evaluation{
			ID:             uuid.NewString(),
			HistoryKey:     key,
			TaskType:       e.TaskType,
			ModelName:      e.ModelName,
			Rank:           i,
			Accuracy:       e.Accuracy,
			LatencyMs:      e.LatencyMs,
			CostPerRequest: e.CostPerRequest,
			SampleSize:     e.SampleSize,
			EvaluatedAt:    e.EvaluatedAt.UTC(),
		})
	}

	if batchAt.IsZero() {
		batchAt = s.now()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("history_key = ?", key).Delete(&models.Evaluation{}).Error; err != nil {
			return fmt.Errorf("evaluation store: replace: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("evaluation store: insert: %w", err)
			}
		}
		if cutoff := evaluation.HistoryCutoff(batchAt, s.retention); !cutoff.IsZero() {
			if err := tx.Where("evaluated_at < ?", cutoff).Delete(&models.Evaluation{}).Error; err != nil {
				return fmt.Errorf("evaluation store: prune: %w", err)
			}
		}
		return nil
	})
}

// ListEvaluations returns stored batches keyed by history key. An empty taskType returns all.
func (s *GormEvaluationStore) ListEvaluations(ctx context.Context, taskType string) (map[string][]evaluation.Evaluation, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("evaluation store: not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := s.db.WithContext(ctx).Model(&models.Evaluation{})
	if taskType = strings.TrimSpace(taskType); taskType != "" {
		query = query.Where("task_type = ?", taskType)
	}
	var rows []models.Evaluation
	if err := query.Order("history_key ASC").Order("rank ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("evaluation store: list: %w", err)
	}

	out := make(map[string][]evaluation.Evaluation)
	for _, row := range rows {
		out[row.HistoryKey] = append(out[row.HistoryKey], evaluation.Evaluation{
			ModelName:      row.ModelName,
			TaskType:       row.TaskType,
			Accuracy:       row.Accuracy,
			LatencyMs:      row.LatencyMs,
			CostPerRequest: row.CostPerRequest,
			SampleSize:     row.SampleSize,
			EvaluatedAt:    row.EvaluatedAt.UTC(),
		})
	}
	return out, nil
}

// RecordOptimization stores one hyperparameter search.
func (s *GormEvaluationStore) RecordOptimization(ctx context.Context, result evaluation.OptimizationResult) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("evaluation store: not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	bestParams, errMarshal := json.Marshal(result.BestParams)
	if errMarshal != nil {
		return fmt.Errorf("evaluation store: marshal best params: %w", errMarshal)
	}
	trials := result.Trials
	if trials == nil {
		trials = []evaluation.Trial{}
	}
	trialsJSON, errMarshal := json.Marshal(trials)
	if errMarshal != nil {
		return fmt.Errorf("evaluation store: marshal trials: %w", errMarshal)
	}

	row := models.OptimizationRun{
		ID:         uuid.NewString(),
		ModelName:  result.ModelName,
		TaskType:   result.TaskType,
		BestParams: datatypes.JSON(bestParams),
		BestScore:  result.BestScore,
		TrialCount: len(result.Trials),
		Trials:     datatypes.JSON(trialsJSON),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("evaluation store: insert optimization: %w", err)
	}
	return nil
}

// ListOptimizations returns the most recent runs for model, newest first. An empty model
// lists every model; non-positive limit defaults to 20.
func (s *GormEvaluationStore) ListOptimizations(ctx context.Context, model string, limit int) ([]evaluation.OptimizationResult, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("evaluation store: not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.OptimizationRun{})
	if model = strings.TrimSpace(model); model != "" {
		query = query.Where("model_name = ?", model)
	}
	var rows []models.OptimizationRun
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("evaluation store: list optimizations: %w", err)
	}

	out := make([]evaluation.OptimizationResult, 0, len(rows))
	for _, row := range rows {
		result := evaluation.OptimizationResult{
			ModelName: row.ModelName,
			TaskType:  row.TaskType,
			BestScore: row.BestScore,
		}
		if errUnmarshal := json.Unmarshal(row.BestParams, &result.BestParams); errUnmarshal != nil {
			return nil, fmt.Errorf("evaluation store: decode best params: %w", errUnmarshal)
		}
		if errUnmarshal := json.Unmarshal(row.Trials, &result.Trials); errUnmarshal != nil {
			return nil, fmt.Errorf("evaluation store: decode trials: %w", errUnmarshal)
		}
		out = append(out, result)
	}
	return out, nil
}

var _ evaluation.Recorder = (*GormEvaluationStore)(nil)
