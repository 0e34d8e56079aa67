// Package evaluation benchmarks models against caller-supplied samples, searches
// hyperparameters, compares models head to head and proposes upgrades.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSampleDelay     = 10 * time.Millisecond
	defaultConcurrency     = 8
	defaultProviderTimeout = 30 * time.Second
)

// Draw returns a uniform value in [0,1) for the given sample index. A sample counts as
// correct when the draw falls below the model's accuracy.
type Draw func(sample int) float64

func randomDraw(int) float64 { return rand.Float64() }

// Recorder persists evaluation output. Failures are logged and never fail the request.
type Recorder interface {
	RecordEvaluations(ctx context.Context, key string, evals []Evaluation) error
	RecordOptimization(ctx context.Context, result OptimizationResult) error
}

// UsageRecorder receives failed provider calls so live metrics reflect them.
type UsageRecorder interface {
	Update(model string, tokens int64, cost float64, latencyMs int64, success bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithCostModel replaces the simulated cost model.
func WithCostModel(m CostModel) Option {
	return func(e *Engine) {
		if m != nil {
			e.costModel = m
		}
	}
}

// WithDraw replaces the random source used for per-sample correctness.
func WithDraw(d Draw) Option {
	return func(e *Engine) {
		if d != nil {
			e.draw = d
		}
	}
}

// WithSampleDelay sets the pause before each simulated sample and grid trial.
func WithSampleDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.sampleDelay = d
		}
	}
}

// WithConcurrency bounds in-flight samples per model.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithProviderTimeout bounds each cost model call.
func WithProviderTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.providerTimeout = d
		}
	}
}

// WithHistoryRetention sets how long in-memory history is kept.
func WithHistoryRetention(d time.Duration) Option {
	return func(e *Engine) { e.history = NewHistory(d) }
}

// WithRecorder mirrors evaluation output to durable storage.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithUsageRecorder reports failed cost model calls.
func WithUsageRecorder(r UsageRecorder) Option {
	return func(e *Engine) { e.usage = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.nowFn = now
		}
	}
}

// Engine runs evaluations against a catalog.
type Engine struct {
	catalog         *catalog.Catalog
	costModel       CostModel
	draw            Draw
	sampleDelay     time.Duration
	concurrency     int
	providerTimeout time.Duration
	history         *History
	recorder        Recorder
	usage           UsageRecorder
	nowFn           func() time.Time
}

// NewEngine builds an Engine over c.
func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:         c,
		costModel:       SimulatedCostModel{},
		draw:            randomDraw,
		sampleDelay:     defaultSampleDelay,
		concurrency:     defaultConcurrency,
		providerTimeout: defaultProviderTimeout,
		history:         NewHistory(DefaultHistoryRetention),
		nowFn:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// DefaultModelsForTask lists the models evaluated when the caller names none.
func DefaultModelsForTask(taskType string) []string {
	switch taskType {
	case "chat":
		return []string{"gpt-3.5-turbo", "gpt-4-turbo", "claude-3-haiku-20240307", "claude-3-sonnet-20240229"}
	case "vision":
		return []string{"gpt-4-vision-preview"}
	default:
		return []string{"gpt-3.5-turbo"}
	}
}

// EvaluateModels evaluates each model in order, skipping models whose evaluation fails,
// then orders the survivors by metric and records the batch in history.
func (e *Engine) EvaluateModels(ctx context.Context, taskType string, samples []Sample, models []string, metric Metric) ([]Evaluation, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySampleData
	}
	if len(models) == 0 {
		models = DefaultModelsForTask(taskType)
	}

	results := make([]Evaluation, 0, len(models))
	for _, model := range models {
		eval, err := e.EvaluateSingle(ctx, model, taskType, samples)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.WithError(err).WithField("model", model).Warn("evaluation: skipping model")
			continue
		}
		results = append(results, eval)
	}

	sortByMetric(results, metric)

	key := e.history.Put(taskType, e.nowFn(), results)
	if e.recorder != nil {
		if err := e.recorder.RecordEvaluations(ctx, key, results); err != nil {
			log.WithError(err).WithField("key", key).Warn("evaluation: persist history failed")
		}
	}
	return results, nil
}

func sortByMetric(evals []Evaluation, metric Metric) {
	switch metric {
	case MetricAccuracy:
		sort.SliceStable(evals, func(i, j int) bool { return evals[i].Accuracy > evals[j].Accuracy })
	case MetricLatency:
		sort.SliceStable(evals, func(i, j int) bool { return evals[i].LatencyMs < evals[j].LatencyMs })
	case MetricCost:
		sort.SliceStable(evals, func(i, j int) bool { return evals[i].CostPerRequest < evals[j].CostPerRequest })
	default:
		log.WithField("metric", metric).Debug("evaluation: unrecognized metric, keeping evaluation order")
	}
}

// EvaluateSingle runs every sample against model and aggregates the outcome. Samples are
// processed concurrently; the first failing sample fails the evaluation.
func (e *Engine) EvaluateSingle(ctx context.Context, model, taskType string, samples []Sample) (Evaluation, error) {
	if len(samples) == 0 {
		return Evaluation{}, ErrEmptySampleData
	}

	var (
		mu           sync.Mutex
		correct      int
		totalLatency int64
		totalCost    float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, sample := range samples {
		g.Go(func() error {
			if err := e.wait(gctx); err != nil {
				return err
			}
			chars, err := e.characterize(gctx, model, sample)
			if err != nil {
				return err
			}
			hit := e.draw(i) < chars.Accuracy

			mu.Lock()
			if hit {
				correct++
			}
			totalLatency += int64(chars.LatencyMs)
			totalCost += chars.CostPerRequest
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Evaluation{}, fmt.Errorf("evaluate %s: %w", model, err)
	}

	n := len(samples)
	return Evaluation{
		ModelName:      model,
		TaskType:       taskType,
		Accuracy:       float64(correct) / float64(n),
		LatencyMs:      int(totalLatency / int64(n)),
		CostPerRequest: totalCost / float64(n),
		SampleSize:     n,
		EvaluatedAt:    e.nowFn().UTC(),
	}, nil
}

func (e *Engine) characterize(ctx context.Context, model string, sample Sample) (Characteristics, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
	defer cancel()

	start := e.nowFn()
	chars, err := e.costModel.Characteristics(callCtx, model, sample)
	if err != nil {
		if e.usage != nil && !errors.Is(err, context.Canceled) {
			e.usage.Update(model, 0, 0, e.nowFn().Sub(start).Milliseconds(), false)
		}
		return Characteristics{}, err
	}
	return chars, nil
}

func (e *Engine) wait(ctx context.Context) error {
	if e.sampleDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(e.sampleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// History returns stored batches for taskType, or all batches when taskType is empty.
func (e *Engine) History(taskType string) map[string][]Evaluation {
	return e.history.Get(taskType)
}

// Catalog exposes the catalog the engine evaluates against.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }
