// Package metrics keeps running per-model usage aggregates fed by real request outcomes.
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Record is the aggregate for one model.
type Record struct {
	ModelName     string    `json:"model_name"`
	TotalRequests int64     `json:"total_requests"`
	TotalTokens   int64     `json:"total_tokens"`
	TotalCost     float64   `json:"total_cost"`
	AvgLatencyMs  float64   `json:"avg_latency_ms"`
	ErrorRate     float64   `json:"error_rate"`
	LastUsed      time.Time `json:"last_used"`
}

type entry struct {
	mu     sync.Mutex
	record Record
}

// Tracker aggregates usage per model. Updates to one model are serialized by that model's
// lock; different models update in parallel.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*entry
	nowFn   func() time.Time
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*entry), nowFn: time.Now}
}

func (t *Tracker) entryFor(model string) *entry {
	t.mu.RLock()
	e, ok := t.entries[model]
	t.mu.RUnlock()
	if ok {
		return e
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok = t.entries[model]; ok {
		return e
	}
	e = &entry{record: Record{ModelName: model}}
	t.entries[model] = e
	return e
}

// Update folds one request outcome into the model's aggregate. Average latency and error
// rate are running means over every call, with a failure counted as 1 and a success as 0.
func (t *Tracker) Update(model string, tokens int64, cost float64, latencyMs int64, success bool) {
	if t == nil {
		return
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	e := t.entryFor(model)

	e.mu.Lock()
	defer e.mu.Unlock()
	r := &e.record
	r.TotalRequests++
	r.TotalTokens += tokens
	r.TotalCost += cost
	n := float64(r.TotalRequests)
	r.AvgLatencyMs = (r.AvgLatencyMs*(n-1) + float64(latencyMs)) / n
	failure := 0.0
	if !success {
		failure = 1
	}
	r.ErrorRate = (r.ErrorRate*(n-1) + failure) / n
	r.LastUsed = t.nowFn().UTC()
}

// Get returns the aggregate for model.
func (t *Tracker) Get(model string) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	t.mu.RLock()
	e, ok := t.entries[strings.TrimSpace(model)]
	t.mu.RUnlock()
	if !ok {
		return Record{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record, true
}

// All returns every aggregate ordered by model name.
func (t *Tracker) All() []Record {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	list := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		list = append(list, e)
	}
	t.mu.RUnlock()

	out := make([]Record, 0, len(list))
	for _, e := range list {
		e.mu.Lock()
		out = append(out, e.record)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelName < out[j].ModelName })
	return out
}

// Restore seeds the tracker with previously persisted aggregates. Models already tracked
// are left untouched.
func (t *Tracker) Restore(records []Record) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range records {
		name := strings.TrimSpace(r.ModelName)
		if name == "" {
			continue
		}
		if _, exists := t.entries[name]; exists {
			continue
		}
		r.ModelName = name
		t.entries[name] = &entry{record: r}
	}
}
