package evaluation

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

const historyDateLayout = "2006-01-02"

// DefaultHistoryRetention bounds how long daily evaluation batches are kept in memory.
const DefaultHistoryRetention = 30 * 24 * time.Hour

// HistoryKey returns the key a batch evaluated at `at` is stored under.
func HistoryKey(taskType string, at time.Time) string {
	return fmt.Sprintf("%s_%s", taskType, at.UTC().Format(historyDateLayout))
}

// HistoryCutoff returns the first UTC day still retained when a batch evaluated at `at`
// is written. Batches from earlier days are pruned. Non-positive retention keeps everything
// and yields the zero time.
func HistoryCutoff(at time.Time, retention time.Duration) time.Time {
	if retention <= 0 {
		return time.Time{}
	}
	return historyDay(at).Add(-retention)
}

func historyDay(at time.Time) time.Time {
	at = at.UTC()
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
}

type historyEntry struct {
	taskType    string
	day         time.Time
	evaluations []Evaluation
}

// History keeps the latest evaluation batch per task type and UTC day. A later batch for
// the same key replaces the earlier one; days older than the retention window are dropped
// on every write.
type History struct {
	mu        sync.RWMutex
	entries   map[string]historyEntry
	retention time.Duration
}

// NewHistory constructs a History. Non-positive retention disables pruning.
func NewHistory(retention time.Duration) *History {
	return &History{
		entries:   make(map[string]historyEntry),
		retention: retention,
	}
}

// Put stores evals under the key for taskType and at, returning the key.
func (h *History) Put(taskType string, at time.Time, evals []Evaluation) string {
	key := HistoryKey(taskType, at)
	day := historyDay(at)

	stored := make([]Evaluation, len(evals))
	copy(stored, evals)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[key] = historyEntry{taskType: taskType, day: day, evaluations: stored}
	if cutoff := HistoryCutoff(at, h.retention); !cutoff.IsZero() {
		for k, entry := range h.entries {
			if entry.day.Before(cutoff) {
				delete(h.entries, k)
			}
		}
	}
	return key
}

// Get returns stored batches keyed by history key. An empty taskType returns everything.
func (h *History) Get(taskType string) map[string][]Evaluation {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string][]Evaluation, len(h.entries))
	for key, entry := range h.entries {
		if taskType != "" && entry.taskType != taskType {
			continue
		}
		evals := make([]Evaluation, len(entry.evaluations))
		copy(evals, entry.evaluations)
		out[key] = evals
	}
	return out
}

// Keys returns the stored keys in lexical order.
func (h *History) Keys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.entries))
	for k := range h.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
