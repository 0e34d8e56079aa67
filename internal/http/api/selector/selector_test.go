package selector

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CLIProxyAPISelector/internal/auth"
	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	"github.com/router-for-me/CLIProxyAPISelector/internal/evaluation"
	"github.com/router-for-me/CLIProxyAPISelector/internal/metrics"
	"github.com/router-for-me/CLIProxyAPISelector/internal/ratelimit"
	"github.com/router-for-me/CLIProxyAPISelector/internal/selection"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type memorySettings struct {
	mu   sync.Mutex
	rows map[string]selection.CompanySettings
}

func (m *memorySettings) Get(_ context.Context, companyID string) (selection.CompanySettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.rows[companyID]; ok {
		return s, nil
	}
	return selection.CompanySettings{Tier: selection.TierPro, Priority: selection.PriorityBalanced}, nil
}

func (m *memorySettings) Put(_ context.Context, companyID string, s selection.CompanySettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = make(map[string]selection.CompanySettings)
	}
	if s.Tier == "" {
		s.Tier = selection.TierPro
	}
	if s.Priority == "" {
		s.Priority = selection.PriorityBalanced
	}
	m.rows[companyID] = s
	return nil
}

type staticReader struct {
	history map[string][]evaluation.Evaluation
}

func (r staticReader) ListEvaluations(context.Context, string) (map[string][]evaluation.Evaluation, error) {
	return r.history, nil
}

func (r staticReader) ListOptimizations(context.Context, string, int) ([]evaluation.OptimizationResult, error) {
	return []evaluation.OptimizationResult{{ModelName: "gpt-4-turbo", TaskType: "chat", BestScore: 0.85}}, nil
}

func newTestRouter(t *testing.T, mutate func(*Deps)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c := catalog.NewDefault()
	deps := Deps{
		Catalog: c,
		Policy:  selection.NewPolicy(c),
		Engine: evaluation.NewEngine(c,
			evaluation.WithDraw(func(i int) float64 { return (float64(i) + 0.5) / 100 }),
			evaluation.WithSampleDelay(0),
			evaluation.WithClock(func() time.Time { return fixedNow }),
		),
		Tracker:  metrics.NewTracker(),
		Settings: &memorySettings{},
		Durable:  true,
	}
	if mutate != nil {
		mutate(&deps)
	}
	r := gin.New()
	RegisterRoutes(r, deps)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func sampleData(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"prompt": "hello", "index": i}
	}
	return out
}

var acme = map[string]string{CompanyHeader: "acme"}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, path := range []string{"/healthz", "/models/health"} {
		rec, body := doJSON(t, r, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if body["service"] != "model-selector" || body["models_available"] != float64(10) {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
}

func TestListFiltersAndValidates(t *testing.T) {
	r := newTestRouter(t, nil)

	rec, body := doJSON(t, r, http.MethodGet, "/models/list?category=vision", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["count"] != float64(1) {
		t.Fatalf("expected one vision model, got %v", body["count"])
	}

	rec, _ = doJSON(t, r, http.MethodGet, "/models/list?provider=nobody", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid provider, got %d", rec.Code)
	}
}

func TestInfoUnknownModel(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, _ := doJSON(t, r, http.MethodGet, "/models/info/gpt-9", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec, body := doJSON(t, r, http.MethodGet, "/models/info/gpt-4", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	model, _ := body["model"].(map[string]any)
	if model["name"] != "gpt-4" {
		t.Fatalf("unexpected model %v", body["model"])
	}
}

func TestCompanyRequired(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, _ := doJSON(t, r, http.MethodPost, "/models/select", map[string]any{"task_type": "chat"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSelectUsesCompanyTier(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, body := doJSON(t, r, http.MethodPost, "/models/select", map[string]any{
		"task_type": "chat",
		"priority":  "accuracy",
	}, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["status"] != "success" || body["company_id"] != "acme" {
		t.Fatalf("unexpected envelope %v", body)
	}
	model, _ := body["selected_model"].(map[string]any)
	if model["name"] != "gpt-4-turbo" {
		t.Fatalf("expected gpt-4-turbo, got %v", model["name"])
	}
	criteria, _ := body["criteria"].(map[string]any)
	if criteria["subscription_tier"] != "pro" {
		t.Fatalf("expected pro tier, got %v", criteria["subscription_tier"])
	}
}

func TestSelectRequiresTaskType(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, _ := doJSON(t, r, http.MethodPost, "/models/select", map[string]any{"priority": "cost"}, acme)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBearerTokenAuth(t *testing.T) {
	secret := "test-secret"
	r := newTestRouter(t, func(d *Deps) { d.JWTSecret = secret })

	token, err := auth.IssueCompanyToken(secret, "globex", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, body := doJSON(t, r, http.MethodGet, "/models/recommend?task_type=chat", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["company_id"] != "globex" {
		t.Fatalf("expected globex, got %v", body["company_id"])
	}
	if body["rationale"] != "Based on your pro tier and balanced priority" {
		t.Fatalf("unexpected rationale %v", body["rationale"])
	}

	rec, _ = doJSON(t, r, http.MethodGet, "/models/recommend?task_type=chat", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}

	rec, _ = doJSON(t, r, http.MethodGet, "/models/recommend?task_type=chat", nil, acme)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected header auth to be ignored when a secret is set, got %d", rec.Code)
	}
}

func TestRecommendHonorsPreferredModel(t *testing.T) {
	r := newTestRouter(t, nil)

	rec, _ := doJSON(t, r, http.MethodPut, "/models/settings", map[string]any{
		"preferred_model": "claude-3-haiku-20240307",
		"tier":            "enterprise",
	}, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("update settings: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, body := doJSON(t, r, http.MethodPost, "/models/recommend", map[string]any{"task_type": "chat"}, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	model, _ := body["recommended_model"].(map[string]any)
	if model["name"] != "claude-3-haiku-20240307" {
		t.Fatalf("expected preferred model, got %v", model["name"])
	}

	rec, _ = doJSON(t, r, http.MethodGet, "/models/recommend", nil, acme)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without task_type, got %d", rec.Code)
	}
}

func TestSettingsValidation(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, _ := doJSON(t, r, http.MethodPut, "/models/settings", map[string]any{"preferred_model": "gpt-9"}, acme)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown model, got %d", rec.Code)
	}
	rec, _ = doJSON(t, r, http.MethodPut, "/models/settings", map[string]any{"max_cost_per_1k": -1}, acme)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative budget, got %d", rec.Code)
	}

	r = newTestRouter(t, func(d *Deps) { d.Durable = false })
	rec, _ = doJSON(t, r, http.MethodPut, "/models/settings", map[string]any{"tier": "free"}, acme)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without durable storage, got %d", rec.Code)
	}
	rec, body := doJSON(t, r, http.MethodGet, "/models/settings", nil, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	settings, _ := body["settings"].(map[string]any)
	if settings["tier"] != "pro" {
		t.Fatalf("expected default tier, got %v", settings["tier"])
	}
}

func TestMetricsReportsUnknownAsNull(t *testing.T) {
	tracker := metrics.NewTracker()
	tracker.Update("gpt-4", 100, 0.05, 800, true)
	r := newTestRouter(t, func(d *Deps) { d.Tracker = tracker })

	_, body := doJSON(t, r, http.MethodGet, "/models/metrics?model_name=gpt-9", nil, acme)
	m, _ := body["metrics"].(map[string]any)
	if v, ok := m["gpt-9"]; !ok || v != nil {
		t.Fatalf("expected null entry for gpt-9, got %v", m)
	}

	_, body = doJSON(t, r, http.MethodGet, "/models/metrics", nil, acme)
	m, _ = body["metrics"].(map[string]any)
	record, _ := m["gpt-4"].(map[string]any)
	if record["total_requests"] != float64(1) {
		t.Fatalf("expected one request for gpt-4, got %v", m)
	}
}

func TestEvaluateRanksByAccuracy(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, body := doJSON(t, r, http.MethodPost, "/models/evaluate", map[string]any{
		"task_type":   "chat",
		"sample_data": sampleData(100),
		"model_list":  []string{"gpt-3.5-turbo", "gpt-4-turbo"},
	}, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["best_model"] != "gpt-4-turbo" {
		t.Fatalf("expected gpt-4-turbo, got %v", body["best_model"])
	}
	evals, _ := body["evaluations"].([]any)
	if len(evals) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(evals))
	}
	first, _ := evals[0].(map[string]any)
	if first["accuracy"] != 0.95 || first["sample_size"] != float64(100) {
		t.Fatalf("unexpected first evaluation %v", first)
	}

	_, body = doJSON(t, r, http.MethodGet, "/models/evaluation-history?task_type=chat", nil, acme)
	history, _ := body["history"].(map[string]any)
	if _, ok := history["chat_2026-10-15"]; !ok {
		t.Fatalf("expected history key chat_2026-10-15, got %v", history)
	}
}

func TestEvaluateEmptySamples(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, _ := doJSON(t, r, http.MethodPost, "/models/evaluate", map[string]any{
		"task_type":   "chat",
		"sample_data": []map[string]any{},
	}, acme)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOptimizeDefaultsTrials(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, body := doJSON(t, r, http.MethodPost, "/models/optimize-hyperparameters", map[string]any{
		"model_name":  "gpt-4",
		"task_type":   "chat",
		"sample_data": sampleData(1),
	}, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result, _ := body["optimization_result"].(map[string]any)
	trials, _ := result["trials"].([]any)
	if len(trials) != evaluation.DefaultTrials {
		t.Fatalf("expected %d trials, got %d", evaluation.DefaultTrials, len(trials))
	}

	_, body = doJSON(t, r, http.MethodPost, "/models/optimize-hyperparameters", map[string]any{
		"model_name":  "gpt-4",
		"task_type":   "chat",
		"sample_data": sampleData(1),
		"n_trials":    3,
	}, acme)
	result, _ = body["optimization_result"].(map[string]any)
	trials, _ = result["trials"].([]any)
	if len(trials) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(trials))
	}
}

func TestABTestAndUpgrade(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, body := doJSON(t, r, http.MethodPost, "/models/ab-test", map[string]any{
		"model_a":     "gpt-3.5-turbo",
		"model_b":     "claude-3-haiku-20240307",
		"task_type":   "chat",
		"sample_data": sampleData(10),
		"metric":      "latency",
	}, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result, _ := body["test_result"].(map[string]any)
	if result["winner"] != "claude-3-haiku-20240307" {
		t.Fatalf("expected haiku to win on latency, got %v", result["winner"])
	}

	rec, body = doJSON(t, r, http.MethodPost, "/models/suggest-upgrade", map[string]any{
		"current_model":  "gpt-3.5-turbo",
		"task_type":      "chat",
		"monthly_budget": 0,
		"sample_data":    sampleData(10),
	}, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	suggestion, _ := body["suggestion"].(map[string]any)
	if suggestion["recommendation"] != evaluation.RecommendKeepCurrent {
		t.Fatalf("expected keep_current with zero budget, got %v", suggestion)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/models/suggest-upgrade", map[string]any{
		"current_model": "gpt-3.5-turbo",
		"task_type":     "chat",
		"sample_data":   sampleData(10),
	}, acme)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without monthly_budget, got %d", rec.Code)
	}
}

func TestPersistedHistory(t *testing.T) {
	r := newTestRouter(t, nil)
	rec, _ := doJSON(t, r, http.MethodGet, "/models/evaluation-history?persisted=true", nil, acme)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without storage, got %d", rec.Code)
	}

	reader := staticReader{history: map[string][]evaluation.Evaluation{
		"chat_2026-10-14": {{ModelName: "gpt-4", TaskType: "chat", Accuracy: 0.9}},
	}}
	r = newTestRouter(t, func(d *Deps) { d.Persisted = reader })
	_, body := doJSON(t, r, http.MethodGet, "/models/evaluation-history?persisted=true", nil, acme)
	history, _ := body["history"].(map[string]any)
	if _, ok := history["chat_2026-10-14"]; !ok {
		t.Fatalf("expected persisted key, got %v", history)
	}

	_, body = doJSON(t, r, http.MethodGet, "/models/optimizations?model_name=gpt-4-turbo", nil, acme)
	runs, _ := body["optimizations"].([]any)
	if len(runs) != 1 {
		t.Fatalf("expected one optimization run, got %v", body)
	}
	rec, _ = doJSON(t, r, http.MethodGet, "/models/optimizations?limit=zero", nil, acme)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestRateLimitPerRoute(t *testing.T) {
	manager := ratelimit.NewManager(
		ratelimit.StaticSettings(ratelimit.SettingsConfig{Routes: map[string]int{"select": 1}}),
		func() time.Time { return fixedNow },
		nil,
	)
	r := newTestRouter(t, func(d *Deps) { d.RateLimiter = manager })
	body := map[string]any{"task_type": "chat"}

	rec, _ := doJSON(t, r, http.MethodPost, "/models/select", body, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("expected limit header, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec, _ = doJSON(t, r, http.MethodPost, "/models/select", body, acme)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/models/select", body, map[string]string{CompanyHeader: "globex"})
	if rec.Code != http.StatusOK {
		t.Fatalf("other company: expected 200, got %d", rec.Code)
	}
	rec, _ = doJSON(t, r, http.MethodGet, "/models/recommend?task_type=chat", nil, acme)
	if rec.Code != http.StatusOK {
		t.Fatalf("unlimited route: expected 200, got %d", rec.Code)
	}
}
