package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantengine/internal/api/handlers"
	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/metrics"
	"github.com/wonny/quantengine/internal/scheduler"
	"github.com/wonny/quantengine/internal/store"
	"github.com/wonny/quantengine/pkg/database"
	"github.com/wonny/quantengine/pkg/logger"
)

type fakeDB struct{ status database.HealthStatus }

func (f fakeDB) HealthCheck(context.Context) database.HealthStatus { return f.status }

type brokenSource struct{}

func (brokenSource) LatestRanking(context.Context) (*contracts.Ranking, error) {
	return nil, errors.New("connection reset")
}

type fakeRunner struct {
	ran []string
}

func (f *fakeRunner) GetJobStats() map[string]scheduler.JobStats {
	return map[string]scheduler.JobStats{"scan": {JobName: "scan", Schedule: "0 0 19 * * 1-5"}}
}

func (f *fakeRunner) RunJob(_ context.Context, name string) (scheduler.JobResult, error) {
	f.ran = append(f.ran, name)
	return scheduler.JobResult{JobName: name, Attempts: 1, Success: true}, nil
}

type env struct {
	router   http.Handler
	rankings *store.MemoryRankingStore
	runner   *fakeRunner
	recorder *metrics.Recorder
}

func newEnv(t *testing.T, db handlers.HealthChecker) env {
	t.Helper()
	log := logger.NewNop()
	reg := prometheus.NewRegistry()
	e := env{
		rankings: store.NewMemoryRankingStore(),
		runner:   &fakeRunner{},
		recorder: metrics.NewRecorder(reg),
	}
	e.router = NewRouter(Handlers{
		Health:   handlers.NewHealthHandler(db, "quant-engine"),
		Rankings: handlers.NewRankingHandler(e.rankings, log),
		Jobs:     handlers.NewJobHandler(e.runner, log),
	}, reg, log)
	return e
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		db     handlers.HealthChecker
		code   int
		status string
	}{
		{"no database", nil, http.StatusOK, "ok"},
		{"healthy", fakeDB{database.HealthStatus{Healthy: true}}, http.StatusOK, "ok"},
		{"unreachable", fakeDB{database.HealthStatus{Error: "dial tcp: refused"}}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newEnv(t, tt.db).router, http.MethodGet, "/health")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.status, decode(t, rec)["status"])
		})
	}
}

func TestMetrics(t *testing.T) {
	e := newEnv(t, nil)
	e.recorder.RecordFailure("scanner")

	rec := do(t, e.router, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `quant_engine_run_failures_total{component="scanner"} 1`)
}

func TestRankings(t *testing.T) {
	e := newEnv(t, nil)

	rec := do(t, e.router, http.MethodGet, "/api/rankings/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, e.rankings.SaveRanking(context.Background(), &contracts.Ranking{
		RunID: "run-1",
		Date:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Items: []contracts.RankingItem{
			{Position: 1, Ticker: "ITUB4", Profile: contracts.ProfileDefensive, Score: 80},
			{Position: 1, Ticker: "WEGE3", Profile: contracts.ProfileModerate, Score: 75},
		},
	}))

	rec = do(t, e.router, http.MethodGet, "/api/rankings/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var ranking contracts.Ranking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	assert.Equal(t, "run-1", ranking.RunID)
	assert.Len(t, ranking.Items, 2)

	rec = do(t, e.router, http.MethodGet, "/api/rankings/latest/moderate")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "MODERATE", body["profile"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "WEGE3", items[0].(map[string]interface{})["ticker"])

	rec = do(t, e.router, http.MethodGet, "/api/rankings/latest/yolo")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankings_SourceError(t *testing.T) {
	log := logger.NewNop()
	router := NewRouter(Handlers{
		Health:   handlers.NewHealthHandler(nil, "quant-engine"),
		Rankings: handlers.NewRankingHandler(brokenSource{}, log),
	}, prometheus.NewRegistry(), log)

	rec := do(t, router, http.MethodGet, "/api/rankings/latest")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// no scheduler, no job routes
	rec = do(t, router, http.MethodGet, "/api/jobs")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobs(t *testing.T) {
	e := newEnv(t, nil)

	rec := do(t, e.router, http.MethodGet, "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "scan")

	rec = do(t, e.router, http.MethodPost, "/api/jobs/scan/run")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
	assert.Equal(t, []string{"scan"}, e.runner.ran)

	rec = do(t, e.router, http.MethodPost, "/api/jobs/rank/run")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e.router, http.MethodGet, "/api/jobs/scan/run")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/anything")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Internal server error"))
}
