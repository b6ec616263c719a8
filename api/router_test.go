package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/vibcheck/cache"
	"github.com/use-agent/vibcheck/config"
	"github.com/use-agent/vibcheck/models"
)

func newTestRouter(t *testing.T, keys ...string) (*gin.Engine, *cache.Store) {
	t.Helper()
	cfg := config.Load()
	cfg.Server.Mode = gin.TestMode
	cfg.Server.APIKeys = keys
	store := cache.New(10)
	return NewRouter(store, cfg, time.Now()), store
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func passingRun(id string) *models.RunResult {
	return &models.RunResult{
		ID:      id,
		Target:  "file:///app/index.html",
		Record:  &models.Record{SystemLoaded: true},
		Verdict: &models.Verdict{Core: true, UI: true, Cards: true, WebGL: true, Effects: true, Overall: true},
	}
}

func TestHealth(t *testing.T) {
	r, store := newTestRouter(t, "secret")

	w := do(r, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code, "health is reachable without a key")

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "idle", resp.Status)
	assert.Zero(t, resp.Runs)

	store.Put(passingRun("a"))
	w = do(r, http.MethodGet, "/api/v1/health", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "passing", resp.Status)
	assert.Equal(t, 1, resp.Runs)

	store.Put(&models.RunResult{ID: "b", Error: &models.ErrorDetail{Code: models.ErrCodeNotReady}})
	w = do(r, http.MethodGet, "/api/v1/health", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failing", resp.Status)
}

func TestLatestRun(t *testing.T) {
	r, store := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/runs/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeNotFound)

	store.Put(passingRun("first"))
	store.Put(passingRun("second"))

	w = do(r, http.MethodGet, "/api/v1/runs/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run models.RunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, "second", run.ID)
	assert.True(t, run.Verdict.Overall)
}

func TestGetRun(t *testing.T) {
	r, store := newTestRouter(t)
	store.Put(passingRun("abc"))

	w := do(r, http.MethodGet, "/api/v1/runs/abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"abc"`)

	w = do(r, http.MethodGet, "/api/v1/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScreenshot(t *testing.T) {
	r, store := newTestRouter(t)
	dir := t.TempDir()
	shot := filepath.Join(dir, "vib34d-initial.png")
	require.NoError(t, os.WriteFile(shot, []byte("\x89PNG fake"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.txt"), []byte("nope"), 0o644))

	run := passingRun("s")
	run.Screenshots = []models.Screenshot{{State: models.StateInitial, File: shot}}
	store.Put(run)

	w := do(r, http.MethodGet, "/api/v1/screenshots/vib34d-initial.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG fake", w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/screenshots/private.txt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "only captured screenshots are served")
}

func TestAuth(t *testing.T) {
	r, store := newTestRouter(t, "k1", "k2")
	store.Put(passingRun("x"))

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "bad"}, http.StatusUnauthorized},
		{"x-api-key", map[string]string{"X-API-Key": "k1"}, http.StatusOK},
		{"bearer", map[string]string{"Authorization": "Bearer k2"}, http.StatusOK},
		{"basic is not bearer", map[string]string{"Authorization": "Basic k2"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/v1/runs/latest", tt.header)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), models.ErrCodeUnauthorized)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.Load()
	cfg.Server.Mode = gin.TestMode
	cfg.Server.RequestsPerSecond = 0.001
	cfg.Server.Burst = 2
	store := cache.New(1)
	store.Put(passingRun("r"))
	r := NewRouter(store, cfg, time.Now())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/runs/latest", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/runs/latest", nil).Code)

	w := do(r, http.MethodGet, "/api/v1/runs/latest", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeRateLimited)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/health", nil).Code, "health is never limited")
}
