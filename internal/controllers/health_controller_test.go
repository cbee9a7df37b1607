package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockedloop/tempus-fugit/internal/services"
	"github.com/lockedloop/tempus-fugit/internal/storage"
	"github.com/lockedloop/tempus-fugit/internal/testutil"
)

func newTestHealthController(t *testing.T) (*HealthController, services.ContainerServiceInterface) {
	t.Helper()
	local := testutil.NewMockBackend()
	store := storage.NewStoreWithBackends(local, nil, &testutil.MockLogger{}, &testutil.MockMetrics{})
	svc := services.NewContainerService(store, &testutil.MockLogger{}, &testutil.MockMetrics{})
	require.NoError(t, svc.LoadContainers())
	return NewHealthController(svc, store), svc
}

func TestHealth(t *testing.T) {
	hc, svc := newTestHealthController(t)
	svc.Tick(time.Now())

	rec := httptest.NewRecorder()
	hc.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Containers)
	assert.NotEmpty(t, resp.LastTick)
	assert.False(t, resp.SyncEnabled)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, 0.0)
}

func TestHealth_BeforeFirstTick(t *testing.T) {
	hc, _ := newTestHealthController(t)

	rec := httptest.NewRecorder()
	hc.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.LastTick)
}

func TestHealth_RejectsNonGet(t *testing.T) {
	hc, _ := newTestHealthController(t)

	rec := httptest.NewRecorder()
	hc.Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h0m0s", formatDuration(0))
	assert.Equal(t, "0h1m5s", formatDuration(65*time.Second))
	assert.Equal(t, "25h0m1s", formatDuration(25*time.Hour+time.Second))
}
