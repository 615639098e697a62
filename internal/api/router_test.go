package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humaxai2025/gputop/internal/api/dto"
	"github.com/humaxai2025/gputop/internal/config"
	"github.com/humaxai2025/gputop/internal/domain"
	"github.com/humaxai2025/gputop/internal/registry"
)

// newTestRouter wires a real registry and threshold store behind the
// router, with a couple of ticked devices.
func newTestRouter(t *testing.T) (*Router, *registry.Registry, *config.ThresholdStore) {
	t.Helper()

	store := config.NewThresholdStore(domain.DefaultThresholds())
	reg := registry.New(store, registry.Options{})

	base := time.Date(2025, 1, 18, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		for _, device := range []domain.DeviceID{0, 1} {
			reg.Tick(device, domain.MetricSample{
				Timestamp:      base.Add(time.Duration(i) * time.Second),
				UtilizationPct: 40,
				TemperatureC:   55,
				PowerWatts:     50,
				MemoryUsed:     2 << 30,
				MemoryTotal:    8 << 30,
			})
		}
	}

	return NewRouter(reg, store), reg, store
}

func TestRouter_HealthCheck(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRouter_ListDevices(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.DeviceListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, 0, response.Devices[0].ID)
	assert.Equal(t, 1, response.Devices[1].ID)
}

func TestRouter_SnapshotRoundTrip(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/0/snapshot", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.SnapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Device)
	assert.Equal(t, 55.0, response.Sample.TemperatureC)
	assert.Greater(t, response.Score.Overall, 50)
	assert.NotEmpty(t, response.Status)
}

func TestRouter_SnapshotUnknownDevice(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/42/snapshot", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_History(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/1/history", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 5, response.Total)

	// Oldest first
	for i := 1; i < len(response.Samples); i++ {
		assert.True(t, response.Samples[i].Timestamp.After(response.Samples[i-1].Timestamp))
	}
}

func TestRouter_SelectDevice(t *testing.T) {
	router, reg, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/devices/1/select", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.DeviceID(1), reg.Selected())
}

func TestRouter_ThresholdUpdateAffectsNextTick(t *testing.T) {
	router, reg, store := newTestRouter(t)

	// Lower the temperature thresholds below the fixture's 55C
	th := domain.DefaultThresholds()
	th.TempBaseline = 30
	th.TempWarn = 50
	th.TempCrit = 60
	body, err := json.Marshal(th)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/thresholds", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 50.0, store.Current().TempWarn)

	// Next tick at 55C now crosses the warn threshold
	transitions := reg.Tick(0, domain.MetricSample{
		Timestamp:      time.Date(2025, 1, 18, 12, 0, 10, 0, time.UTC),
		UtilizationPct: 40,
		TemperatureC:   55,
		PowerWatts:     50,
		MemoryUsed:     2 << 30,
		MemoryTotal:    8 << 30,
	})
	require.Len(t, transitions, 1)
	assert.Equal(t, domain.TransitionActivated, transitions[0].Kind)
	assert.Equal(t, domain.CategoryTemperature, transitions[0].Alert.Category)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/devices/0/alerts", nil)
	router.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var alerts dto.AlertListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	assert.Equal(t, 1, alerts.Total)
	assert.Equal(t, domain.SeverityWarning, alerts.Alerts[0].Severity)
}

func TestRouter_ThresholdUpdateRejectedKeepsOld(t *testing.T) {
	router, _, store := newTestRouter(t)

	th := domain.DefaultThresholds()
	th.TempWarn = 95 // above crit, ordering violation
	body, err := json.Marshal(th)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/thresholds", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 80.0, store.Current().TempWarn)
}
