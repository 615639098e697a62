package handlers

import (
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/humaxai2025/gputop/internal/domain"
)

// MockHealthRegistry implements HealthRegistry for testing
type MockHealthRegistry struct {
	SnapshotFunc func(device domain.DeviceID) (domain.HealthSnapshot, error)
	HistoryFunc  func(device domain.DeviceID) []domain.MetricSample
	SelectFunc   func(device domain.DeviceID) error
	SelectedFunc func() domain.DeviceID
	DevicesFunc  func() []domain.DeviceID
}

func (m *MockHealthRegistry) Snapshot(device domain.DeviceID) (domain.HealthSnapshot, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(device)
	}
	return domain.HealthSnapshot{}, domain.ErrUnknownDevice
}

func (m *MockHealthRegistry) History(device domain.DeviceID) []domain.MetricSample {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(device)
	}
	return nil
}

func (m *MockHealthRegistry) Select(device domain.DeviceID) error {
	if m.SelectFunc != nil {
		return m.SelectFunc(device)
	}
	return domain.ErrUnknownDevice
}

func (m *MockHealthRegistry) Selected() domain.DeviceID {
	if m.SelectedFunc != nil {
		return m.SelectedFunc()
	}
	return 0
}

func (m *MockHealthRegistry) Devices() []domain.DeviceID {
	if m.DevicesFunc != nil {
		return m.DevicesFunc()
	}
	return nil
}

// MockThresholdSettings implements ThresholdSettings for testing
type MockThresholdSettings struct {
	CurrentFunc func() domain.Thresholds
	UpdateFunc  func(th domain.Thresholds) error
}

func (m *MockThresholdSettings) Current() domain.Thresholds {
	if m.CurrentFunc != nil {
		return m.CurrentFunc()
	}
	return domain.DefaultThresholds()
}

func (m *MockThresholdSettings) Update(th domain.Thresholds) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(th)
	}
	return nil
}

func setupGinTest() (*gin.Engine, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	w := httptest.NewRecorder()
	return router, w
}
