package dto

import (
	"time"

	"github.com/humaxai2025/gputop/internal/domain"
)

// DeviceResponse is one device's summary line in the device list.
// Decouples the registry's internal session state from the API contract.
type DeviceResponse struct {
	ID       int    `json:"id" example:"0"`
	Status   string `json:"status" example:"good"`
	Overall  int    `json:"overall_score" example:"87"`
	Stale    bool   `json:"stale" example:"false"`
	Selected bool   `json:"selected" example:"true"`
}

// DeviceListResponse wraps a list of devices
type DeviceListResponse struct {
	Devices  []*DeviceResponse `json:"devices"`
	Total    int               `json:"total" example:"2"`
	Selected int               `json:"selected" example:"0"`
}

// SnapshotResponse is the fully-derived health view for one device.
// Nested structures reuse the domain wire shapes; they are the contract.
type SnapshotResponse struct {
	Device      int                 `json:"device" example:"0"`
	Status      string              `json:"status" example:"warning"`
	Score       domain.HealthScore  `json:"health_score"`
	Sample      domain.MetricSample `json:"sample"`
	Trends      domain.DeviceTrends `json:"trends"`
	Memory      domain.MemoryHealth `json:"memory_health"`
	Alerts      []domain.Alert      `json:"active_alerts"`
	UptimeHrs   float64             `json:"uptime_hours" example:"12.5"`
	Stale       bool                `json:"stale" example:"false"`
	Diagnostics []string            `json:"diagnostics,omitempty"`
}

// HistoryResponse wraps the retained sample window with metadata
type HistoryResponse struct {
	Device    int                   `json:"device" example:"0"`
	Samples   []domain.MetricSample `json:"samples"`
	Total     int                   `json:"total" example:"300"`
	StartTime *time.Time            `json:"start_time,omitempty" example:"2025-01-18T00:00:00Z"`
	EndTime   *time.Time            `json:"end_time,omitempty" example:"2025-01-18T23:59:59Z"`
}

// AlertListResponse wraps a device's currently-active alerts
type AlertListResponse struct {
	Device int            `json:"device" example:"0"`
	Alerts []domain.Alert `json:"alerts"`
	Total  int            `json:"total" example:"1"`
}

// SelectResponse confirms a device selection
type SelectResponse struct {
	Selected int `json:"selected" example:"1"`
}

// ThresholdsResponse carries the active threshold configuration
type ThresholdsResponse struct {
	Thresholds domain.Thresholds `json:"thresholds"`
}
