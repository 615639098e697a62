package dto

import (
	"github.com/humaxai2025/gputop/internal/domain"
)

// ToDeviceResponse converts one device's snapshot to its list entry
func ToDeviceResponse(snap domain.HealthSnapshot, selected bool) *DeviceResponse {
	return &DeviceResponse{
		ID:       int(snap.Device),
		Status:   snap.Status.String(),
		Overall:  snap.Score.Overall,
		Stale:    snap.Stale,
		Selected: selected,
	}
}

// ToDeviceListResponse converts a slice of snapshots to dto.DeviceListResponse
func ToDeviceListResponse(snaps []domain.HealthSnapshot, selected domain.DeviceID) *DeviceListResponse {
	responses := make([]*DeviceResponse, 0, len(snaps))
	for _, snap := range snaps {
		responses = append(responses, ToDeviceResponse(snap, snap.Device == selected))
	}

	return &DeviceListResponse{
		Devices:  responses,
		Total:    len(responses),
		Selected: int(selected),
	}
}

// ToSnapshotResponse converts domain.HealthSnapshot to dto.SnapshotResponse
func ToSnapshotResponse(snap domain.HealthSnapshot) *SnapshotResponse {
	alerts := snap.Alerts
	if alerts == nil {
		alerts = []domain.Alert{}
	}

	return &SnapshotResponse{
		Device:      int(snap.Device),
		Status:      snap.Status.String(),
		Score:       snap.Score,
		Sample:      snap.Sample,
		Trends:      snap.Trends,
		Memory:      snap.Memory,
		Alerts:      alerts,
		UptimeHrs:   snap.UptimeHrs,
		Stale:       snap.Stale,
		Diagnostics: snap.Diagnostics,
	}
}

// ToHistoryResponse converts a sample window to dto.HistoryResponse
func ToHistoryResponse(device domain.DeviceID, samples []domain.MetricSample) *HistoryResponse {
	if samples == nil {
		samples = []domain.MetricSample{}
	}

	return &HistoryResponse{
		Device:  int(device),
		Samples: samples,
		Total:   len(samples),
	}
}

// ToAlertListResponse converts a device's active alerts to dto.AlertListResponse
func ToAlertListResponse(device domain.DeviceID, alerts []domain.Alert) *AlertListResponse {
	if alerts == nil {
		alerts = []domain.Alert{}
	}

	return &AlertListResponse{
		Device: int(device),
		Alerts: alerts,
		Total:  len(alerts),
	}
}
