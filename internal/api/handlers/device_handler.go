package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/humaxai2025/gputop/internal/api/dto"
	"github.com/humaxai2025/gputop/internal/domain"
)

// HealthRegistry is the registry surface the API reads from.
type HealthRegistry interface {
	Snapshot(device domain.DeviceID) (domain.HealthSnapshot, error)
	History(device domain.DeviceID) []domain.MetricSample
	Select(device domain.DeviceID) error
	Selected() domain.DeviceID
	Devices() []domain.DeviceID
}

// DeviceHandler handles device-related API requests
type DeviceHandler struct {
	registry HealthRegistry
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(registry HealthRegistry) *DeviceHandler {
	return &DeviceHandler{
		registry: registry,
	}
}

// ListDevices returns a summary line for every monitored device,
// ordered by device id.
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	ids := h.registry.Devices()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	snaps := make([]domain.HealthSnapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := h.registry.Snapshot(id)
		if err != nil {
			// Session exists but no tick completed yet; skip it
			continue
		}
		snaps = append(snaps, snap)
	}

	response := dto.ToDeviceListResponse(snaps, h.registry.Selected())
	c.JSON(http.StatusOK, response)
}

// GetSnapshot returns the latest complete health snapshot for a device.
func (h *DeviceHandler) GetSnapshot(c *gin.Context) {
	device, ok := parseDeviceID(c)
	if !ok {
		return
	}

	snap, err := h.registry.Snapshot(device)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownDevice) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:     "Device not found",
				Message:   "No device with id: " + c.Param("id"),
				Timestamp: time.Now(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "Failed to retrieve snapshot",
			Message:   "Internal server error occurred",
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snap))
}

// GetHistory returns the retained sample window for a device, oldest
// first, with optional RFC3339 time filtering.
func (h *DeviceHandler) GetHistory(c *gin.Context) {
	device, ok := parseDeviceID(c)
	if !ok {
		return
	}

	if _, err := h.registry.Snapshot(device); err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:     "Device not found",
			Message:   "No device with id: " + c.Param("id"),
			Timestamp: time.Now(),
		})
		return
	}

	var startTime, endTime *time.Time

	if startTimeStr := c.Query("start_time"); startTimeStr != "" {
		parsed, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:     "Invalid start_time format",
				Message:   "Use RFC3339 format (e.g., 2023-01-01T00:00:00Z). Got: " + startTimeStr,
				Timestamp: time.Now(),
			})
			return
		}
		startTime = &parsed
	}

	if endTimeStr := c.Query("end_time"); endTimeStr != "" {
		parsed, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:     "Invalid end_time format",
				Message:   "Use RFC3339 format (e.g., 2023-01-01T00:00:00Z). Got: " + endTimeStr,
				Timestamp: time.Now(),
			})
			return
		}
		endTime = &parsed
	}

	if startTime != nil && endTime != nil && startTime.After(*endTime) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid time range",
			Message:   "start_time must be before end_time",
			Timestamp: time.Now(),
		})
		return
	}

	samples := h.registry.History(device)
	if startTime != nil || endTime != nil {
		filtered := make([]domain.MetricSample, 0, len(samples))
		for _, s := range samples {
			if startTime != nil && s.Timestamp.Before(*startTime) {
				continue
			}
			if endTime != nil && s.Timestamp.After(*endTime) {
				continue
			}
			filtered = append(filtered, s)
		}
		samples = filtered
	}

	response := dto.ToHistoryResponse(device, samples)
	response.StartTime = startTime
	response.EndTime = endTime
	c.JSON(http.StatusOK, response)
}

// GetAlerts returns the currently-active alerts for a device.
func (h *DeviceHandler) GetAlerts(c *gin.Context) {
	device, ok := parseDeviceID(c)
	if !ok {
		return
	}

	snap, err := h.registry.Snapshot(device)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:     "Device not found",
			Message:   "No device with id: " + c.Param("id"),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ToAlertListResponse(device, snap.Alerts))
}

// SelectDevice marks a device as the current one for consumers that
// track a focused device.
func (h *DeviceHandler) SelectDevice(c *gin.Context) {
	device, ok := parseDeviceID(c)
	if !ok {
		return
	}

	if err := h.registry.Select(device); err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:     "Device not found",
			Message:   "No device with id: " + c.Param("id"),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SelectResponse{Selected: int(device)})
}

// parseDeviceID extracts and validates the :id path parameter, writing
// the error response itself on failure.
func parseDeviceID(c *gin.Context) (domain.DeviceID, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request",
			Message:   "Device id must be a non-negative integer, got: " + raw,
			Timestamp: time.Now(),
		})
		return 0, false
	}
	return domain.DeviceID(id), true
}
