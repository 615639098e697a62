package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/humaxai2025/gputop/internal/api/dto"
	"github.com/humaxai2025/gputop/internal/domain"
)

// ThresholdSettings is the settings surface the API reads and updates.
// Updates take effect on the next tick without a restart.
type ThresholdSettings interface {
	Current() domain.Thresholds
	Update(th domain.Thresholds) error
}

// ThresholdHandler handles threshold configuration requests
type ThresholdHandler struct {
	settings ThresholdSettings
}

// NewThresholdHandler creates a new threshold handler
func NewThresholdHandler(settings ThresholdSettings) *ThresholdHandler {
	return &ThresholdHandler{
		settings: settings,
	}
}

// GetThresholds returns the active threshold configuration.
func (h *ThresholdHandler) GetThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ThresholdsResponse{
		Thresholds: h.settings.Current(),
	})
}

// UpdateThresholds replaces the threshold configuration. The full set is
// required; a rejected update leaves the previous configuration active.
func (h *ThresholdHandler) UpdateThresholds(c *gin.Context) {
	var th domain.Thresholds
	if err := c.ShouldBindJSON(&th); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request body",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	if err := h.settings.Update(th); err != nil {
		if errors.Is(err, domain.ErrInvalidThresholds) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:     "Invalid thresholds",
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "Failed to update thresholds",
			Message:   "Internal server error occurred",
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ThresholdsResponse{
		Thresholds: h.settings.Current(),
	})
}
