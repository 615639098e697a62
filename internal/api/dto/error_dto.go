package dto

import "time"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error     string    `json:"error" example:"Device not found"`
	Message   string    `json:"message" example:"No device with id: 7"`
	Timestamp time.Time `json:"timestamp" example:"2025-01-18T12:34:56Z"`
}
