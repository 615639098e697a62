package domain

import "errors"

// Domain-level errors
var (
	ErrUnknownDevice     = errors.New("unknown device")
	ErrInvalidSample     = errors.New("invalid sample")
	ErrInvalidThresholds = errors.New("invalid thresholds")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("resource not found")
	ErrInternalError     = errors.New("internal error")
)
