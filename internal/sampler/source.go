// Package sampler produces MetricSamples from hardware and drives the
// tick cadence. The analytics core only depends on the sample shape; the
// vendor polling mechanism stays behind the SampleSource interface.
package sampler

import (
	"context"

	"github.com/humaxai2025/gputop/internal/domain"
)

// SampleSource enumerates devices and reads one sample per device per
// tick. Implementations may return partial data with an error for
// transient hardware failures; the poller clamps and keeps monitoring.
type SampleSource interface {
	// Devices returns the monitored device ids. The set is fixed for
	// the session.
	Devices(ctx context.Context) ([]domain.DeviceID, error)

	// Sample reads the current metrics for one device.
	Sample(ctx context.Context, device domain.DeviceID) (domain.MetricSample, error)

	// Close releases vendor resources.
	Close() error
}
