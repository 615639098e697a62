package sampler

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/humaxai2025/gputop/internal/domain"
)

// MockSource synthesizes plausible samples for development machines
// without a supported GPU and for tests. Utilization and temperature
// follow slow sine waves so trends and alerts have something to chew on.
type MockSource struct {
	deviceCount int
	tick        atomic.Int64
}

// NewMockSource creates a source emitting samples for n fake devices.
func NewMockSource(n int) *MockSource {
	if n <= 0 {
		n = 1
	}
	return &MockSource{deviceCount: n}
}

// Devices returns the fake device ids.
func (s *MockSource) Devices(_ context.Context) ([]domain.DeviceID, error) {
	ids := make([]domain.DeviceID, s.deviceCount)
	for i := range ids {
		ids[i] = domain.DeviceID(i)
	}
	return ids, nil
}

// Sample synthesizes the next sample for a device.
func (s *MockSource) Sample(_ context.Context, device domain.DeviceID) (domain.MetricSample, error) {
	t := float64(s.tick.Add(1))
	phase := t/60.0 + float64(device)

	const totalMem = uint64(8) << 30
	util := 45 + 35*math.Sin(phase)

	return domain.MetricSample{
		Timestamp:      time.Now(),
		UtilizationPct: util,
		MemoryUsed:     uint64((0.30 + 0.15*(1+math.Sin(phase/2))) * float64(totalMem)),
		MemoryTotal:    totalMem,
		TemperatureC:   55 + 12*math.Sin(phase/3),
		PowerWatts:     60 + util/2,
		FanPct:         40 + 20*math.Sin(phase/3),
		CoreClockMHz:   1500,
		MemClockMHz:    7000,
	}, nil
}

// Close is a no-op for the mock.
func (s *MockSource) Close() error {
	return nil
}
