package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/humaxai2025/gputop/internal/domain"
)

// NVMLSource reads samples from NVIDIA devices through NVML. Individual
// probe failures degrade to zero values rather than failing the sample;
// a monitoring tool keeps monitoring through partial sensor outages.
type NVMLSource struct {
	count int
}

// NewNVMLSource initializes NVML and counts devices.
func NewNVMLSource() (*NVMLSource, error) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, fmt.Errorf("failed to initialize NVML: %s", nvml.ErrorString(ret))
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return nil, fmt.Errorf("failed to count devices: %s", nvml.ErrorString(ret))
	}

	return &NVMLSource{count: count}, nil
}

// Devices returns one ordinal id per detected device.
func (s *NVMLSource) Devices(_ context.Context) ([]domain.DeviceID, error) {
	ids := make([]domain.DeviceID, s.count)
	for i := range ids {
		ids[i] = domain.DeviceID(i)
	}
	return ids, nil
}

// Sample reads the current metrics for one device.
func (s *NVMLSource) Sample(_ context.Context, device domain.DeviceID) (domain.MetricSample, error) {
	handle, ret := nvml.DeviceGetHandleByIndex(int(device))
	if ret != nvml.SUCCESS {
		return domain.MetricSample{}, fmt.Errorf("%w: device %d: %s", domain.ErrUnknownDevice, device, nvml.ErrorString(ret))
	}

	sample := domain.MetricSample{Timestamp: time.Now()}

	if util, ret := handle.GetUtilizationRates(); ret == nvml.SUCCESS {
		sample.UtilizationPct = float64(util.Gpu)
	}
	if mem, ret := handle.GetMemoryInfo(); ret == nvml.SUCCESS {
		sample.MemoryUsed = mem.Used
		sample.MemoryTotal = mem.Total
	}
	if temp, ret := handle.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
		sample.TemperatureC = float64(temp)
	}
	if power, ret := handle.GetPowerUsage(); ret == nvml.SUCCESS {
		sample.PowerWatts = float64(power) / 1000.0 // milliwatts
	}
	if fan, ret := handle.GetFanSpeed(); ret == nvml.SUCCESS {
		sample.FanPct = float64(fan)
	}
	if clock, ret := handle.GetClockInfo(nvml.CLOCK_GRAPHICS); ret == nvml.SUCCESS {
		sample.CoreClockMHz = clock
	}
	if clock, ret := handle.GetClockInfo(nvml.CLOCK_MEM); ret == nvml.SUCCESS {
		sample.MemClockMHz = clock
	}
	if reasons, ret := handle.GetCurrentClocksThrottleReasons(); ret == nvml.SUCCESS {
		// Idle clock-down is normal; anything else is real throttling.
		sample.Throttled = reasons&^nvml.ClocksThrottleReasonGpuIdle != 0
	}

	return sample, nil
}

// Close shuts NVML down.
func (s *NVMLSource) Close() error {
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("failed to shut down NVML: %s", nvml.ErrorString(ret))
	}
	return nil
}
