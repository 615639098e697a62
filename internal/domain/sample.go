package domain

import "time"

// DeviceID identifies a monitored accelerator for the lifetime of the
// process. Ordinal indexes are stable because the device count is fixed
// per session.
type DeviceID int

// MetricSample is one telemetry measurement for one device at one tick.
// It aggregates every tracked metric for that tick and is immutable once
// created.
type MetricSample struct {
	// Timestamp is when the sample was taken by the sample source
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`

	// UtilizationPct is GPU utilization in percent (0-100)
	UtilizationPct float64 `json:"utilization_pct" bson:"utilization_pct"`

	// MemoryUsed and MemoryTotal are framebuffer memory in bytes
	MemoryUsed  uint64 `json:"memory_used" bson:"memory_used"`
	MemoryTotal uint64 `json:"memory_total" bson:"memory_total"`

	// TemperatureC is the core temperature in degrees Celsius
	TemperatureC float64 `json:"temperature_c" bson:"temperature_c"`

	// PowerWatts is the current board power draw
	PowerWatts float64 `json:"power_watts" bson:"power_watts"`

	// FanPct is fan speed in percent of maximum (0-100)
	FanPct float64 `json:"fan_pct" bson:"fan_pct"`

	// CoreClockMHz and MemClockMHz are current clock speeds
	CoreClockMHz uint32 `json:"core_clock_mhz" bson:"core_clock_mhz"`
	MemClockMHz  uint32 `json:"mem_clock_mhz" bson:"mem_clock_mhz"`

	// Throttled is the hardware-reported throttling state
	Throttled bool `json:"throttled" bson:"throttled"`
}

// MemoryUsagePct returns memory usage as a percentage of total.
// Returns 0 when total is unknown (zero).
func (s *MetricSample) MemoryUsagePct() float64 {
	if s.MemoryTotal == 0 {
		return 0
	}
	return float64(s.MemoryUsed) / float64(s.MemoryTotal) * 100.0
}

// Efficiency returns utilization delivered per watt, the power component's
// raw input. Zero draw yields zero efficiency rather than dividing.
func (s *MetricSample) Efficiency() float64 {
	if s.PowerWatts <= 0 {
		return 0
	}
	return s.UtilizationPct / s.PowerWatts
}

// Clamp normalizes out-of-range values in place and returns a description
// of each field it had to fix. Garbled hardware readings must never
// propagate as corrupt state; a clamped sample still completes its tick.
func (s *MetricSample) Clamp() []string {
	var fixed []string

	if s.UtilizationPct < 0 {
		s.UtilizationPct = 0
		fixed = append(fixed, "utilization_pct below 0")
	} else if s.UtilizationPct > 100 {
		s.UtilizationPct = 100
		fixed = append(fixed, "utilization_pct above 100")
	}

	if s.TemperatureC < 0 {
		s.TemperatureC = 0
		fixed = append(fixed, "temperature_c below 0")
	} else if s.TemperatureC > maxPlausibleTemperatureC {
		s.TemperatureC = maxPlausibleTemperatureC
		fixed = append(fixed, "temperature_c implausibly high")
	}

	if s.PowerWatts < 0 {
		s.PowerWatts = 0
		fixed = append(fixed, "power_watts below 0")
	}

	if s.FanPct < 0 {
		s.FanPct = 0
		fixed = append(fixed, "fan_pct below 0")
	} else if s.FanPct > 100 {
		s.FanPct = 100
		fixed = append(fixed, "fan_pct above 100")
	}

	if s.MemoryTotal > 0 && s.MemoryUsed > s.MemoryTotal {
		s.MemoryUsed = s.MemoryTotal
		fixed = append(fixed, "memory_used above memory_total")
	}

	return fixed
}

// maxPlausibleTemperatureC bounds sensor glitches; no shipping GPU
// reports a real core temperature anywhere near this.
const maxPlausibleTemperatureC = 150.0
