package domain

import "time"

// TrendStats holds rolling statistics for one metric over the retained
// window. Always recomputed from the current history contents, never
// accumulated across ticks.
type TrendStats struct {
	// Mean, Min and Max over the available window
	Mean float64 `json:"mean" bson:"mean"`
	Min  float64 `json:"min" bson:"min"`
	Max  float64 `json:"max" bson:"max"`

	// Slope is the least-squares rate of change in metric units per
	// second; 0 with fewer than two samples
	Slope float64 `json:"slope" bson:"slope"`

	// Peak is the running maximum with its time of occurrence
	Peak   float64   `json:"peak" bson:"peak"`
	PeakAt time.Time `json:"peak_at" bson:"peak_at"`

	// SecondsAbove is time spent at or above the metric's warn
	// threshold, accumulated from actual inter-sample gaps
	SecondsAbove float64 `json:"seconds_above" bson:"seconds_above"`

	// Spikes counts sudden jumps between consecutive samples (power only)
	Spikes int `json:"spikes,omitempty" bson:"spikes,omitempty"`

	// Samples is how many samples contributed
	Samples int `json:"samples" bson:"samples"`
}

// MemoryHealth is the memory detector's output. Heuristic indicates the
// values are pattern-derived estimates, not vendor-reported ground truth;
// no live system exposes true fragmentation without vendor APIs.
type MemoryHealth struct {
	LeakSuspected         bool    `json:"leak_suspected" bson:"leak_suspected"`
	FragmentationPressure float64 `json:"fragmentation_pressure" bson:"fragmentation_pressure"` // 0-100
	UsageTrendSlope       float64 `json:"usage_trend_slope" bson:"usage_trend_slope"`           // pct per second
	Heuristic             bool    `json:"heuristic" bson:"heuristic"`
}

// HealthScore is the composite score recomputed every tick.
// Invariant: Overall == round(0.4*Temperature + 0.3*Power + 0.3*Memory),
// each component independently clamped to 0-100.
type HealthScore struct {
	Overall     int     `json:"overall" bson:"overall"`
	Temperature float64 `json:"temperature_component" bson:"temperature_component"`
	Power       float64 `json:"power_component" bson:"power_component"`
	Memory      float64 `json:"memory_component" bson:"memory_component"`
}

// HealthStatus is derived from the overall score, never stored separately.
type HealthStatus string

const (
	StatusExcellent HealthStatus = "excellent" // 90-100
	StatusGood      HealthStatus = "good"      // 70-89
	StatusWarning   HealthStatus = "warning"   // 50-69
	StatusCritical  HealthStatus = "critical"  // 0-49
)

// Status maps the overall score to its band.
func (s HealthScore) Status() HealthStatus {
	switch {
	case s.Overall >= 90:
		return StatusExcellent
	case s.Overall >= 70:
		return StatusGood
	case s.Overall >= 50:
		return StatusWarning
	default:
		return StatusCritical
	}
}

func (s HealthStatus) String() string {
	return string(s)
}

// DeviceTrends groups per-metric trend statistics for one device.
type DeviceTrends struct {
	Utilization TrendStats `json:"utilization" bson:"utilization"`
	Temperature TrendStats `json:"temperature" bson:"temperature"`
	Power       TrendStats `json:"power" bson:"power"`
	MemoryUsage TrendStats `json:"memory_usage" bson:"memory_usage"`
}

// HealthSnapshot is the fully-derived result of one tick for one device.
// Immutable once published; each tick's snapshot fully supersedes the
// prior one.
type HealthSnapshot struct {
	Device    DeviceID     `json:"device" bson:"device"`
	Sample    MetricSample `json:"sample" bson:"sample"`
	Trends    DeviceTrends `json:"trends" bson:"trends"`
	Memory    MemoryHealth `json:"memory_health" bson:"memory_health"`
	Score     HealthScore  `json:"health_score" bson:"health_score"`
	Status    HealthStatus `json:"status" bson:"status"`
	Alerts    []Alert      `json:"active_alerts" bson:"active_alerts"`
	UptimeHrs float64      `json:"uptime_hours" bson:"uptime_hours"`

	// Stale is set at read time when no sample has arrived for several
	// expected intervals; downstream may render "disconnected"
	Stale bool `json:"stale" bson:"stale"`

	// Diagnostics records every clamped or degraded condition observed
	// during the tick; degradations are never silently dropped
	Diagnostics []string `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}
