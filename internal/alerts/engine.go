// Package alerts evaluates threshold conditions into deduplicated,
// debounced alerts. Each (device, category) pair runs one explicit
// Clear -> Active -> Clear state machine with an attached clear-streak
// counter; severity can rise while Active without leaving the state.
//
// The engine reflects true current state only. Rate-limiting toward the
// user is the notification collaborator's job.
package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/humaxai2025/gputop/internal/domain"
)

// condition is what one tick observed for one category.
type condition struct {
	severity  domain.AlertSeverity // zero means clear
	value     float64
	threshold float64
	message   string
}

// categoryState is the per-(device, category) machine. A nil active
// alert is the Clear state.
type categoryState struct {
	active      *domain.Alert
	clearStreak int
}

// Engine holds alert state for one device. Sessions own one engine each,
// so no locking happens here; the registry serializes ticks per device.
type Engine struct {
	device domain.DeviceID
	states map[domain.AlertCategory]*categoryState
}

// NewEngine creates an alert engine for a device with every category Clear.
func NewEngine(device domain.DeviceID) *Engine {
	return &Engine{
		device: device,
		states: make(map[domain.AlertCategory]*categoryState),
	}
}

// evaluation order is fixed so transition slices are reproducible.
var categoryOrder = []domain.AlertCategory{
	domain.CategoryTemperature,
	domain.CategoryPower,
	domain.CategoryMemory,
	domain.CategoryThrottling,
}

// Evaluate runs one tick's conditions through every category machine and
// returns the lifecycle transitions this tick produced. Thresholds were
// read once at the start of the tick by the caller.
func (e *Engine) Evaluate(sample domain.MetricSample, mem domain.MemoryHealth, th domain.Thresholds) []domain.AlertTransition {
	now := sample.Timestamp
	conds := map[domain.AlertCategory]condition{
		domain.CategoryTemperature: temperatureCondition(sample, th),
		domain.CategoryPower:       powerCondition(sample, th),
		domain.CategoryMemory:      memoryCondition(sample, mem, th),
		domain.CategoryThrottling:  throttlingCondition(sample),
	}

	var transitions []domain.AlertTransition
	for _, category := range categoryOrder {
		if tr := e.step(category, conds[category], th.ClearDebounceTicks, now); tr != nil {
			transitions = append(transitions, *tr)
		}
	}
	return transitions
}

// step advances one category machine by one tick.
func (e *Engine) step(category domain.AlertCategory, c condition, debounce int, now time.Time) *domain.AlertTransition {
	st, ok := e.states[category]
	if !ok {
		st = &categoryState{}
		e.states[category] = st
	}

	if st.active == nil {
		if c.severity == 0 {
			return nil
		}
		// Clear -> Active
		st.active = &domain.Alert{
			ID:          uuid.New().String(),
			Device:      e.device,
			Category:    category,
			Severity:    c.severity,
			Message:     c.message,
			Value:       c.value,
			Threshold:   c.threshold,
			FirstSeen:   now,
			LastSeen:    now,
			Occurrences: 1,
		}
		st.clearStreak = 0
		return &domain.AlertTransition{Kind: domain.TransitionActivated, Alert: *st.active, At: now}
	}

	if c.severity == 0 {
		// Condition not present: count toward the debounce window, but
		// only close once it has held clear long enough. A single quiet
		// tick across a noisy boundary must not flap the alert.
		st.clearStreak++
		if st.clearStreak < debounce {
			return nil
		}
		cleared := *st.active
		st.active = nil
		st.clearStreak = 0
		return &domain.AlertTransition{Kind: domain.TransitionCleared, Alert: cleared, At: now}
	}

	// Condition persists: update in place rather than duplicating. A dip
	// to a lower severity keeps the worst payload; Severity, Message and
	// Value must always describe the same observation, and the alert
	// only leaves its peak severity through a full debounced clear.
	st.clearStreak = 0
	st.active.LastSeen = now
	st.active.Occurrences++
	if c.severity >= st.active.Severity {
		st.active.Value = c.value
		st.active.Message = c.message
	}

	if c.severity > st.active.Severity {
		st.active.Severity = c.severity
		st.active.Threshold = c.threshold
		return &domain.AlertTransition{Kind: domain.TransitionUpgraded, Alert: *st.active, At: now}
	}
	return nil
}

// Active returns the currently-active alerts in category order.
func (e *Engine) Active() []domain.Alert {
	var out []domain.Alert
	for _, category := range categoryOrder {
		if st, ok := e.states[category]; ok && st.active != nil {
			out = append(out, *st.active)
		}
	}
	return out
}

func temperatureCondition(sample domain.MetricSample, th domain.Thresholds) condition {
	switch {
	case sample.TemperatureC >= th.TempCrit:
		return condition{
			severity:  domain.SeverityCritical,
			value:     sample.TemperatureC,
			threshold: th.TempCrit,
			message:   fmt.Sprintf("temperature %.1f°C at or above critical threshold %.1f°C", sample.TemperatureC, th.TempCrit),
		}
	case sample.TemperatureC >= th.TempWarn:
		return condition{
			severity:  domain.SeverityWarning,
			value:     sample.TemperatureC,
			threshold: th.TempWarn,
			message:   fmt.Sprintf("temperature %.1f°C at or above warning threshold %.1f°C", sample.TemperatureC, th.TempWarn),
		}
	}
	return condition{}
}

func powerCondition(sample domain.MetricSample, th domain.Thresholds) condition {
	switch {
	case sample.PowerWatts >= th.PowerCrit:
		return condition{
			severity:  domain.SeverityCritical,
			value:     sample.PowerWatts,
			threshold: th.PowerCrit,
			message:   fmt.Sprintf("power draw %.1fW at or above critical threshold %.1fW", sample.PowerWatts, th.PowerCrit),
		}
	case sample.PowerWatts >= th.PowerWarn:
		return condition{
			severity:  domain.SeverityWarning,
			value:     sample.PowerWatts,
			threshold: th.PowerWarn,
			message:   fmt.Sprintf("power draw %.1fW at or above warning threshold %.1fW", sample.PowerWatts, th.PowerWarn),
		}
	}
	return condition{}
}

func memoryCondition(sample domain.MetricSample, mem domain.MemoryHealth, th domain.Thresholds) condition {
	usage := sample.MemoryUsagePct()
	switch {
	case usage >= th.MemCrit:
		return condition{
			severity:  domain.SeverityCritical,
			value:     usage,
			threshold: th.MemCrit,
			message:   fmt.Sprintf("memory usage %.1f%% at or above critical threshold %.1f%%", usage, th.MemCrit),
		}
	case usage >= th.MemWarn:
		return condition{
			severity:  domain.SeverityWarning,
			value:     usage,
			threshold: th.MemWarn,
			message:   fmt.Sprintf("memory usage %.1f%% at or above warning threshold %.1f%%", usage, th.MemWarn),
		}
	case mem.LeakSuspected:
		// Sustained growth below the usage thresholds is informational:
		// it feeds the score, and surfaces here so operators see it early.
		return condition{
			severity:  domain.SeverityInfo,
			value:     usage,
			threshold: th.MemWarn,
			message:   "sustained memory growth suggests a possible leak",
		}
	}
	return condition{}
}

func throttlingCondition(sample domain.MetricSample) condition {
	if !sample.Throttled {
		return condition{}
	}
	return condition{
		severity:  domain.SeverityWarning,
		value:     sample.TemperatureC,
		threshold: 0,
		message:   "hardware reports clock/power throttling",
	}
}
