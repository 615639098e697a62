package domain

import "fmt"

// Thresholds holds every tunable constant the health pipeline reads:
// the named warn/crit levels plus the interior curve constants the scorer
// and detectors use. Owned by the settings layer, read-only to the core;
// each tick reads one consistent value at its start.
type Thresholds struct {
	// Temperature thresholds in degrees Celsius
	TempBaseline float64 `json:"temp_baseline"`
	TempWarn     float64 `json:"temp_warn"`
	TempCrit     float64 `json:"temp_crit"`

	// Power thresholds in watts
	PowerBaseline float64 `json:"power_baseline"`
	PowerWarn     float64 `json:"power_warn"`
	PowerCrit     float64 `json:"power_crit"`

	// Memory usage thresholds in percent of total
	MemBaseline float64 `json:"mem_baseline"`
	MemWarn     float64 `json:"mem_warn"`
	MemCrit     float64 `json:"mem_crit"`

	// LeakRatio is the newest-third over oldest-third mean ratio above
	// which sustained memory growth is flagged
	LeakRatio float64 `json:"leak_ratio"`

	// LeakPenalty is subtracted from the memory component when a leak
	// is suspected
	LeakPenalty float64 `json:"leak_penalty"`

	// FragmentationWeight scales the 0-100 fragmentation pressure into
	// a memory component penalty
	FragmentationWeight float64 `json:"fragmentation_weight"`

	// ClearDebounceTicks is how many consecutive below-warn ticks an
	// active alert condition must hold before the alert closes
	ClearDebounceTicks int `json:"clear_debounce_ticks"`
}

// DefaultThresholds returns the stock configuration. The interior
// constants (baselines, leak ratio, penalties) are exposed here rather
// than hardcoded in the scorer so operators can tune curve shape.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempBaseline:        50,
		TempWarn:            80,
		TempCrit:            90,
		PowerBaseline:       60,
		PowerWarn:           85,
		PowerCrit:           95,
		MemBaseline:         50,
		MemWarn:             80,
		MemCrit:             95,
		LeakRatio:           1.10,
		LeakPenalty:         20,
		FragmentationWeight: 0.25,
		ClearDebounceTicks:  3,
	}
}

// Validate checks ordering and range constraints.
func (t *Thresholds) Validate() error {
	if !(t.TempBaseline < t.TempWarn && t.TempWarn < t.TempCrit) {
		return fmt.Errorf("%w: temperature thresholds must satisfy baseline < warn < crit (got %.1f/%.1f/%.1f)",
			ErrInvalidThresholds, t.TempBaseline, t.TempWarn, t.TempCrit)
	}
	if !(t.PowerBaseline < t.PowerWarn && t.PowerWarn < t.PowerCrit) {
		return fmt.Errorf("%w: power thresholds must satisfy baseline < warn < crit (got %.1f/%.1f/%.1f)",
			ErrInvalidThresholds, t.PowerBaseline, t.PowerWarn, t.PowerCrit)
	}
	if !(t.MemBaseline < t.MemWarn && t.MemWarn < t.MemCrit) {
		return fmt.Errorf("%w: memory thresholds must satisfy baseline < warn < crit (got %.1f/%.1f/%.1f)",
			ErrInvalidThresholds, t.MemBaseline, t.MemWarn, t.MemCrit)
	}
	if t.LeakRatio <= 1.0 {
		return fmt.Errorf("%w: leak ratio must exceed 1.0 (got %.2f)", ErrInvalidThresholds, t.LeakRatio)
	}
	if t.LeakPenalty < 0 || t.LeakPenalty > 100 {
		return fmt.Errorf("%w: leak penalty must be within 0-100 (got %.1f)", ErrInvalidThresholds, t.LeakPenalty)
	}
	if t.FragmentationWeight < 0 || t.FragmentationWeight > 1 {
		return fmt.Errorf("%w: fragmentation weight must be within 0-1 (got %.2f)", ErrInvalidThresholds, t.FragmentationWeight)
	}
	if t.ClearDebounceTicks < 1 {
		return fmt.Errorf("%w: clear debounce must be at least 1 tick (got %d)", ErrInvalidThresholds, t.ClearDebounceTicks)
	}
	return nil
}
