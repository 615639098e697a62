// Package score turns one tick's sample and derived signals into the
// composite health score. Every function here is deterministic and
// side-effect-free: identical inputs always produce identical scores.
package score

import (
	"math"

	"github.com/humaxai2025/gputop/internal/domain"
)

// Composite weights: temperature dominates because it is the signal that
// precedes hardware damage.
const (
	weightTemperature = 0.4
	weightPower       = 0.3
	weightMemory      = 0.3
)

// Inputs carries everything the scorer reads for one evaluation.
// BestEfficiency is the rolling best utilization-per-watt the session has
// observed for this device; the session owns that accumulation so the
// scorer itself stays pure.
type Inputs struct {
	Sample         domain.MetricSample
	Memory         domain.MemoryHealth
	Thresholds     domain.Thresholds
	BestEfficiency float64
}

// Compute evaluates the three components and their weighted composite.
func Compute(in Inputs) domain.HealthScore {
	s := domain.HealthScore{
		Temperature: temperatureComponent(in.Sample, in.Thresholds),
		Power:       powerComponent(in.Sample, in.Thresholds, in.BestEfficiency),
		Memory:      memoryComponent(in.Sample, in.Memory, in.Thresholds),
	}

	overall := weightTemperature*s.Temperature + weightPower*s.Power + weightMemory*s.Memory
	s.Overall = int(math.Round(clamp(overall, 0, 100)))
	return s
}

// temperatureComponent: 100 at or below the comfortable baseline, 60 at
// the warn threshold, 0 at the critical threshold, linear between.
func temperatureComponent(sample domain.MetricSample, th domain.Thresholds) float64 {
	return piecewise(sample.TemperatureC, th.TempBaseline, th.TempWarn, th.TempCrit)
}

// powerComponent combines the draw piecewise curve with the efficiency
// regression ratio: both a consumption spike and delivering less work per
// watt than the device's observed best depress the score, and the curve
// shape matches temperature.
func powerComponent(sample domain.MetricSample, th domain.Thresholds, bestEfficiency float64) float64 {
	drawScore := piecewise(sample.PowerWatts, th.PowerBaseline, th.PowerWarn, th.PowerCrit)

	if bestEfficiency <= 0 {
		return drawScore
	}
	ratio := clamp(sample.Efficiency()/bestEfficiency, 0, 1)
	return drawScore * ratio
}

// memoryComponent scores the instantaneous usage ratio against the memory
// thresholds, then subtracts the detector's penalties: a fixed deduction
// when a leak is suspected and a proportional one for fragmentation.
func memoryComponent(sample domain.MetricSample, mem domain.MemoryHealth, th domain.Thresholds) float64 {
	c := piecewise(sample.MemoryUsagePct(), th.MemBaseline, th.MemWarn, th.MemCrit)

	if mem.LeakSuspected {
		c -= th.LeakPenalty
	}
	c -= mem.FragmentationPressure * th.FragmentationWeight

	return clamp(c, 0, 100)
}

// piecewise maps a value onto the shared curve: 100 at or below baseline,
// falling to 60 at warn, to 0 at crit, clamped beyond.
func piecewise(value, baseline, warn, crit float64) float64 {
	switch {
	case value <= baseline:
		return 100
	case value <= warn:
		return 100 - 40*(value-baseline)/(warn-baseline)
	case value < crit:
		return 60 - 60*(value-warn)/(crit-warn)
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
