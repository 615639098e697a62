// Package memhealth estimates memory leak and fragmentation pressure
// from the memory-usage history. Both signals are heuristics over usage
// patterns — no vendor API exposes true fragmentation — so every result
// carries an explicit Heuristic flag. Pure over an immutable window.
package memhealth

import (
	"math"

	"github.com/humaxai2025/gputop/internal/domain"
	"github.com/humaxai2025/gputop/internal/history"
	"github.com/humaxai2025/gputop/internal/trend"
)

// minSamples is the smallest window the detector will judge; anything
// shorter reports a neutral result rather than guessing from noise.
const minSamples = 9

// monotonicShare is the fraction of inter-sample deltas that must be
// non-decreasing before growth counts as sustained.
const monotonicShare = 0.60

// Analyze inspects the memory-usage sub-history and returns leak and
// fragmentation signals. leakRatio is the newest-third over oldest-third
// mean ratio that flags sustained growth (Thresholds.LeakRatio).
func Analyze(w history.Window, leakRatio float64) domain.MemoryHealth {
	out := domain.MemoryHealth{
		Heuristic:       true,
		UsageTrendSlope: trend.Slope(w, trend.MemoryUsage),
	}
	if w.Len() < minSamples {
		return out
	}

	out.LeakSuspected = leakSuspected(w, leakRatio)
	out.FragmentationPressure = fragmentationPressure(w)
	return out
}

// leakSuspected compares the oldest third of the window against the
// newest third. Growth is flagged only when the newest-third mean exceeds
// the oldest-third mean by the configured ratio AND the trend is
// monotonically non-decreasing across at least 60% of the deltas; either
// test alone is too easy to trip with bursty workloads.
func leakSuspected(w history.Window, leakRatio float64) bool {
	n := w.Len()
	third := n / 3

	oldest := meanUsage(w.Slice(0, third))
	newest := meanUsage(w.Slice(n-third, n))
	if oldest <= 0 {
		return false
	}
	if newest/oldest < leakRatio {
		return false
	}

	nonDecreasing := 0
	for i := 1; i < n; i++ {
		if trend.MemoryUsage(w.At(i)) >= trend.MemoryUsage(w.At(i-1)) {
			nonDecreasing++
		}
	}
	return float64(nonDecreasing)/float64(n-1) >= monotonicShare
}

// fragmentationPressure scores the variance of consecutive usage deltas,
// scaled by how full memory is. High churn at high occupancy is where
// allocators actually struggle; the same churn on a mostly-empty device
// is harmless.
func fragmentationPressure(w history.Window) float64 {
	n := w.Len()

	deltas := make([]float64, 0, n-1)
	var meanUtil float64
	for i := 1; i < n; i++ {
		deltas = append(deltas, trend.MemoryUsage(w.At(i))-trend.MemoryUsage(w.At(i-1)))
		meanUtil += trend.MemoryUsage(w.At(i))
	}
	meanUtil /= float64(n - 1)

	var sum float64
	for _, d := range deltas {
		sum += d
	}
	mean := sum / float64(len(deltas))

	var variance float64
	for _, d := range deltas {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(deltas))

	// Normalize: a stddev of 5 percentage points between consecutive
	// ticks is treated as full churn.
	churn := math.Min(math.Sqrt(variance)/5.0, 1.0)
	pressure := churn * (meanUtil / 100.0) * 100.0
	return math.Min(math.Max(pressure, 0), 100)
}

func meanUsage(w history.Window) float64 {
	if w.Len() == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < w.Len(); i++ {
		sum += trend.MemoryUsage(w.At(i))
	}
	return sum / float64(w.Len())
}
