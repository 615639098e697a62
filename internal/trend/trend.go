// Package trend derives rolling statistics from a history window.
// Every function is pure over an immutable view: no accumulators, no
// hidden time-dependence, so outputs are reproducible for a given window.
package trend

import (
	"time"

	"github.com/humaxai2025/gputop/internal/domain"
	"github.com/humaxai2025/gputop/internal/history"
)

// Extractor selects one metric from a sample.
type Extractor func(domain.MetricSample) float64

// Standard extractors for the tracked metrics.
var (
	Utilization Extractor = func(s domain.MetricSample) float64 { return s.UtilizationPct }
	Temperature Extractor = func(s domain.MetricSample) float64 { return s.TemperatureC }
	Power       Extractor = func(s domain.MetricSample) float64 { return s.PowerWatts }
	MemoryUsage Extractor = func(s domain.MetricSample) float64 { return s.MemoryUsagePct() }
)

// Stats computes TrendStats for one metric over the window, with
// SecondsAbove accumulated against the given threshold. A short window is
// not an error: whatever samples exist contribute, and an empty window
// yields zero stats.
func Stats(w history.Window, metric Extractor, threshold float64) domain.TrendStats {
	n := w.Len()
	if n == 0 {
		return domain.TrendStats{}
	}

	first := metric(w.At(0))
	stats := domain.TrendStats{
		Min:     first,
		Max:     first,
		Peak:    first,
		PeakAt:  w.At(0).Timestamp,
		Samples: n,
	}

	var sum float64
	for i := 0; i < n; i++ {
		v := metric(w.At(i))
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		if v > stats.Peak {
			stats.Peak = v
			stats.PeakAt = w.At(i).Timestamp
		}
	}
	stats.Mean = sum / float64(n)
	stats.Slope = Slope(w, metric)
	stats.SecondsAbove = SecondsAbove(w, metric, threshold)
	return stats
}

// Slope is the least-squares rate of change in metric units per second
// over the window. Defined as 0 with fewer than two samples or when all
// timestamps coincide.
func Slope(w history.Window, metric Extractor) float64 {
	n := w.Len()
	if n < 2 {
		return 0
	}

	// Seconds relative to the first sample keep the sums small and the
	// arithmetic stable.
	t0 := w.At(0).Timestamp
	var sumT, sumV, sumTT, sumTV float64
	for i := 0; i < n; i++ {
		s := w.At(i)
		ts := s.Timestamp.Sub(t0).Seconds()
		v := metric(s)
		sumT += ts
		sumV += v
		sumTT += ts * ts
		sumTV += ts * v
	}

	fn := float64(n)
	denom := fn*sumTT - sumT*sumT
	if denom == 0 {
		return 0
	}
	return (fn*sumTV - sumT*sumV) / denom
}

// SecondsAbove sums the actual inter-sample gaps during which the metric
// held at or above the threshold. Real timestamp deltas handle scheduling
// jitter; uniform 1 Hz spacing is never assumed. A gap counts when the
// sample opening it is at or above the threshold.
func SecondsAbove(w history.Window, metric Extractor, threshold float64) float64 {
	n := w.Len()
	if n == 0 {
		return 0
	}

	var total float64
	for i := 1; i < n; i++ {
		if metric(w.At(i-1)) >= threshold {
			total += w.At(i).Timestamp.Sub(w.At(i - 1).Timestamp).Seconds()
		}
	}
	// The newest sample has no successor yet; count it as one nominal
	// gap so a single over-threshold sample still registers.
	if metric(w.At(n-1)) >= threshold {
		total += nominalGap(w).Seconds()
	}
	return total
}

// Spikes counts jumps of at least delta between consecutive samples over
// the most recent recent samples of the window. Used for power stability
// (sudden draw increases point at supply problems).
func Spikes(w history.Window, metric Extractor, delta float64, recent int) int {
	n := w.Len()
	start := 1
	if recent > 0 && n-recent > start {
		start = n - recent
	}

	count := 0
	for i := start; i < n; i++ {
		if metric(w.At(i))-metric(w.At(i-1)) >= delta {
			count++
		}
	}
	return count
}

// nominalGap estimates one tick interval from the median of observed
// gaps, defaulting to one second for windows too short to measure.
func nominalGap(w history.Window) time.Duration {
	n := w.Len()
	if n < 2 {
		return time.Second
	}
	// The window is append-ordered, so gaps are already roughly sorted
	// by arrival; the middle gap is a cheap robust estimate.
	mid := w.At(n / 2).Timestamp.Sub(w.At(n/2 - 1).Timestamp)
	if mid <= 0 {
		return time.Second
	}
	return mid
}
