package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humaxai2025/gputop/internal/domain"
	"github.com/humaxai2025/gputop/internal/history"
)

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// seriesAt1Hz builds a window of temperature samples spaced one second apart.
func seriesAt1Hz(values ...float64) history.Window {
	samples := make([]domain.MetricSample, len(values))
	for i, v := range values {
		samples[i] = domain.MetricSample{
			Timestamp:    base.Add(time.Duration(i) * time.Second),
			TemperatureC: v,
		}
	}
	return history.NewWindow(samples)
}

func TestStats_EmptyWindow(t *testing.T) {
	stats := Stats(history.Window{}, Temperature, 80)
	assert.Equal(t, domain.TrendStats{}, stats)
}

func TestStats_SingleSample(t *testing.T) {
	stats := Stats(seriesAt1Hz(72), Temperature, 80)

	assert.Equal(t, 72.0, stats.Mean)
	assert.Equal(t, 72.0, stats.Min)
	assert.Equal(t, 72.0, stats.Max)
	assert.Equal(t, 0.0, stats.Slope, "slope is defined as 0 with fewer than 2 samples")
	assert.Equal(t, 1, stats.Samples)
}

func TestStats_MeanMinMaxPeak(t *testing.T) {
	stats := Stats(seriesAt1Hz(60, 70, 90, 80), Temperature, 100)

	assert.InDelta(t, 75.0, stats.Mean, 0.001)
	assert.Equal(t, 60.0, stats.Min)
	assert.Equal(t, 90.0, stats.Max)
	assert.Equal(t, 90.0, stats.Peak)
	assert.Equal(t, base.Add(2*time.Second), stats.PeakAt)
}

func TestSlope_LinearRamp(t *testing.T) {
	// 2 degrees per second, exactly.
	w := seriesAt1Hz(40, 42, 44, 46, 48)
	assert.InDelta(t, 2.0, Slope(w, Temperature), 1e-9)
}

func TestSlope_ConstantSeriesIsZero(t *testing.T) {
	w := seriesAt1Hz(65, 65, 65, 65)
	assert.InDelta(t, 0.0, Slope(w, Temperature), 1e-9)
}

func TestSlope_IrregularSpacing(t *testing.T) {
	// Same 1 unit/second ramp but with jittered gaps.
	samples := []domain.MetricSample{
		{Timestamp: base, TemperatureC: 10},
		{Timestamp: base.Add(1500 * time.Millisecond), TemperatureC: 11.5},
		{Timestamp: base.Add(2 * time.Second), TemperatureC: 12},
		{Timestamp: base.Add(4500 * time.Millisecond), TemperatureC: 14.5},
	}
	assert.InDelta(t, 1.0, Slope(history.NewWindow(samples), Temperature), 1e-9)
}

func TestSecondsAbove_UniformSpacing(t *testing.T) {
	// 4 of 6 samples are at or above 80 at 1 Hz.
	w := seriesAt1Hz(70, 75, 80, 85, 90, 95)
	assert.InDelta(t, 4.0, SecondsAbove(w, Temperature, 80), 0.001)
}

func TestSecondsAbove_IrregularGaps(t *testing.T) {
	samples := []domain.MetricSample{
		{Timestamp: base, TemperatureC: 85},                        // opens a 3s gap above
		{Timestamp: base.Add(3 * time.Second), TemperatureC: 70},   // below
		{Timestamp: base.Add(4 * time.Second), TemperatureC: 82},   // opens a 2s gap above
		{Timestamp: base.Add(6 * time.Second), TemperatureC: 75},   // below, closes the series
	}
	assert.InDelta(t, 5.0, SecondsAbove(history.NewWindow(samples), Temperature, 80), 0.001)
}

func TestSecondsAbove_RampScenario(t *testing.T) {
	// Linear ramp 40..95 over 300 samples at 1 Hz: seconds above 80
	// must equal the count of samples at or above 80.
	values := make([]float64, 300)
	countAbove := 0
	for i := range values {
		values[i] = 40 + (95-40)*float64(i)/299.0
		if values[i] >= 80 {
			countAbove++
		}
	}
	w := seriesAt1Hz(values...)
	assert.InDelta(t, float64(countAbove), SecondsAbove(w, Temperature, 80), 0.001)
}

func TestSpikes_CountsSuddenJumps(t *testing.T) {
	samples := []domain.MetricSample{
		{Timestamp: base, PowerWatts: 100},
		{Timestamp: base.Add(1 * time.Second), PowerWatts: 130}, // +30 spike
		{Timestamp: base.Add(2 * time.Second), PowerWatts: 135},
		{Timestamp: base.Add(3 * time.Second), PowerWatts: 160}, // +25 spike
		{Timestamp: base.Add(4 * time.Second), PowerWatts: 150},
	}
	w := history.NewWindow(samples)

	assert.Equal(t, 2, Spikes(w, Power, 20, 0))
	assert.Equal(t, 1, Spikes(w, Power, 20, 2), "restricting to recent samples drops the older spike")
}

func TestStats_PureOverSameWindow(t *testing.T) {
	w := seriesAt1Hz(55, 60, 62, 58, 61)

	first := Stats(w, Temperature, 80)
	second := Stats(w, Temperature, 80)
	require.Equal(t, first, second, "identical windows must yield identical stats")
}
