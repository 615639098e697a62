package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humaxai2025/gputop/internal/domain"
)

func sampleAt(tick int) domain.MetricSample {
	return domain.MetricSample{
		Timestamp:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(tick) * time.Second),
		UtilizationPct: float64(tick),
	}
}

func TestRing_AppendBelowCapacity(t *testing.T) {
	r := NewRing(5)
	for i := 0; i < 3; i++ {
		r.Append(sampleAt(i))
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 0.0, r.At(0).UtilizationPct)
	assert.Equal(t, 2.0, r.At(2).UtilizationPct)
}

func TestRing_EvictsOldestAtCapacity(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 7; i++ {
		r.Append(sampleAt(i))
	}

	require.Equal(t, 3, r.Len())
	assert.Equal(t, 4.0, r.At(0).UtilizationPct)
	assert.Equal(t, 5.0, r.At(1).UtilizationPct)
	assert.Equal(t, 6.0, r.At(2).UtilizationPct)
}

// Ring invariant: for any N > capacity appends the length never exceeds
// capacity and exactly the most recent samples survive, in arrival order.
func TestStore_RingInvariant(t *testing.T) {
	store := NewStore(300)
	const appends = 1000

	for i := 0; i < appends; i++ {
		store.Append(0, sampleAt(i))
		assert.LessOrEqual(t, store.Len(0), 300)
	}

	w := store.Window(0, 0)
	require.Equal(t, 300, w.Len())
	for i := 0; i < w.Len(); i++ {
		assert.Equal(t, float64(appends-300+i), w.At(i).UtilizationPct,
			"window position %d must hold the %d most recent samples in order", i, 300)
	}
}

func TestStore_WindowUnknownDeviceIsEmpty(t *testing.T) {
	store := NewStore(10)
	w := store.Window(42, 0)
	assert.Equal(t, 0, w.Len())
}

func TestStore_WindowLimitsSampleCount(t *testing.T) {
	store := NewStore(10)
	for i := 0; i < 8; i++ {
		store.Append(1, sampleAt(i))
	}

	w := store.Window(1, 3)
	require.Equal(t, 3, w.Len())
	assert.Equal(t, 5.0, w.At(0).UtilizationPct)
	assert.Equal(t, 7.0, w.At(2).UtilizationPct)
}

func TestStore_WindowSince(t *testing.T) {
	store := NewStore(10)
	for i := 0; i < 6; i++ {
		store.Append(1, sampleAt(i))
	}

	cutoff := sampleAt(3).Timestamp
	w := store.WindowSince(1, cutoff)
	require.Equal(t, 3, w.Len())
	assert.Equal(t, 3.0, w.At(0).UtilizationPct)
}

func TestStore_WindowIsStableUnderAppends(t *testing.T) {
	store := NewStore(4)
	for i := 0; i < 4; i++ {
		store.Append(1, sampleAt(i))
	}

	w := store.Window(1, 0)
	store.Append(1, sampleAt(99))

	// The view must not see the post-read append.
	require.Equal(t, 4, w.Len())
	assert.Equal(t, 3.0, w.At(3).UtilizationPct)
}

func TestStore_LatestAndDevices(t *testing.T) {
	store := NewStore(10)
	_, ok := store.Latest(0)
	assert.False(t, ok)

	store.Append(0, sampleAt(1))
	store.Append(2, sampleAt(2))

	latest, ok := store.Latest(0)
	require.True(t, ok)
	assert.Equal(t, 1.0, latest.UtilizationPct)
	assert.ElementsMatch(t, []domain.DeviceID{0, 2}, store.Devices())
}
