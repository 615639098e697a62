package history

import (
	"sync"
	"time"

	"github.com/humaxai2025/gputop/internal/domain"
)

// DefaultCapacity retains 5 minutes of samples at a 1 Hz tick.
const DefaultCapacity = 300

// Store holds one ring per device. Capacity is fixed at construction and
// applies uniformly to every device, since one sample carries all metrics
// for a tick.
//
// Thread-safe: ingestion is single-writer per device, but API readers
// copy history concurrently with appends.
type Store struct {
	mu       sync.RWMutex
	rings    map[domain.DeviceID]*Ring
	capacity int
}

// NewStore creates a store with the given per-device capacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		rings:    make(map[domain.DeviceID]*Ring),
		capacity: capacity,
	}
}

// Append records a sample for a device, creating its ring on first use.
// O(1), never fails.
func (s *Store) Append(device domain.DeviceID, sample domain.MetricSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rings[device]
	if !ok {
		r = NewRing(s.capacity)
		s.rings[device] = r
	}
	r.Append(sample)
}

// Window returns a read-only ordered view over the most recent n samples
// for a device. n <= 0 means the full retained window. An unknown device
// or empty history yields an empty window, not an error.
func (s *Store) Window(device domain.DeviceID, n int) Window {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rings[device]
	if !ok || r.count == 0 {
		return Window{}
	}

	count := r.count
	if n > 0 && n < count {
		count = n
	}

	// Copy out the slice so the view stays stable while the writer keeps
	// appending. Bounded by capacity, so this is a fixed-size cost.
	samples := make([]domain.MetricSample, count)
	start := r.count - count
	for i := 0; i < count; i++ {
		samples[i] = r.At(start + i)
	}
	return Window{samples: samples}
}

// WindowSince returns the view restricted to samples at or after cutoff.
func (s *Store) WindowSince(device domain.DeviceID, cutoff time.Time) Window {
	full := s.Window(device, 0)
	i := 0
	for i < full.Len() && full.At(i).Timestamp.Before(cutoff) {
		i++
	}
	return Window{samples: full.samples[i:]}
}

// Latest returns the newest sample for a device.
func (s *Store) Latest(device domain.DeviceID) (domain.MetricSample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rings[device]
	if !ok {
		return domain.MetricSample{}, false
	}
	return r.Latest()
}

// Len returns the retained sample count for a device.
func (s *Store) Len(device domain.DeviceID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rings[device]
	if !ok {
		return 0
	}
	return r.Len()
}

// Devices returns every device with at least one sample.
func (s *Store) Devices() []domain.DeviceID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make([]domain.DeviceID, 0, len(s.rings))
	for id := range s.rings {
		devices = append(devices, id)
	}
	return devices
}

// Window is an immutable, restartable, finite view over retained samples
// in arrival order. The zero value is an empty window.
type Window struct {
	samples []domain.MetricSample
}

// NewWindow wraps a sample slice as a view. Used by analyzers' tests to
// build windows without a store.
func NewWindow(samples []domain.MetricSample) Window {
	return Window{samples: samples}
}

// Len returns the number of samples in the view.
func (w Window) Len() int {
	return len(w.samples)
}

// At returns the i-th sample, 0 being the oldest in the view.
func (w Window) At(i int) domain.MetricSample {
	return w.samples[i]
}

// Slice returns the view restricted to [from, to).
func (w Window) Slice(from, to int) Window {
	return Window{samples: w.samples[from:to]}
}

// Samples returns a copy of the underlying samples, for export.
func (w Window) Samples() []domain.MetricSample {
	out := make([]domain.MetricSample, len(w.samples))
	copy(out, w.samples)
	return out
}
