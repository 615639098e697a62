package history

import "github.com/humaxai2025/gputop/internal/domain"

// Ring is a fixed-capacity circular buffer of samples, oldest evicted
// first. Append never allocates once the backing array is full.
// Not safe for concurrent use on its own; the Store serializes access.
type Ring struct {
	buf   []domain.MetricSample
	head  int // index of the oldest sample
	count int
}

// NewRing creates a ring with the given capacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]domain.MetricSample, capacity)}
}

// Append adds a sample, evicting the oldest when full. O(1), never fails.
func (r *Ring) Append(s domain.MetricSample) {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = s
		r.count++
		return
	}
	// Full: overwrite the oldest slot and advance the head.
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of retained samples, always <= capacity.
func (r *Ring) Len() int {
	return r.count
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// At returns the i-th retained sample in arrival order, 0 being the
// oldest. Panics on out-of-range access like a slice would.
func (r *Ring) At(i int) domain.MetricSample {
	if i < 0 || i >= r.count {
		panic("history: ring index out of range")
	}
	return r.buf[(r.head+i)%len(r.buf)]
}

// Latest returns the newest sample, if any.
func (r *Ring) Latest() (domain.MetricSample, bool) {
	if r.count == 0 {
		return domain.MetricSample{}, false
	}
	return r.At(r.count - 1), true
}
