package notify

import (
	"context"
	"sync"
	"time"

	"github.com/humaxai2025/gputop/internal/domain"
)

// Throttle suppresses repeat notifications for the same (device,
// category) within a minimum interval. Activations after a genuine clear
// and lifecycle changes (upgrade, clear) always pass; only repeats of an
// unchanged situation are swallowed.
type Throttle struct {
	next        Notifier
	minInterval time.Duration

	mu       sync.Mutex
	lastSent map[throttleKey]time.Time
	now      func() time.Time // test seam
}

type throttleKey struct {
	device   domain.DeviceID
	category domain.AlertCategory
	kind     domain.TransitionKind
}

// NewThrottle wraps a notifier with a per-condition minimum interval.
func NewThrottle(next Notifier, minInterval time.Duration) *Throttle {
	return &Throttle{
		next:        next,
		minInterval: minInterval,
		lastSent:    make(map[throttleKey]time.Time),
		now:         time.Now,
	}
}

// Notify forwards the transition unless an identical one was surfaced
// too recently.
func (t *Throttle) Notify(ctx context.Context, tr domain.AlertTransition) error {
	key := throttleKey{device: tr.Alert.Device, category: tr.Alert.Category, kind: tr.Kind}

	t.mu.Lock()
	now := t.now()
	if tr.Kind == domain.TransitionCleared {
		// The condition genuinely ended: forget its activation history so
		// the next activation is never mistaken for a repeat.
		delete(t.lastSent, throttleKey{device: tr.Alert.Device, category: tr.Alert.Category, kind: domain.TransitionActivated})
		delete(t.lastSent, throttleKey{device: tr.Alert.Device, category: tr.Alert.Category, kind: domain.TransitionUpgraded})
	}
	if last, ok := t.lastSent[key]; ok && now.Sub(last) < t.minInterval {
		t.mu.Unlock()
		return nil
	}
	t.lastSent[key] = now
	t.mu.Unlock()

	return t.next.Notify(ctx, tr)
}

// Close closes the wrapped notifier.
func (t *Throttle) Close() error {
	return t.next.Close()
}
