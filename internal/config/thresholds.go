package config

import (
	"sync/atomic"

	"github.com/humaxai2025/gputop/internal/domain"
)

// ThresholdStore is the settings collaborator's live threshold value:
// a single atomic cell the API writes and every tick reads exactly once
// at its start. Updates take effect on the next tick, no restart.
type ThresholdStore struct {
	current atomic.Pointer[domain.Thresholds]
}

// NewThresholdStore creates a store seeded with the given thresholds.
func NewThresholdStore(initial domain.Thresholds) *ThresholdStore {
	s := &ThresholdStore{}
	s.current.Store(&initial)
	return s
}

// Current returns the live thresholds. Never blocks.
func (s *ThresholdStore) Current() domain.Thresholds {
	return *s.current.Load()
}

// Update validates and swaps in new thresholds.
func (s *ThresholdStore) Update(th domain.Thresholds) error {
	if err := th.Validate(); err != nil {
		return err
	}
	s.current.Store(&th)
	return nil
}
