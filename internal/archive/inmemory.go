package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/humaxai2025/gputop/internal/domain"
)

// InMemoryArchiver keeps archived snapshots in process memory with a
// per-device cap. The default archiver for single-node deployments and
// tests; swap in the Mongo implementation for durable export feeds.
type InMemoryArchiver struct {
	mu       sync.RWMutex
	data     map[domain.DeviceID][]domain.HealthSnapshot
	maxEntry int
}

// NewInMemoryArchiver creates an archiver retaining at most maxEntries
// snapshots per device (0 means an hour at 1 Hz).
func NewInMemoryArchiver(maxEntries int) *InMemoryArchiver {
	if maxEntries <= 0 {
		maxEntries = 3600
	}
	return &InMemoryArchiver{
		data:     make(map[domain.DeviceID][]domain.HealthSnapshot),
		maxEntry: maxEntries,
	}
}

// Store persists one snapshot, evicting the oldest past the cap.
func (a *InMemoryArchiver) Store(_ context.Context, snapshot domain.HealthSnapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries := append(a.data[snapshot.Device], snapshot)
	if len(entries) > a.maxEntry {
		entries = entries[len(entries)-a.maxEntry:]
	}
	a.data[snapshot.Device] = entries
	return nil
}

// GetByDevice retrieves snapshots for a device ordered by sample
// timestamp, with optional time filtering. An unknown device yields an
// empty slice, not an error.
func (a *InMemoryArchiver) GetByDevice(_ context.Context, device domain.DeviceID, filter TimeFilter) ([]domain.HealthSnapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries, ok := a.data[device]
	if !ok {
		return []domain.HealthSnapshot{}, nil
	}

	filtered := make([]domain.HealthSnapshot, 0, len(entries))
	for _, snap := range entries {
		if filter.StartTime != nil && snap.Sample.Timestamp.Before(*filter.StartTime) {
			continue
		}
		if filter.EndTime != nil && snap.Sample.Timestamp.After(*filter.EndTime) {
			continue
		}
		filtered = append(filtered, snap)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Sample.Timestamp.Before(filtered[j].Sample.Timestamp)
	})
	return filtered, nil
}

// Count returns the total number of archived snapshots.
func (a *InMemoryArchiver) Count(_ context.Context) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var count int64
	for _, entries := range a.data {
		count += int64(len(entries))
	}
	return count, nil
}

// Close is a no-op for the in-memory archiver.
func (a *InMemoryArchiver) Close(context.Context) error {
	return nil
}
