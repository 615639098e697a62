// Package archive persists published snapshots for the external export
// subsystem. The monitoring core itself never reads these back; history
// is always rebuilt from live samples after a restart.
package archive

import (
	"context"
	"time"

	"github.com/humaxai2025/gputop/internal/domain"
)

// TimeFilter represents optional time range filters for querying archived snapshots
type TimeFilter struct {
	StartTime *time.Time
	EndTime   *time.Time
}

// SnapshotArchiver defines the interface for snapshot persistence
type SnapshotArchiver interface {
	// Store persists one published snapshot
	Store(ctx context.Context, snapshot domain.HealthSnapshot) error

	// GetByDevice retrieves archived snapshots for a device, ordered by
	// sample timestamp, with optional time filtering
	GetByDevice(ctx context.Context, device domain.DeviceID, filter TimeFilter) ([]domain.HealthSnapshot, error)

	// Count returns the total number of archived snapshots
	Count(ctx context.Context) (int64, error)

	// Close releases backing resources
	Close(ctx context.Context) error
}
