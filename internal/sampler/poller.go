package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/humaxai2025/gputop/internal/domain"
)

// Ingestor is the registry's ingestion entry point.
type Ingestor interface {
	Tick(device domain.DeviceID, sample domain.MetricSample) []domain.AlertTransition
}

// Poller drives one tick per device per interval. Devices tick on
// independent goroutines - their sessions share no mutable state - while
// each device's own ticks stay strictly sequential. Cancellation lands
// between ticks, never mid-tick, so no tick is left partially applied.
type Poller struct {
	source   SampleSource
	ingestor Ingestor
	interval time.Duration
	logger   *slog.Logger

	ticksOK     atomic.Int64
	ticksFailed atomic.Int64
}

// NewPoller creates a poller at the given cadence.
func NewPoller(source SampleSource, ingestor Ingestor, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:   source,
		ingestor: ingestor,
		interval: interval,
		logger:   logger.With("component", "poller"),
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	devices, err := p.source.Devices(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no devices to monitor")
	}

	p.logger.Info("Starting sample poller",
		"devices", len(devices),
		"interval", p.interval,
	)

	go p.reportStats(ctx)

	var wg sync.WaitGroup
	for _, device := range devices {
		wg.Add(1)
		go func(device domain.DeviceID) {
			defer wg.Done()
			p.pollDevice(ctx, device)
		}(device)
	}
	wg.Wait()

	p.logger.Info("Poller shutting down",
		"ticks_ok", p.ticksOK.Load(),
		"ticks_failed", p.ticksFailed.Load(),
	)
	return ctx.Err()
}

// pollDevice runs one device's tick loop.
func (p *Poller) pollDevice(ctx context.Context, device domain.DeviceID) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample, err := p.source.Sample(ctx, device)
			if err != nil {
				// Skip the tick; the registry surfaces the gap as a
				// stale flag once enough intervals are missed.
				p.ticksFailed.Add(1)
				p.logger.Warn("Failed to sample device",
					"device", device,
					"error", err,
				)
				continue
			}
			p.ingestor.Tick(device, sample)
			p.ticksOK.Add(1)
		}
	}
}

// reportStats periodically logs poller statistics
func (p *Poller) reportStats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.logger.Info("Poller statistics",
				"ticks_ok", p.ticksOK.Load(),
				"ticks_failed", p.ticksFailed.Load(),
			)
		}
	}
}

// Stats returns current poller counters.
func (p *Poller) Stats() PollerStats {
	return PollerStats{
		TicksOK:     p.ticksOK.Load(),
		TicksFailed: p.ticksFailed.Load(),
	}
}

// PollerStats holds poller counters.
type PollerStats struct {
	TicksOK     int64
	TicksFailed int64
}
