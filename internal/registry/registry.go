// Package registry owns per-device monitoring state and the tick
// pipeline. The Registry is an explicit value constructed by the caller,
// never ambient/global state, so tests build isolated instances.
package registry

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/humaxai2025/gputop/internal/alerts"
	"github.com/humaxai2025/gputop/internal/domain"
	"github.com/humaxai2025/gputop/internal/history"
	"github.com/humaxai2025/gputop/internal/memhealth"
	"github.com/humaxai2025/gputop/internal/score"
	"github.com/humaxai2025/gputop/internal/trend"
)

// ThresholdSource yields the current thresholds. Each tick reads it
// exactly once at the start and uses that value throughout, so a
// mid-tick settings update can never produce a torn snapshot.
type ThresholdSource interface {
	Current() domain.Thresholds
}

// TransitionSink receives alert lifecycle events as ticks produce them.
// Implementations must not block; the registry calls it on the ingestion
// path.
type TransitionSink func(domain.AlertTransition)

// session is the per-device state. One writer (the device's tick) mutates
// it; readers only touch the published snapshot pointer. Sample history
// lives in the shared store, which synchronizes ticks against API reads.
type session struct {
	engine         *alerts.Engine
	snapshot       atomic.Pointer[domain.HealthSnapshot]
	bestEfficiency float64
	firstSeen      time.Time
	lastSample     atomic.Int64 // unix nanos of the newest sample
}

// Options configures a Registry.
type Options struct {
	// Capacity is the per-device history ring size (default 300)
	Capacity int

	// StaleAfter marks a device stale when no sample arrived for this
	// long (default 5s, several 1 Hz intervals)
	StaleAfter time.Duration

	// OnTransition receives alert lifecycle events (optional)
	OnTransition TransitionSink

	Logger *slog.Logger
}

// Registry maps devices to their sessions and tracks the selected device.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.DeviceID]*session
	selected domain.DeviceID
	history  *history.Store

	thresholds ThresholdSource
	opts       Options
	logger     *slog.Logger

	now func() time.Time // test seam

	ticksProcessed atomic.Int64
	samplesClamped atomic.Int64
}

// New creates a registry reading thresholds from the given source.
func New(thresholds ThresholdSource, opts Options) *Registry {
	if opts.Capacity <= 0 {
		opts.Capacity = history.DefaultCapacity
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		sessions:   make(map[domain.DeviceID]*session),
		history:    history.NewStore(opts.Capacity),
		thresholds: thresholds,
		opts:       opts,
		logger:     logger.With("component", "registry"),
		now:        time.Now,
	}
}

// Tick is the single ingestion entry point: once per device per polling
// interval. Stages run in fixed order - history append, trend analysis,
// memory health, scoring, alert evaluation - each consuming only prior
// stages' outputs for this tick. The whole tick applies atomically from a
// reader's perspective: the snapshot swap is the only visible effect.
func (r *Registry) Tick(device domain.DeviceID, sample domain.MetricSample) []domain.AlertTransition {
	th := r.thresholds.Current()

	// Clamp garbled values before anything downstream sees them. The
	// tick still completes; the fixes surface in the diagnostics.
	var diagnostics []string
	if fixed := sample.Clamp(); len(fixed) > 0 {
		r.samplesClamped.Add(1)
		diagnostics = fixed
		r.logger.Warn("Clamped out-of-range sample",
			"device", device,
			"fields", fixed,
		)
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = r.now()
		diagnostics = append(diagnostics, "missing timestamp filled at ingestion")
	}

	s := r.sessionFor(device, sample.Timestamp)

	r.history.Append(device, sample)
	window := r.history.Window(device, 0)

	trends := domain.DeviceTrends{
		Utilization: trend.Stats(window, trend.Utilization, 100),
		Temperature: trend.Stats(window, trend.Temperature, th.TempWarn),
		Power:       trend.Stats(window, trend.Power, th.PowerWarn),
		MemoryUsage: trend.Stats(window, trend.MemoryUsage, th.MemWarn),
	}
	trends.Power.Spikes = trend.Spikes(window, trend.Power, 20, 10)

	mem := memhealth.Analyze(window, th.LeakRatio)

	if eff := sample.Efficiency(); eff > s.bestEfficiency {
		s.bestEfficiency = eff
	}
	sc := score.Compute(score.Inputs{
		Sample:         sample,
		Memory:         mem,
		Thresholds:     th,
		BestEfficiency: s.bestEfficiency,
	})

	transitions := s.engine.Evaluate(sample, mem, th)

	snapshot := &domain.HealthSnapshot{
		Device:      device,
		Sample:      sample,
		Trends:      trends,
		Memory:      mem,
		Score:       sc,
		Status:      sc.Status(),
		Alerts:      s.engine.Active(),
		UptimeHrs:   sample.Timestamp.Sub(s.firstSeen).Hours(),
		Diagnostics: diagnostics,
	}

	// Publish by replacement: readers always see either the prior
	// complete snapshot or this one, never a partial tick.
	s.snapshot.Store(snapshot)
	s.lastSample.Store(sample.Timestamp.UnixNano())
	r.ticksProcessed.Add(1)

	if r.opts.OnTransition != nil {
		for _, tr := range transitions {
			r.opts.OnTransition(tr)
		}
	}
	return transitions
}

// sessionFor returns the session for a device, creating it on first
// sample.
func (r *Registry) sessionFor(device domain.DeviceID, firstSeen time.Time) *session {
	r.mu.RLock()
	s, ok := r.sessions[device]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.sessions[device]; ok {
		return s
	}
	s = &session{
		engine:    alerts.NewEngine(device),
		firstSeen: firstSeen,
	}
	r.sessions[device] = s
	r.logger.Info("Created device session", "device", device)
	return s
}

// Snapshot returns the most recent complete tick's result for a device.
// ErrUnknownDevice before the first sample. The returned value is a copy
// with staleness computed at read time; the published snapshot itself is
// never mutated.
func (r *Registry) Snapshot(device domain.DeviceID) (domain.HealthSnapshot, error) {
	r.mu.RLock()
	s, ok := r.sessions[device]
	r.mu.RUnlock()
	if !ok {
		return domain.HealthSnapshot{}, domain.ErrUnknownDevice
	}

	snap := s.snapshot.Load()
	if snap == nil {
		return domain.HealthSnapshot{}, domain.ErrUnknownDevice
	}

	out := *snap
	if r.now().Sub(time.Unix(0, s.lastSample.Load())) > r.opts.StaleAfter {
		out.Stale = true
	}
	return out, nil
}

// History returns a copy of the full retained window for a device, for
// the export subsystem. Empty for an unknown device. Safe to call from
// any goroutine; the store synchronizes against in-flight ticks.
func (r *Registry) History(device domain.DeviceID) []domain.MetricSample {
	r.mu.RLock()
	_, ok := r.sessions[device]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.history.Window(device, 0).Samples()
}

// Select marks a device as the UI's current one. Fails with
// ErrUnknownDevice if no session exists yet.
func (r *Registry) Select(device domain.DeviceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[device]; !ok {
		return domain.ErrUnknownDevice
	}
	r.selected = device
	return nil
}

// Selected returns the currently-selected device.
func (r *Registry) Selected() domain.DeviceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selected
}

// Devices lists every device with a session.
func (r *Registry) Devices() []domain.DeviceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DeviceID, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

// Stats returns ingestion counters for the periodic reporter.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	devices := len(r.sessions)
	r.mu.RUnlock()
	return RegistryStats{
		TicksProcessed: r.ticksProcessed.Load(),
		SamplesClamped: r.samplesClamped.Load(),
		Devices:        devices,
	}
}

// RegistryStats holds ingestion counters.
type RegistryStats struct {
	TicksProcessed int64
	SamplesClamped int64
	Devices        int
}