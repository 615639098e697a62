package sampler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humaxai2025/gputop/internal/domain"
)

type recordingIngestor struct {
	mu    sync.Mutex
	ticks map[domain.DeviceID]int
}

func newRecordingIngestor() *recordingIngestor {
	return &recordingIngestor{ticks: make(map[domain.DeviceID]int)}
}

func (r *recordingIngestor) Tick(device domain.DeviceID, _ domain.MetricSample) []domain.AlertTransition {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks[device]++
	return nil
}

func (r *recordingIngestor) count(device domain.DeviceID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks[device]
}

type failingSource struct{}

func (failingSource) Devices(context.Context) ([]domain.DeviceID, error) {
	return nil, errors.New("driver unavailable")
}
func (failingSource) Sample(context.Context, domain.DeviceID) (domain.MetricSample, error) {
	return domain.MetricSample{}, errors.New("driver unavailable")
}
func (failingSource) Close() error { return nil }

func TestMockSource_EnumeratesDevices(t *testing.T) {
	src := NewMockSource(3)
	devices, err := src.Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.DeviceID{0, 1, 2}, devices)
}

func TestMockSource_SamplesAreSane(t *testing.T) {
	src := NewMockSource(1)
	for i := 0; i < 200; i++ {
		s, err := src.Sample(context.Background(), 0)
		require.NoError(t, err)
		assert.Empty(t, s.Clamp(), "mock samples must already be in range")
		assert.NotZero(t, s.MemoryTotal)
		assert.False(t, s.Timestamp.IsZero())
	}
}

func TestPoller_TicksEveryDevice(t *testing.T) {
	src := NewMockSource(2)
	ing := newRecordingIngestor()
	p := NewPoller(src, ing, 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Greater(t, ing.count(0), 2)
	assert.Greater(t, ing.count(1), 2)
	assert.Greater(t, p.Stats().TicksOK, int64(4))
}

func TestPoller_FailedEnumeration(t *testing.T) {
	p := NewPoller(failingSource{}, newRecordingIngestor(), time.Millisecond, nil)
	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enumerate")
}

func TestPoller_StopsBetweenTicks(t *testing.T) {
	src := NewMockSource(1)
	ing := newRecordingIngestor()
	p := NewPoller(src, ing, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}
