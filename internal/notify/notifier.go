// Package notify delivers alert lifecycle transitions to the outside
// world. The alert engine always reflects true deduplicated state; how
// often duplicates reach a human is decided here.
package notify

import (
	"context"
	"log/slog"

	"github.com/humaxai2025/gputop/internal/domain"
)

// Notifier delivers one alert transition. Implementations own their own
// delivery semantics; errors are reported, not retried, since the next
// transition supersedes a lost one.
type Notifier interface {
	Notify(ctx context.Context, tr domain.AlertTransition) error
	Close() error
}

// Fanout delivers every transition to each wrapped notifier.
type Fanout []Notifier

// Notify delivers to all members, returning the first error seen.
func (f Fanout) Notify(ctx context.Context, tr domain.AlertTransition) error {
	var firstErr error
	for _, n := range f {
		if err := n.Notify(ctx, tr); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all members.
func (f Fanout) Close() error {
	var firstErr error
	for _, n := range f {
		if err := n.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SlogNotifier writes transitions to the structured log. The local
// fallback delivery channel when no external sink is configured.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a log-based notifier.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger.With("component", "notifier")}
}

// Notify logs the transition at a level matching its severity.
func (n *SlogNotifier) Notify(_ context.Context, tr domain.AlertTransition) error {
	level := slog.LevelInfo
	if tr.Kind != domain.TransitionCleared && tr.Alert.Severity >= domain.SeverityCritical {
		level = slog.LevelError
	} else if tr.Kind != domain.TransitionCleared && tr.Alert.Severity >= domain.SeverityWarning {
		level = slog.LevelWarn
	}

	n.logger.Log(context.Background(), level, "Alert transition",
		"kind", tr.Kind,
		"device", tr.Alert.Device,
		"category", tr.Alert.Category,
		"severity", tr.Alert.Severity.String(),
		"message", tr.Alert.Message,
		"occurrences", tr.Alert.Occurrences,
	)
	return nil
}

// Close is a no-op.
func (n *SlogNotifier) Close() error {
	return nil
}
