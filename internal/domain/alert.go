package domain

import (
	"fmt"
	"time"
)

// AlertCategory identifies which condition an alert tracks. One alert at
// most is active per (device, category).
type AlertCategory string

const (
	CategoryTemperature AlertCategory = "temperature"
	CategoryPower       AlertCategory = "power"
	CategoryMemory      AlertCategory = "memory"
	CategoryThrottling  AlertCategory = "throttling"
)

// AlertSeverity orders alert urgency. Comparable: a higher value is a
// more severe condition.
type AlertSeverity int

const (
	SeverityInfo AlertSeverity = iota + 1
	SeverityWarning
	SeverityCritical
)

func (s AlertSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity as its name.
func (s AlertSeverity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a severity name.
func (s *AlertSeverity) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"info"`:
		*s = SeverityInfo
	case `"warning"`:
		*s = SeverityWarning
	case `"critical"`:
		*s = SeverityCritical
	default:
		return fmt.Errorf("%w: unknown severity %s", ErrInvalidInput, data)
	}
	return nil
}

// Alert is one threshold condition observed on one device. While the
// condition persists the same alert is updated (LastSeen, Occurrences)
// rather than duplicated; it closes only after the condition stays clear
// for the debounce period.
type Alert struct {
	ID          string        `json:"id" bson:"id"`
	Device      DeviceID      `json:"device" bson:"device"`
	Category    AlertCategory `json:"category" bson:"category"`
	Severity    AlertSeverity `json:"severity" bson:"severity"`
	Message     string        `json:"message" bson:"message"`
	Value       float64       `json:"value" bson:"value"`
	Threshold   float64       `json:"threshold" bson:"threshold"`
	FirstSeen   time.Time     `json:"first_seen" bson:"first_seen"`
	LastSeen    time.Time     `json:"last_seen" bson:"last_seen"`
	Occurrences int           `json:"occurrence_count" bson:"occurrence_count"`
}

// TransitionKind labels an alert lifecycle event.
type TransitionKind string

const (
	TransitionActivated TransitionKind = "activated"
	TransitionUpgraded  TransitionKind = "upgraded"
	TransitionCleared   TransitionKind = "cleared"
)

// AlertTransition is one lifecycle event streamed to the notification
// collaborator. The collaborator owns rate-limiting and delivery.
type AlertTransition struct {
	Kind  TransitionKind `json:"kind"`
	Alert Alert          `json:"alert"`
	At    time.Time      `json:"at"`
}
