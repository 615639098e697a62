package config

import "time"

// Default configuration values
const (
	// API server defaults
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Sampler defaults: 1 Hz cadence, stale after 5 missed intervals
	DefaultSamplerType  = "nvml"
	DefaultPollInterval = 1 * time.Second
	DefaultStaleAfter   = 5 * time.Second

	// History retention: 5 minutes at 1 Hz
	DefaultHistoryCapacity = 300

	// Notification defaults
	DefaultNotifyMinInterval = 10 * time.Second
	DefaultNotifyRedisList   = "gputop.alerts"

	// Archive defaults
	DefaultArchiveType     = "inmemory"
	DefaultMongoDatabase   = "gputop"
	DefaultMongoCollection = "snapshots"
)
