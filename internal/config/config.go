package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/humaxai2025/gputop/internal/domain"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig
	Sampler SamplerConfig
	History HistoryConfig
	Notify  NotifyConfig
	Archive ArchiveConfig
	Initial domain.Thresholds
}

// ServerConfig holds the API server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SamplerConfig holds sample source configuration
type SamplerConfig struct {
	// Type selects the sample source: "nvml" or "mock"
	Type string

	// PollInterval is the tick cadence per device
	PollInterval time.Duration

	// StaleAfter marks a device stale with no sample for this long
	StaleAfter time.Duration
}

// HistoryConfig holds the retention configuration
type HistoryConfig struct {
	// Capacity is the per-device ring size
	Capacity int
}

// NotifyConfig holds alert transition delivery configuration
type NotifyConfig struct {
	// MinInterval is the per-condition throttle between surfaced
	// notifications; the alert engine itself is never throttled
	MinInterval time.Duration

	// RedisURL enables the Redis transition publisher when non-empty
	RedisURL string

	// RedisList is the list transitions are pushed to
	RedisList string
}

// ArchiveConfig holds snapshot archive configuration
type ArchiveConfig struct {
	// Type selects the archiver: "none", "inmemory" or "mongo"
	Type string

	// MongoURI, Database and Collection apply to the mongo archiver
	MongoURI   string
	Database   string
	Collection string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", DefaultReadTimeout),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", DefaultWriteTimeout),
		},
		Sampler: SamplerConfig{
			Type:         getEnv("SAMPLER_TYPE", DefaultSamplerType),
			PollInterval: getEnvAsDuration("POLL_INTERVAL", DefaultPollInterval),
			StaleAfter:   getEnvAsDuration("STALE_AFTER", DefaultStaleAfter),
		},
		History: HistoryConfig{
			Capacity: getEnvAsInt("HISTORY_CAPACITY", DefaultHistoryCapacity),
		},
		Notify: NotifyConfig{
			MinInterval: getEnvAsDuration("NOTIFY_MIN_INTERVAL", DefaultNotifyMinInterval),
			RedisURL:    getEnv("NOTIFY_REDIS_URL", ""),
			RedisList:   getEnv("NOTIFY_REDIS_LIST", DefaultNotifyRedisList),
		},
		Archive: ArchiveConfig{
			Type:       getEnv("ARCHIVE_TYPE", DefaultArchiveType),
			MongoURI:   getEnv("ARCHIVE_MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("ARCHIVE_MONGO_DATABASE", DefaultMongoDatabase),
			Collection: getEnv("ARCHIVE_MONGO_COLLECTION", DefaultMongoCollection),
		},
		Initial: loadThresholds(),
	}

	return config, nil
}

// loadThresholds reads the initial thresholds from the environment,
// starting from the stock defaults. Runtime updates go through the
// ThresholdStore, not the environment.
func loadThresholds() domain.Thresholds {
	th := domain.DefaultThresholds()
	th.TempBaseline = getEnvAsFloat("TEMP_BASELINE", th.TempBaseline)
	th.TempWarn = getEnvAsFloat("TEMP_WARN", th.TempWarn)
	th.TempCrit = getEnvAsFloat("TEMP_CRIT", th.TempCrit)
	th.PowerBaseline = getEnvAsFloat("POWER_BASELINE", th.PowerBaseline)
	th.PowerWarn = getEnvAsFloat("POWER_WARN", th.PowerWarn)
	th.PowerCrit = getEnvAsFloat("POWER_CRIT", th.PowerCrit)
	th.MemBaseline = getEnvAsFloat("MEM_BASELINE", th.MemBaseline)
	th.MemWarn = getEnvAsFloat("MEM_WARN", th.MemWarn)
	th.MemCrit = getEnvAsFloat("MEM_CRIT", th.MemCrit)
	th.LeakRatio = getEnvAsFloat("LEAK_RATIO", th.LeakRatio)
	th.LeakPenalty = getEnvAsFloat("LEAK_PENALTY", th.LeakPenalty)
	th.FragmentationWeight = getEnvAsFloat("FRAGMENTATION_WEIGHT", th.FragmentationWeight)
	th.ClearDebounceTicks = getEnvAsInt("CLEAR_DEBOUNCE_TICKS", th.ClearDebounceTicks)
	return th
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Sampler.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval: %s", c.Sampler.PollInterval)
	}

	if c.History.Capacity <= 0 {
		return fmt.Errorf("invalid history capacity: %d", c.History.Capacity)
	}

	switch c.Sampler.Type {
	case "nvml", "mock":
	default:
		return fmt.Errorf("unknown sampler type: %q", c.Sampler.Type)
	}

	switch c.Archive.Type {
	case "none", "inmemory", "mongo":
	default:
		return fmt.Errorf("unknown archive type: %q", c.Archive.Type)
	}

	if err := c.Initial.Validate(); err != nil {
		return fmt.Errorf("invalid initial thresholds: %w", err)
	}

	return nil
}
