package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/humaxai2025/gputop/internal/domain"
)

// RedisNotifier pushes JSON-encoded transitions onto a Redis list. An
// external notification service pops from the list and owns user-facing
// delivery.
type RedisNotifier struct {
	client *redis.Client
	list   string
	logger *slog.Logger

	published atomic.Int64
	errors    atomic.Int64
}

// RedisConfig configures the Redis transition publisher.
type RedisConfig struct {
	URL      string
	List     string
	PoolSize int
}

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(ctx context.Context, config RedisConfig, logger *slog.Logger) (*RedisNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}

	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.PoolSize = config.PoolSize

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for alert delivery", "list", config.List)

	return &RedisNotifier{
		client: client,
		list:   config.List,
		logger: logger.With("component", "redis_notifier"),
	}, nil
}

// Notify pushes the transition onto the configured list.
func (n *RedisNotifier) Notify(ctx context.Context, tr domain.AlertTransition) error {
	payload, err := json.Marshal(tr)
	if err != nil {
		n.errors.Add(1)
		return fmt.Errorf("failed to marshal transition: %w", err)
	}

	if err := n.client.RPush(ctx, n.list, payload).Err(); err != nil {
		n.errors.Add(1)
		n.logger.Warn("Failed to publish alert transition",
			"device", tr.Alert.Device,
			"category", tr.Alert.Category,
			"error", err,
		)
		return fmt.Errorf("failed to publish transition: %w", err)
	}

	n.published.Add(1)
	return nil
}

// Close closes the Redis connection.
func (n *RedisNotifier) Close() error {
	n.logger.Info("Closing Redis notifier",
		"published", n.published.Load(),
		"errors", n.errors.Load(),
	)
	return n.client.Close()
}
