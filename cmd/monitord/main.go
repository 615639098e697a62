package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/humaxai2025/gputop/internal/api"
	"github.com/humaxai2025/gputop/internal/archive"
	"github.com/humaxai2025/gputop/internal/config"
	"github.com/humaxai2025/gputop/internal/domain"
	"github.com/humaxai2025/gputop/internal/notify"
	"github.com/humaxai2025/gputop/internal/registry"
	"github.com/humaxai2025/gputop/internal/sampler"
)

// archivingIngestor forwards ticks to the registry and stores every
// published snapshot. Archive failures are logged, never propagated:
// monitoring must not stall on a slow archive backend.
type archivingIngestor struct {
	registry *registry.Registry
	archiver archive.SnapshotArchiver
	logger   *slog.Logger
}

func (a *archivingIngestor) Tick(device domain.DeviceID, sample domain.MetricSample) []domain.AlertTransition {
	transitions := a.registry.Tick(device, sample)

	snap, err := a.registry.Snapshot(device)
	if err == nil {
		if err := a.archiver.Store(context.Background(), snap); err != nil {
			a.logger.Warn("Failed to archive snapshot",
				"device", device,
				"error", err,
			)
		}
	}

	return transitions
}

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting GPU health monitor",
		slog.String("service", "monitord"),
		slog.String("version", "1.0.0"),
	)

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sample source
	var source sampler.SampleSource
	switch cfg.Sampler.Type {
	case "nvml":
		source, err = sampler.NewNVMLSource()
		if err != nil {
			slog.Error("Failed to initialize NVML", "error", err)
			os.Exit(1)
		}
	case "mock":
		source = sampler.NewMockSource(2)
		slog.Info("Using mock sample source")
	}
	defer source.Close()

	// Notification chain: throttle in front of the fanout so repeated
	// transitions for one condition stay quiet between reminders
	sinks := notify.Fanout{notify.NewSlogNotifier(logger)}
	if cfg.Notify.RedisURL != "" {
		redisNotifier, err := notify.NewRedisNotifier(ctx, notify.RedisConfig{
			URL:  cfg.Notify.RedisURL,
			List: cfg.Notify.RedisList,
		}, logger)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, redisNotifier)
		slog.Info("Publishing alert transitions to Redis",
			slog.String("list", cfg.Notify.RedisList),
		)
	}
	notifier := notify.NewThrottle(sinks, cfg.Notify.MinInterval)
	defer notifier.Close()

	// Thresholds: environment seeds the initial set, the API owns updates
	thresholds := config.NewThresholdStore(cfg.Initial)

	// Registry with alert transitions fanned out through the notifier
	reg := registry.New(thresholds, registry.Options{
		Capacity:   cfg.History.Capacity,
		StaleAfter: cfg.Sampler.StaleAfter,
		Logger:     logger,
		OnTransition: func(tr domain.AlertTransition) {
			if err := notifier.Notify(ctx, tr); err != nil {
				slog.Warn("Failed to deliver alert transition", "error", err)
			}
		},
	})

	// Snapshot archiver
	var archiver archive.SnapshotArchiver
	switch cfg.Archive.Type {
	case "mongo":
		archiver, err = archive.NewMongoArchiver(cfg.Archive.MongoURI, cfg.Archive.Database, cfg.Archive.Collection)
		if err != nil {
			slog.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		slog.Info("Archiving snapshots to MongoDB",
			slog.String("database", cfg.Archive.Database),
			slog.String("collection", cfg.Archive.Collection),
		)
	case "inmemory":
		archiver = archive.NewInMemoryArchiver(0)
	}

	// Poller drives one tick per device per interval
	var ingestor sampler.Ingestor = reg
	if archiver != nil {
		defer archiver.Close(context.Background())
		ingestor = &archivingIngestor{
			registry: reg,
			archiver: archiver,
			logger:   logger.With("component", "archive"),
		}
	}
	poller := sampler.NewPoller(source, ingestor, cfg.Sampler.PollInterval, logger)

	pollerDone := make(chan error, 1)
	go func() {
		pollerDone <- poller.Run(ctx)
	}()

	// HTTP API over the registry and threshold store
	router := api.NewRouter(reg, thresholds)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("Shutting down monitor...")
	case err := <-pollerDone:
		if err != nil && err != context.Canceled {
			slog.Error("Poller stopped", "error", err)
		}
	}

	// Stop ticking, then give outstanding requests time to complete
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stats := reg.Stats()
	slog.Info("Monitor stopped gracefully",
		slog.Int64("ticks_processed", stats.TicksProcessed),
		slog.Int("devices", stats.Devices),
	)
}
