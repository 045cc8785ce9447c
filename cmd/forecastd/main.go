// Command forecastd serves significant-wave-height forecasts over HTTP.
// It loads a model checkpoint (or initializes a fresh model), exposes the
// prediction API, and dispatches threshold alerts to the configured
// webhook and Kafka topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/marinecast/wave-forecast/internal/adapter/httpapi"
	kafkaadapter "github.com/marinecast/wave-forecast/internal/adapter/kafka"
	"github.com/marinecast/wave-forecast/internal/alert"
	"github.com/marinecast/wave-forecast/internal/config"
	"github.com/marinecast/wave-forecast/internal/forecast"
	"github.com/marinecast/wave-forecast/internal/model"
	"github.com/marinecast/wave-forecast/internal/observability"
)

func main() {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	forecaster, err := buildModel(cfg.Model, logger)
	if err != nil {
		logger.Error("failed to build model", "error", err)
		os.Exit(1)
	}
	handle := forecast.NewHandle(forecaster)
	metrics.ModelLoaded.Set(1)

	locator := forecast.NewStaticLocator(forecast.DefaultStations())
	provider := forecast.NewSyntheticProvider(forecaster.Config())

	var notifier forecast.Notifier
	if cfg.Alert.WebhookEnabled() {
		notifier = alert.NewNotifier(cfg.Alert.WebhookURL, cfg.Alert.WebhookTimeout, logger)
		logger.Info("webhook delivery enabled", "url", cfg.Alert.WebhookURL)
	} else {
		logger.Info("webhook delivery disabled")
	}

	var publisher forecast.AlertPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.Kafka.PublishEnabled() {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "topic", cfg.Kafka.Topic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	svc := forecast.NewService(handle, locator, provider, notifier, publisher, logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, svc, locator, cfg.Alert.ThresholdM, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildModel loads the configured checkpoint, or constructs a freshly
// initialized model when none is configured.
func buildModel(cfg config.ModelConfig, logger *slog.Logger) (*model.Forecaster, error) {
	if cfg.Checkpoint != "" {
		logger.Info("loading model checkpoint", "path", cfg.Checkpoint)
		return model.LoadCheckpoint(cfg.Checkpoint)
	}

	mc := model.DefaultConfig()
	mc.PatchSize = cfg.PatchSize
	mc.TimeSteps = cfg.TimeSteps
	mc.Horizon = cfg.Horizon
	mc.WW3Channels = cfg.WW3Channels
	mc.GFSChannels = cfg.GFSChannels

	logger.Warn("no checkpoint configured, serving a freshly initialized model",
		"patch_size", mc.PatchSize, "time_steps", mc.TimeSteps, "horizon", mc.Horizon)
	return model.New(mc, cfg.Seed)
}
