package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Empty(t, cfg.Model.Checkpoint)
	assert.Equal(t, int64(42), cfg.Model.Seed)
	assert.Equal(t, 9, cfg.Model.PatchSize)
	assert.Equal(t, 12, cfg.Model.TimeSteps)
	assert.Equal(t, 6, cfg.Model.Horizon)
	assert.Equal(t, 3, cfg.Model.WW3Channels)
	assert.Equal(t, 3, cfg.Model.GFSChannels)

	assert.Equal(t, 4.0, cfg.Alert.ThresholdM)
	assert.False(t, cfg.Alert.WebhookEnabled())
	assert.Equal(t, 10*time.Second, cfg.Alert.WebhookTimeout)

	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "swh-alerts", cfg.Kafka.Topic)
	assert.False(t, cfg.Kafka.PublishEnabled())

	assert.Equal(t, 32, cfg.Dataset.BatchSize)
	assert.Equal(t, 4, cfg.Dataset.PrefetchWorkers)
	assert.Equal(t, 2, cfg.Dataset.PrefetchDepth)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MODEL_CHECKPOINT", "/data/swh.wck")
	t.Setenv("MODEL_SEED", "7")
	t.Setenv("MODEL_PATCH_SIZE", "13")
	t.Setenv("MODEL_TIME_STEPS", "24")
	t.Setenv("MODEL_HORIZON", "12")
	t.Setenv("ALERT_THRESHOLD_M", "3.5")
	t.Setenv("ALERT_WEBHOOK_URL", "https://hooks.example.com/swh")
	t.Setenv("ALERT_WEBHOOK_TIMEOUT", "5s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_ALERT_TOPIC", "custom-alerts")
	t.Setenv("DATASET_BATCH_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/swh.wck", cfg.Model.Checkpoint)
	assert.Equal(t, int64(7), cfg.Model.Seed)
	assert.Equal(t, 13, cfg.Model.PatchSize)
	assert.Equal(t, 24, cfg.Model.TimeSteps)
	assert.Equal(t, 12, cfg.Model.Horizon)
	assert.Equal(t, 3.5, cfg.Alert.ThresholdM)
	assert.Equal(t, "https://hooks.example.com/swh", cfg.Alert.WebhookURL)
	assert.True(t, cfg.Alert.WebhookEnabled())
	assert.Equal(t, 5*time.Second, cfg.Alert.WebhookTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "custom-alerts", cfg.Kafka.Topic)
	assert.True(t, cfg.Kafka.PublishEnabled())
	assert.Equal(t, 64, cfg.Dataset.BatchSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ShutdownTimeout")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}

func TestLoad_InvalidWebhookURL(t *testing.T) {
	t.Setenv("ALERT_WEBHOOK_URL", "not a url")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WebhookURL")
}

func TestLoad_ZeroPatchSize(t *testing.T) {
	t.Setenv("MODEL_PATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PatchSize")
}

func TestLoad_ZeroThreshold(t *testing.T) {
	t.Setenv("ALERT_THRESHOLD_M", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ThresholdM")
}
