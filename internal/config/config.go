// Package config defines the service configuration, populated from
// environment variables. Values are loaded once at process start and are
// immutable afterwards; subsystems receive only the subsets they need.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config is the top-level configuration for the forecast service.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	Model   ModelConfig
	Alert   AlertConfig
	Kafka   KafkaConfig
	Dataset DatasetConfig
}

// ModelConfig controls model construction and checkpoint loading. When
// Checkpoint is empty a freshly initialized model serves predictions,
// which is only useful for demos and tests.
type ModelConfig struct {
	Checkpoint  string `envconfig:"MODEL_CHECKPOINT"`
	Seed        int64  `envconfig:"MODEL_SEED" default:"42"`
	PatchSize   int    `envconfig:"MODEL_PATCH_SIZE" default:"9" validate:"gt=0"`
	TimeSteps   int    `envconfig:"MODEL_TIME_STEPS" default:"12" validate:"gt=0"`
	Horizon     int    `envconfig:"MODEL_HORIZON" default:"6" validate:"gt=0"`
	WW3Channels int    `envconfig:"MODEL_WW3_CHANNELS" default:"3" validate:"gt=0"`
	GFSChannels int    `envconfig:"MODEL_GFS_CHANNELS" default:"3" validate:"gt=0"`
}

// AlertConfig controls threshold evaluation and webhook delivery.
type AlertConfig struct {
	ThresholdM     float64       `envconfig:"ALERT_THRESHOLD_M" default:"4.0" validate:"gt=0"`
	WebhookURL     string        `envconfig:"ALERT_WEBHOOK_URL" validate:"omitempty,url"`
	WebhookTimeout time.Duration `envconfig:"ALERT_WEBHOOK_TIMEOUT" default:"10s" validate:"gt=0"`
}

// KafkaConfig controls the optional alert topic. Publishing is disabled
// unless brokers are configured.
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_ALERT_TOPIC" default:"swh-alerts"`
}

// DatasetConfig tunes training-sample archive reads for batch jobs.
type DatasetConfig struct {
	BatchSize       int `envconfig:"DATASET_BATCH_SIZE" default:"32" validate:"gt=0"`
	PrefetchWorkers int `envconfig:"DATASET_PREFETCH_WORKERS" default:"4" validate:"gt=0"`
	PrefetchDepth   int `envconfig:"DATASET_PREFETCH_DEPTH" default:"2" validate:"gt=0"`
}

// PublishEnabled reports whether alert events should be written to Kafka.
func (k KafkaConfig) PublishEnabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// WebhookEnabled reports whether alert events should be POSTed to a webhook.
func (a AlertConfig) WebhookEnabled() bool {
	return a.WebhookURL != ""
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fields := make([]string, len(errs))
			for i, fe := range errs {
				fields[i] = fe.Namespace()
			}
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return &cfg, nil
}
