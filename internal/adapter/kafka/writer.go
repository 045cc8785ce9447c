// Package kafka publishes evaluated alert events to a Kafka topic for
// downstream consumers (dashboards, archival, paging integrations).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/marinecast/wave-forecast/internal/alert"
)

// Publisher produces alert events to a Kafka topic.
// It implements forecast.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alert topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes one alert event and writes it to the topic. The event
// ID is the message key, so retries of the same evaluation land on the same
// partition and compact away.
func (p *Publisher) Publish(ctx context.Context, ev alert.Event) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an alert event into a Kafka message.
func serializeToMessage(ev alert.Event) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station_id", Value: []byte(ev.StationID)},
			{Key: "triggered", Value: []byte(strconv.FormatBool(ev.Triggered()))},
		},
	}, nil
}
