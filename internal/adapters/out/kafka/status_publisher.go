// Package kafka publishes committed appointment transitions to a Kafka topic
// consumed by the notification and QR services.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hako/internal/core/ports"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventType = "AppointmentStatusChanged"

// Config holds the producer settings.
type Config struct {
	Brokers []string
	Topic   string
	Retries int
}

// NewProducerConfig is the sarama configuration of the status publisher:
// acknowledged by all in-sync replicas and idempotent. Idempotence needs at
// least one retry.
func NewProducerConfig(cfg Config) *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = max(1, cfg.Retries)
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	return config
}

// NewSyncProducer connects to the brokers.
func NewSyncProducer(cfg Config) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

// StatusPublisher implements ports.AppointmentStatusSink. Messages are keyed
// by appointment id so that the transitions of one appointment stay ordered.
type StatusPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewStatusPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *StatusPublisher {
	return &StatusPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With(zap.String("component", "status_publisher")),
	}
}

func (p *StatusPublisher) Name() string {
	return "kafka_status"
}

func (p *StatusPublisher) Publish(ctx context.Context, change ports.AppointmentChange) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	payload, err := json.Marshal(NewStatusEvent(change))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(change.AppointmentID.String()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(eventType)},
			{Key: []byte("event-id"), Value: []byte(uuid.New().String())},
			{Key: []byte("timestamp"), Value: []byte(change.OccurredAt.UTC().Format(time.RFC3339))},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("appointment status published",
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("appointment_id", change.AppointmentID.String()),
		zap.String("status", change.Status.String()),
	)
	return nil
}

func (p *StatusPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ ports.AppointmentStatusSink = (*StatusPublisher)(nil)
