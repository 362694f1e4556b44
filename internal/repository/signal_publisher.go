package repository

import (
	"context"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/domain/repository"
	"SignalForge/pkg/kafka"
)

// KafkaSignalPublisher streams committed consensus signals to a Kafka topic
// keyed by symbol, so downstream alert services see per-symbol ordering.
type KafkaSignalPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(brokers []string, topic string) (*KafkaSignalPublisher, error) {
	producer, err := kafka.NewProducer(
		kafka.WithBrokers(brokers),
		kafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaSignalPublisher{producer: producer, topic: topic}, nil
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, sig models.ConsensusSignal) error {
	return p.producer.Publish(ctx, p.topic, []byte(sig.Symbol), sig)
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}

// NopSignalPublisher is used when the Kafka firehose is disabled.
type NopSignalPublisher struct{}

func (NopSignalPublisher) Publish(context.Context, models.ConsensusSignal) error { return nil }
func (NopSignalPublisher) Close() error                                          { return nil }

var (
	_ repository.SignalPublisher = (*KafkaSignalPublisher)(nil)
	_ repository.SignalPublisher = NopSignalPublisher{}
)
