package repository

import (
	"context"
	"strconv"

	"CryptoPulse/internal/domain/models"
	domrepo "CryptoPulse/internal/domain/repository"
)

// Producer is the subset of pkg/kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaReportPublisher streams every tick report as JSON, keyed by tick number.
type KafkaReportPublisher struct {
	producer Producer
	topic    string
}

var _ domrepo.ReportSink = (*KafkaReportPublisher)(nil)

func NewKafkaReportPublisher(producer Producer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) Name() string { return "kafka" }

func (p *KafkaReportPublisher) Consume(ctx context.Context, report *models.TickReport) error {
	key := []byte(strconv.FormatUint(report.Tick, 10))
	return p.producer.Publish(ctx, p.topic, key, report)
}
