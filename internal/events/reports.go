package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/terraincognita07/healthpulse/internal/models"
)

const ReportCreatedEvent = "symptom_report.created"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type reportEvent struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Symptoms  []string  `json:"symptoms"`
	Ward      string    `json:"ward"`
	Latitude  *float64  `json:"lat,omitempty"`
	Longitude *float64  `json:"lng,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportPublisher writes every stored report to a Kafka topic, keyed by
// ward so reports of one ward stay ordered within a partition.
type ReportPublisher struct {
	writer messageWriter
	topic  string
}

func NewReportPublisher(brokers []string, topic string) (*ReportPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
	})
	return &ReportPublisher{writer: writer, topic: topic}, nil
}

func (publisher *ReportPublisher) Name() string {
	return "kafka:" + publisher.topic
}

func (publisher *ReportPublisher) PublishReport(ctx context.Context, report models.SymptomReport) error {
	payload, err := json.Marshal(reportEvent{
		Event:     ReportCreatedEvent,
		ID:        report.ID,
		Symptoms:  report.Symptoms,
		Ward:      report.Ward,
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
		CreatedAt: report.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode report event: %w", err)
	}

	if err := publisher.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.Ward),
		Value: payload,
		Time:  report.CreatedAt,
	}); err != nil {
		return fmt.Errorf("write report event: %w", err)
	}
	return nil
}

func (publisher *ReportPublisher) Close() error {
	return publisher.writer.Close()
}
