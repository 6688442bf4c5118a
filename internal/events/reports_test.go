package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/terraincognita07/healthpulse/internal/models"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (writer *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	writer.messages = append(writer.messages, msgs...)
	return writer.err
}

func (writer *recordingWriter) Close() error {
	writer.closed = true
	return nil
}

func TestReportPublisherKeysByWard(t *testing.T) {
	writer := &recordingWriter{}
	publisher := &ReportPublisher{writer: writer, topic: "symptom-reports"}
	createdAt := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

	err := publisher.PublishReport(context.Background(), models.SymptomReport{
		ID:        "c7b1",
		Symptoms:  []string{"cough", "fever"},
		Ward:      "Ward 7",
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("PublishReport() unexpected error: %v", err)
	}
	if len(writer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.messages))
	}

	message := writer.messages[0]
	if string(message.Key) != "Ward 7" {
		t.Fatalf("expected ward key, got %q", message.Key)
	}

	var event reportEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Event != ReportCreatedEvent || event.ID != "c7b1" || len(event.Symptoms) != 2 || !event.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected event %+v", event)
	}
	if publisher.Name() != "kafka:symptom-reports" {
		t.Fatalf("unexpected sink name %q", publisher.Name())
	}

	if err := publisher.Close(); err != nil || !writer.closed {
		t.Fatalf("expected writer to be closed, err=%v", err)
	}
}

func TestReportPublisherWrapsWriteErrors(t *testing.T) {
	cause := errors.New("leader not available")
	publisher := &ReportPublisher{writer: &recordingWriter{err: cause}, topic: "symptom-reports"}

	err := publisher.PublishReport(context.Background(), models.SymptomReport{ID: "1", Ward: "Ward 1"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestNewReportPublisherRequiresBrokersAndTopic(t *testing.T) {
	if _, err := NewReportPublisher(nil, "symptom-reports"); err == nil {
		t.Fatal("expected missing brokers to be rejected")
	}
	if _, err := NewReportPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Fatal("expected missing topic to be rejected")
	}

	publisher, err := NewReportPublisher([]string{"localhost:9092"}, "symptom-reports")
	if err != nil {
		t.Fatalf("NewReportPublisher() unexpected error: %v", err)
	}
	_ = publisher.Close()
}
