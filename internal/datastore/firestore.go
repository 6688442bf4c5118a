package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/models"
	"github.com/terraincognita07/healthpulse/internal/services"
)

const reportsCollection = "healthReports"

type documentWriter interface {
	Set(ctx context.Context, collection string, id string, data interface{}) error
	Close() error
}

type firestoreWriter struct {
	client *firestore.Client
}

func (writer firestoreWriter) Set(ctx context.Context, collection string, id string, data interface{}) error {
	_, err := writer.client.Collection(collection).Doc(id).Set(ctx, data)
	return err
}

func (writer firestoreWriter) Close() error {
	return writer.client.Close()
}

type geoPoint struct {
	Lat float64 `firestore:"lat"`
	Lng float64 `firestore:"lng"`
}

type reportDocument struct {
	ID        string    `firestore:"-"`
	Symptoms  []string  `firestore:"symptoms"`
	Ward      string    `firestore:"ward"`
	Location  *geoPoint `firestore:"location,omitempty"`
	Timestamp time.Time `firestore:"timestamp"`
}

// ReportMirror copies stored reports into a Firestore collection.
type ReportMirror struct {
	writer     documentWriter
	collection string
}

// Noop accepts every report without writing it anywhere.
type Noop struct{}

func (Noop) Name() string {
	return "noop"
}

func (Noop) PublishReport(context.Context, models.SymptomReport) error {
	return nil
}

func (Noop) Close() error {
	return nil
}

type Sink interface {
	services.ReportSink
	Close() error
}

// OpenReportMirror connects to Firestore. Without a project id, or when the
// client cannot be created, it returns the no-op sink so report submission
// keeps working with the mirror disabled.
func OpenReportMirror(ctx context.Context, projectID string, logger zerolog.Logger) Sink {
	if projectID == "" {
		return Noop{}
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		logger.Warn().Err(err).Str("project", projectID).Msg("firestore unavailable, report mirror disabled")
		return Noop{}
	}
	logger.Info().Str("project", projectID).Msg("firestore report mirror enabled")
	return &ReportMirror{writer: firestoreWriter{client: client}, collection: reportsCollection}
}

func (mirror *ReportMirror) Name() string {
	return "firestore:" + mirror.collection
}

func (mirror *ReportMirror) PublishReport(ctx context.Context, report models.SymptomReport) error {
	if report.ID == "" {
		return errors.New("report id is required")
	}
	if err := mirror.writer.Set(ctx, mirror.collection, report.ID, documentFromReport(report)); err != nil {
		return fmt.Errorf("mirror report %s: %w", report.ID, err)
	}
	return nil
}

func (mirror *ReportMirror) Close() error {
	return mirror.writer.Close()
}

func documentFromReport(report models.SymptomReport) reportDocument {
	document := reportDocument{
		ID:        report.ID,
		Symptoms:  report.Symptoms,
		Ward:      report.Ward,
		Timestamp: report.CreatedAt.UTC(),
	}
	if report.Latitude != nil && report.Longitude != nil {
		document.Location = &geoPoint{Lat: *report.Latitude, Lng: *report.Longitude}
	}
	return document
}
