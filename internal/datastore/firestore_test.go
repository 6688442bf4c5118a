package datastore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/models"
)

type storedDocument struct {
	collection string
	id         string
	data       interface{}
}

type recordingDocumentWriter struct {
	documents []storedDocument
	err       error
}

func (writer *recordingDocumentWriter) Set(_ context.Context, collection string, id string, data interface{}) error {
	writer.documents = append(writer.documents, storedDocument{collection: collection, id: id, data: data})
	return writer.err
}

func (writer *recordingDocumentWriter) Close() error {
	return nil
}

func TestReportMirrorWritesDocument(t *testing.T) {
	writer := &recordingDocumentWriter{}
	mirror := &ReportMirror{writer: writer, collection: reportsCollection}
	lat, lng := 12.97, 77.59

	err := mirror.PublishReport(context.Background(), models.SymptomReport{
		ID:        "r-1",
		Symptoms:  []string{"fever"},
		Ward:      "Ward 4",
		Latitude:  &lat,
		Longitude: &lng,
		CreatedAt: time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("PublishReport() unexpected error: %v", err)
	}
	if len(writer.documents) != 1 || writer.documents[0].collection != "healthReports" || writer.documents[0].id != "r-1" {
		t.Fatalf("unexpected documents %+v", writer.documents)
	}

	document, ok := writer.documents[0].data.(reportDocument)
	if !ok {
		t.Fatalf("unexpected document type %T", writer.documents[0].data)
	}
	if document.Location == nil || document.Location.Lat != lat || document.Ward != "Ward 4" {
		t.Fatalf("unexpected document %+v", document)
	}
}

func TestReportMirrorErrors(t *testing.T) {
	cause := errors.New("permission denied")
	mirror := &ReportMirror{writer: &recordingDocumentWriter{err: cause}, collection: reportsCollection}

	if err := mirror.PublishReport(context.Background(), models.SymptomReport{}); err == nil {
		t.Fatal("expected missing id to be rejected")
	}
	if err := mirror.PublishReport(context.Background(), models.SymptomReport{ID: "r-2"}); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestDocumentFromReportOmitsPartialLocation(t *testing.T) {
	lat := 12.97
	document := documentFromReport(models.SymptomReport{ID: "r-3", Latitude: &lat})
	if document.Location != nil {
		t.Fatalf("expected no location, got %+v", document.Location)
	}
}

func TestOpenReportMirrorWithoutProjectIsNoop(t *testing.T) {
	sink := OpenReportMirror(context.Background(), "", zerolog.Nop())
	if _, ok := sink.(Noop); !ok {
		t.Fatalf("expected noop sink, got %T", sink)
	}
	if err := sink.PublishReport(context.Background(), models.SymptomReport{}); err != nil {
		t.Fatalf("noop sink returned error: %v", err)
	}
}
