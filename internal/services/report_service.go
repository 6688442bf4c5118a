package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/models"
)

var ErrReportSubmitFailed = errors.New("failed to submit report")

type ReportStore interface {
	Create(ctx context.Context, report *models.SymptomReport) error
}

// ReportSink receives stored reports for mirroring. Sink failures never fail
// a submission.
type ReportSink interface {
	Name() string
	PublishReport(ctx context.Context, report models.SymptomReport) error
}

type ReportInput struct {
	Symptoms  []string
	Ward      string
	Latitude  *float64
	Longitude *float64
}

type SubmitOutcome struct {
	Report models.SymptomReport
	Err    error
}

type ReportService struct {
	store  ReportStore
	sinks  []ReportSink
	delay  time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

type noopReportStore struct{}

func (noopReportStore) Create(context.Context, *models.SymptomReport) error {
	return nil
}

func NewReportService(store ReportStore, delay time.Duration, logger zerolog.Logger, sinks ...ReportSink) *ReportService {
	if store == nil {
		store = noopReportStore{}
	}
	if delay < 0 {
		delay = 0
	}

	active := make([]ReportSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			active = append(active, sink)
		}
	}

	return &ReportService{
		store:  store,
		sinks:  active,
		delay:  delay,
		logger: logger.With().Str("component", "reports").Logger(),
		now:    time.Now,
	}
}

func (service *ReportService) Validate(input ReportInput) (models.SymptomReport, error) {
	report, err := ValidateReport(input.Symptoms, input.Ward, service.now())
	if err != nil {
		return models.SymptomReport{}, err
	}
	for _, symptom := range report.Symptoms {
		if !models.IsBuiltinSymptom(symptom) {
			return models.SymptomReport{}, fmt.Errorf("%w: %s", ErrUnknownSymptom, symptom)
		}
	}
	if err := validateReportLocation(input.Latitude, input.Longitude); err != nil {
		return models.SymptomReport{}, err
	}

	report.Latitude = input.Latitude
	report.Longitude = input.Longitude
	return report, nil
}

// Submit validates, waits out the submission delay, stores the report and
// fans it out to the configured sinks.
func (service *ReportService) Submit(ctx context.Context, input ReportInput) (models.SymptomReport, error) {
	report, err := service.Validate(input)
	if err != nil {
		return models.SymptomReport{}, err
	}

	if err := waitFor(ctx, service.delay); err != nil {
		return models.SymptomReport{}, err
	}

	if err := service.store.Create(ctx, &report); err != nil {
		service.logger.Error().Err(err).Str("ward", report.Ward).Msg("store report failed")
		return models.SymptomReport{}, fmt.Errorf("%w: %v", ErrReportSubmitFailed, err)
	}

	for _, sink := range service.sinks {
		if err := sink.PublishReport(ctx, report); err != nil {
			service.logger.Warn().Err(err).Str("sink", sink.Name()).Str("report_id", report.ID).Msg("mirror report failed")
		}
	}

	service.logger.Info().Str("report_id", report.ID).Str("ward", report.Ward).Strs("symptoms", report.Symptoms).Msg("report submitted")
	return report, nil
}

// SubmitAsync runs Submit in the background. The returned channel yields
// exactly one outcome.
func (service *ReportService) SubmitAsync(ctx context.Context, input ReportInput) <-chan SubmitOutcome {
	outcome := make(chan SubmitOutcome, 1)
	go func() {
		defer close(outcome)
		report, err := service.Submit(ctx, input)
		outcome <- SubmitOutcome{Report: report, Err: err}
	}()
	return outcome
}

func waitFor(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
