package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/healthpulse/internal/models"
)

var (
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrDiaryDateInFuture = errors.New("diary date cannot be in the future")
	ErrDiaryNotesTooLong = errors.New("diary notes too long")
	ErrCreateDiaryFailed = errors.New("create diary entry failed")
	ErrLoadDiaryFailed   = errors.New("load diary failed")
)

const maxDiaryNotesLength = 1000

type DiaryRepository interface {
	ListByDevice(deviceID string) ([]models.DiaryEntry, error)
	Create(entry *models.DiaryEntry) error
}

type DiaryEntryInput struct {
	Date     *time.Time
	Symptoms []string
	Severity int
	Notes    string
}

type DiaryEntryView struct {
	models.DiaryEntry
	SeverityBand string `json:"severity_band"`
	DaysAgo      string `json:"days_ago"`
}

type DiaryOverview struct {
	Entries []DiaryEntryView `json:"entries"`
	Stats   DiaryStats       `json:"stats"`
}

type DiaryService struct {
	entries DiaryRepository
}

func NewDiaryService(entries DiaryRepository) *DiaryService {
	return &DiaryService{entries: entries}
}

func (service *DiaryService) Create(deviceID string, input DiaryEntryInput, now time.Time) (models.DiaryEntry, error) {
	if !IsValidDiarySeverity(input.Severity) {
		return models.DiaryEntry{}, ErrInvalidSeverity
	}

	date := now
	if input.Date != nil {
		date = *input.Date
	}
	if date.After(now) {
		return models.DiaryEntry{}, ErrDiaryDateInFuture
	}

	notes := strings.TrimSpace(input.Notes)
	if len([]rune(notes)) > maxDiaryNotesLength {
		return models.DiaryEntry{}, ErrDiaryNotesTooLong
	}

	symptoms := NormalizeSymptomTags(input.Symptoms)
	for _, symptom := range symptoms {
		if !models.IsBuiltinSymptom(symptom) {
			return models.DiaryEntry{}, fmt.Errorf("%w: %s", ErrUnknownSymptom, symptom)
		}
	}

	entry := models.DiaryEntry{
		DeviceID: deviceID,
		Date:     date,
		Symptoms: symptoms,
		Severity: input.Severity,
		Notes:    notes,
	}
	if err := service.entries.Create(&entry); err != nil {
		return models.DiaryEntry{}, fmt.Errorf("%w: %v", ErrCreateDiaryFailed, err)
	}
	return entry, nil
}

func (service *DiaryService) Overview(deviceID string, now time.Time) (DiaryOverview, error) {
	entries, err := service.entries.ListByDevice(deviceID)
	if err != nil {
		return DiaryOverview{}, fmt.Errorf("%w: %v", ErrLoadDiaryFailed, err)
	}

	views := make([]DiaryEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, DiaryEntryView{
			DiaryEntry:   entry,
			SeverityBand: DiarySeverityBand(entry.Severity),
			DaysAgo:      DaysAgoLabel(entry.Date, now),
		})
	}

	return DiaryOverview{
		Entries: views,
		Stats:   ComputeDiaryStats(entries, now, DefaultDiaryStats()),
	}, nil
}

func (service *DiaryService) Stats(deviceID string, now time.Time) (DiaryStats, error) {
	entries, err := service.entries.ListByDevice(deviceID)
	if err != nil {
		return DiaryStats{}, fmt.Errorf("%w: %v", ErrLoadDiaryFailed, err)
	}
	return ComputeDiaryStats(entries, now, DefaultDiaryStats()), nil
}

func IsDiaryValidationError(err error) bool {
	return errors.Is(err, ErrInvalidSeverity) ||
		errors.Is(err, ErrDiaryDateInFuture) ||
		errors.Is(err, ErrDiaryNotesTooLong) ||
		errors.Is(err, ErrUnknownSymptom)
}
