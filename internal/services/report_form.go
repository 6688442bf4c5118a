package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/healthpulse/internal/models"
)

var (
	ErrEmptySelection  = errors.New("select at least one symptom")
	ErrMissingWard     = errors.New("select your ward")
	ErrUnknownSymptom  = errors.New("unknown symptom")
	ErrInvalidLocation = errors.New("invalid location")
)

// ValidateReport normalizes the selected symptom tags into a sorted set and
// builds the report to submit. An empty selection is reported before a
// missing ward.
func ValidateReport(symptoms []string, ward string, now time.Time) (models.SymptomReport, error) {
	normalized := NormalizeSymptomTags(symptoms)
	if len(normalized) == 0 {
		return models.SymptomReport{}, ErrEmptySelection
	}

	ward = strings.TrimSpace(ward)
	if ward == "" {
		return models.SymptomReport{}, ErrMissingWard
	}

	return models.SymptomReport{
		ID:        uuid.NewString(),
		Symptoms:  normalized,
		Ward:      ward,
		CreatedAt: now,
	}, nil
}

func NormalizeSymptomTags(symptoms []string) []string {
	seen := make(map[string]struct{}, len(symptoms))
	normalized := make([]string, 0, len(symptoms))
	for _, symptom := range symptoms {
		tag := strings.TrimSpace(symptom)
		if tag == "" {
			continue
		}
		if _, exists := seen[tag]; exists {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	sort.Strings(normalized)
	return normalized
}

func validateReportLocation(latitude *float64, longitude *float64) error {
	if latitude == nil && longitude == nil {
		return nil
	}
	if latitude == nil || longitude == nil {
		return ErrInvalidLocation
	}
	if *latitude < -90 || *latitude > 90 || *longitude < -180 || *longitude > 180 {
		return ErrInvalidLocation
	}
	return nil
}

func IsReportValidationError(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrMissingWard) ||
		errors.Is(err, ErrUnknownSymptom) ||
		errors.Is(err, ErrInvalidLocation)
}
