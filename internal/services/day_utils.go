package services

import (
	"fmt"
	"time"

	"github.com/terraincognita07/healthpulse/internal/models"
)

const (
	SeverityBandMild     = "mild"
	SeverityBandModerate = "moderate"
	SeverityBandSevere   = "severe"
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DaysAgo counts whole elapsed 24h periods between date and now.
func DaysAgo(date time.Time, now time.Time) int {
	elapsed := now.Sub(date)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

func DaysAgoLabel(date time.Time, now time.Time) string {
	switch days := DaysAgo(date, now); days {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func DiarySeverityBand(severity int) string {
	switch {
	case severity <= 2:
		return SeverityBandMild
	case severity == 3:
		return SeverityBandModerate
	default:
		return SeverityBandSevere
	}
}

func IsValidDiarySeverity(severity int) bool {
	return severity >= models.MinDiarySeverity && severity <= models.MaxDiarySeverity
}
