package services

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/healthpulse/internal/models"
)

const trendDays = 7

type TrendPoint struct {
	Day   string `json:"day"`
	Fever int    `json:"fever"`
	Cough int    `json:"cough"`
}

func MockWeeklyTrend() []TrendPoint {
	return []TrendPoint{
		{Day: "Mon", Fever: 12, Cough: 8},
		{Day: "Tue", Fever: 18, Cough: 12},
		{Day: "Wed", Fever: 25, Cough: 15},
		{Day: "Thu", Fever: 22, Cough: 18},
		{Day: "Fri", Fever: 20, Cough: 14},
		{Day: "Sat", Fever: 15, Cough: 10},
		{Day: "Sun", Fever: 18, Cough: 11},
	}
}

// BuildWeeklyTrend buckets reports into the seven calendar days ending today,
// oldest first.
func BuildWeeklyTrend(reports []models.SymptomReport, now time.Time, location *time.Location) []TrendPoint {
	today := DateAtLocation(now, location)
	start := today.AddDate(0, 0, -(trendDays - 1))

	points := make([]TrendPoint, trendDays)
	for index := range points {
		points[index].Day = start.AddDate(0, 0, index).Format("Mon")
	}

	for _, report := range reports {
		day := DateAtLocation(report.CreatedAt, location)
		if day.Before(start) || day.After(today) {
			continue
		}
		index := dayIndex(start, day)
		if index < 0 || index >= trendDays {
			continue
		}
		if report.HasSymptom(models.SymptomFever) {
			points[index].Fever++
		}
		if report.HasSymptom(models.SymptomCough) {
			points[index].Cough++
		}
	}
	return points
}

func dayIndex(start time.Time, day time.Time) int {
	index := 0
	for cursor := start; cursor.Before(day); cursor = cursor.AddDate(0, 0, 1) {
		index++
	}
	return index
}

type TrendService struct {
	reports  ReportReader
	location *time.Location
}

func NewTrendService(reports ReportReader, location *time.Location) *TrendService {
	if location == nil {
		location = time.UTC
	}
	return &TrendService{reports: reports, location: location}
}

// WeeklyTrend returns the chart series for the last seven days, or the
// sample week while no reports have been stored in that window.
func (service *TrendService) WeeklyTrend(ctx context.Context, now time.Time) ([]TrendPoint, bool, error) {
	start := DateAtLocation(now, service.location).AddDate(0, 0, -(trendDays - 1))
	reports, err := service.reports.ListSince(ctx, start)
	if err != nil {
		return nil, false, fmt.Errorf("load trend reports: %w", err)
	}
	if len(reports) == 0 {
		return MockWeeklyTrend(), true, nil
	}
	return BuildWeeklyTrend(reports, now, service.location), false, nil
}

func (service *TrendService) Summary(ctx context.Context) (ReportSummary, error) {
	reports, err := service.reports.ListAll(ctx)
	if err != nil {
		return ReportSummary{}, fmt.Errorf("load reports: %w", err)
	}
	return SummarizeReports(reports), nil
}
