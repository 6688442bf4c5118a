package services

import (
	"context"
	"sort"
	"time"

	"github.com/terraincognita07/healthpulse/internal/models"
)

type ReportReader interface {
	ListAll(ctx context.Context) ([]models.SymptomReport, error)
	ListSince(ctx context.Context, since time.Time) ([]models.SymptomReport, error)
}

type LabeledCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ReportSummary struct {
	TotalReports int            `json:"total_reports"`
	ByWard       []LabeledCount `json:"by_ward"`
	BySymptom    []LabeledCount `json:"by_symptom"`
}

func SummarizeReports(reports []models.SymptomReport) ReportSummary {
	byWard := make(map[string]int)
	bySymptom := make(map[string]int)
	for _, report := range reports {
		byWard[report.Ward]++
		for _, symptom := range report.Symptoms {
			bySymptom[symptom]++
		}
	}

	return ReportSummary{
		TotalReports: len(reports),
		ByWard:       sortedCounts(byWard),
		BySymptom:    sortedCounts(bySymptom),
	}
}

// sortedCounts orders by count descending, then name.
func sortedCounts(counts map[string]int) []LabeledCount {
	result := make([]LabeledCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, LabeledCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count == result[j].Count {
			return result[i].Name < result[j].Name
		}
		return result[i].Count > result[j].Count
	})
	return result
}
