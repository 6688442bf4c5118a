package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/healthpulse/internal/models"
)

const (
	defaultAverageRecoveryDays = 4.5
	maxRecoveryGapDays         = 14
)

type DiaryStats struct {
	DaysSickThisMonth   int     `json:"days_sick_this_month"`
	AverageRecoveryDays float64 `json:"average_recovery_days"`
}

func DefaultDiaryStats() DiaryStats {
	return DiaryStats{AverageRecoveryDays: defaultAverageRecoveryDays}
}

// ComputeDiaryStats derives the personal stats cards from entries. The
// average carries over from previous when no usable gap between entries
// exists.
func ComputeDiaryStats(entries []models.DiaryEntry, now time.Time, previous DiaryStats) DiaryStats {
	stats := DiaryStats{
		DaysSickThisMonth:   countEntriesInMonth(entries, now),
		AverageRecoveryDays: previous.AverageRecoveryDays,
	}

	if len(entries) < 2 {
		return stats
	}

	dates := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		dates = append(dates, entry.Date)
	}
	sort.SliceStable(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})

	total := 0
	kept := 0
	for index := 0; index < len(dates)-1; index++ {
		gap := ceilDays(dates[index].Sub(dates[index+1]))
		if gap > 0 && gap <= maxRecoveryGapDays {
			total += gap
			kept++
		}
	}
	if kept == 0 {
		return stats
	}

	stats.AverageRecoveryDays = roundToTenth(float64(total) / float64(kept))
	return stats
}

func countEntriesInMonth(entries []models.DiaryEntry, now time.Time) int {
	year, month, _ := now.Date()
	count := 0
	for _, entry := range entries {
		entryYear, entryMonth, _ := entry.Date.In(now.Location()).Date()
		if entryYear == year && entryMonth == month {
			count++
		}
	}
	return count
}

func ceilDays(duration time.Duration) int {
	return int(math.Ceil(float64(duration) / float64(24*time.Hour)))
}

func roundToTenth(value float64) float64 {
	return math.Floor(value*10+0.5) / 10
}
