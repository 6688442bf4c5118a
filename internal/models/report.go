package models

import (
	"fmt"
	"time"
)

// SymptomReport is an anonymous submission. It carries no device identity
// and is never updated once stored.
type SymptomReport struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Symptoms  []string  `gorm:"serializer:json;not null" json:"symptoms"`
	Ward      string    `gorm:"not null;index" json:"ward"`
	Latitude  *float64  `json:"lat,omitempty"`
	Longitude *float64  `json:"lng,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (SymptomReport) TableName() string {
	return "symptom_reports"
}

func (report SymptomReport) HasSymptom(id string) bool {
	for _, symptom := range report.Symptoms {
		if symptom == id {
			return true
		}
	}
	return false
}

const reportWardCount = 15

func DefaultReportWards() []string {
	wards := make([]string, 0, reportWardCount)
	for index := 1; index <= reportWardCount; index++ {
		wards = append(wards, fmt.Sprintf("Ward %d", index))
	}
	return wards
}
