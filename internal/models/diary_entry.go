package models

import "time"

const (
	MinDiarySeverity = 1
	MaxDiarySeverity = 5
)

type DiaryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"not null;index" json:"-"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	Symptoms  []string  `gorm:"serializer:json" json:"symptoms"`
	Severity  int       `gorm:"not null" json:"severity"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
