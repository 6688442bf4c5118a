package models

import (
	"fmt"
	"time"
)

const (
	RecurrenceDaily    = "daily"
	RecurrenceWeekly   = "weekly"
	RecurrenceAsNeeded = "as_needed"
)

type Reminder struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	DeviceID    string     `gorm:"not null;index" json:"-"`
	Name        string     `gorm:"not null" json:"name"`
	Hour        int        `gorm:"not null" json:"hour"`
	Minute      int        `gorm:"not null" json:"minute"`
	Recurrence  string     `gorm:"not null" json:"recurrence"`
	Enabled     bool       `gorm:"not null" json:"enabled"`
	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (reminder Reminder) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d", reminder.Hour, reminder.Minute)
}

func IsValidRecurrence(value string) bool {
	switch value {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceAsNeeded:
		return true
	default:
		return false
	}
}
