package models

import "time"

type Ward struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null;uniqueIndex" json:"ward"`
	Latitude   float64   `gorm:"not null" json:"lat"`
	Longitude  float64   `gorm:"not null" json:"lng"`
	FeverCount int       `gorm:"not null;default:0" json:"fever_count"`
	CoughCount int       `gorm:"not null;default:0" json:"cough_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultMapWards are the Bengaluru wards shown on the map before any
// counts have been recorded.
func DefaultMapWards() []Ward {
	return []Ward{
		{Name: "Jayanagar", Latitude: 12.9250, Longitude: 77.5937, FeverCount: 14, CoughCount: 9},
		{Name: "Koramangala", Latitude: 12.9352, Longitude: 77.6245, FeverCount: 8, CoughCount: 6},
		{Name: "Indiranagar", Latitude: 12.9716, Longitude: 77.6412, FeverCount: 22, CoughCount: 15},
		{Name: "Whitefield", Latitude: 12.9698, Longitude: 77.7499, FeverCount: 11, CoughCount: 8},
		{Name: "Malleshwaram", Latitude: 13.0067, Longitude: 77.5703, FeverCount: 6, CoughCount: 4},
		{Name: "BTM Layout", Latitude: 12.9165, Longitude: 77.6101, FeverCount: 18, CoughCount: 12},
		{Name: "Electronic City", Latitude: 12.8456, Longitude: 77.6603, FeverCount: 10, CoughCount: 7},
		{Name: "Yelahanka", Latitude: 13.1007, Longitude: 77.5963, FeverCount: 15, CoughCount: 11},
	}
}
