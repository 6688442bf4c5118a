package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/models"
)

var ErrWardNotFound = errors.New("ward not found")

type WardStore interface {
	List() ([]models.Ward, error)
	CreateBatch(wards []models.Ward) error
	SaveCounts(wards []models.Ward) error
}

type WardLocation struct {
	ID         uint         `json:"id"`
	Ward       string       `json:"ward"`
	Latitude   float64      `json:"lat"`
	Longitude  float64      `json:"lng"`
	FeverCount int          `json:"fever_count"`
	CoughCount int          `json:"cough_count"`
	Total      int          `json:"total"`
	Severity   SeverityTier `json:"severity"`
	Color      string       `json:"color"`
}

type MapStats struct {
	TotalReports      int `json:"total_reports"`
	HighSeverityCount int `json:"high_severity_count"`
}

type MapBounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

type MapSnapshot struct {
	Wards  []WardLocation `json:"wards"`
	Stats  MapStats       `json:"stats"`
	Bounds *MapBounds     `json:"bounds,omitempty"`
}

// WardMap is the live per-ward counter set behind the map view. Every change
// recomputes the severity tier and is written back to the store when one is
// attached.
type WardMap struct {
	mu     sync.RWMutex
	wards  []WardLocation
	store  WardStore
	logger zerolog.Logger
}

func NewWardMap(wards []models.Ward, store WardStore, logger zerolog.Logger) *WardMap {
	locations := make([]WardLocation, 0, len(wards))
	for _, ward := range wards {
		locations = append(locations, wardLocationFrom(ward))
	}
	return &WardMap{
		wards:  locations,
		store:  store,
		logger: logger.With().Str("component", "ward_map").Logger(),
	}
}

// LoadWardMap reads wards from the store, seeding the default map wards into
// an empty table first.
func LoadWardMap(store WardStore, logger zerolog.Logger) (*WardMap, error) {
	wards, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("load wards: %w", err)
	}
	if len(wards) == 0 {
		if err := store.CreateBatch(models.DefaultMapWards()); err != nil {
			return nil, fmt.Errorf("seed wards: %w", err)
		}
		if wards, err = store.List(); err != nil {
			return nil, fmt.Errorf("reload wards: %w", err)
		}
	}
	return NewWardMap(wards, store, logger), nil
}

func (wardMap *WardMap) Perturb(source DeltaSource) {
	wardMap.mu.Lock()
	for index := range wardMap.wards {
		ward := &wardMap.wards[index]
		ward.FeverCount = clampCount(ward.FeverCount + source.CountDelta())
		ward.CoughCount = clampCount(ward.CoughCount + source.CountDelta())
		ward.refresh()
	}
	changed := wardMap.modelsLocked()
	wardMap.mu.Unlock()

	if wardMap.store == nil {
		return
	}
	if err := wardMap.store.SaveCounts(changed); err != nil {
		wardMap.logger.Warn().Err(err).Msg("persist ward counts failed")
	}
}

func (wardMap *WardMap) Snapshot() MapSnapshot {
	wardMap.mu.RLock()
	defer wardMap.mu.RUnlock()

	snapshot := MapSnapshot{Wards: make([]WardLocation, len(wardMap.wards))}
	copy(snapshot.Wards, wardMap.wards)

	for index, ward := range snapshot.Wards {
		snapshot.Stats.TotalReports += ward.Total
		if ward.Severity == SeverityHigh {
			snapshot.Stats.HighSeverityCount++
		}

		if index == 0 {
			snapshot.Bounds = &MapBounds{MinLat: ward.Latitude, MaxLat: ward.Latitude, MinLng: ward.Longitude, MaxLng: ward.Longitude}
			continue
		}
		snapshot.Bounds.MinLat = min(snapshot.Bounds.MinLat, ward.Latitude)
		snapshot.Bounds.MaxLat = max(snapshot.Bounds.MaxLat, ward.Latitude)
		snapshot.Bounds.MinLng = min(snapshot.Bounds.MinLng, ward.Longitude)
		snapshot.Bounds.MaxLng = max(snapshot.Bounds.MaxLng, ward.Longitude)
	}
	return snapshot
}

func (wardMap *WardMap) Ward(id uint) (WardLocation, error) {
	wardMap.mu.RLock()
	defer wardMap.mu.RUnlock()

	for _, ward := range wardMap.wards {
		if ward.ID == id {
			return ward, nil
		}
	}
	return WardLocation{}, ErrWardNotFound
}

func (wardMap *WardMap) modelsLocked() []models.Ward {
	wards := make([]models.Ward, 0, len(wardMap.wards))
	for _, ward := range wardMap.wards {
		wards = append(wards, models.Ward{
			ID:         ward.ID,
			Name:       ward.Ward,
			Latitude:   ward.Latitude,
			Longitude:  ward.Longitude,
			FeverCount: ward.FeverCount,
			CoughCount: ward.CoughCount,
		})
	}
	return wards
}

func wardLocationFrom(ward models.Ward) WardLocation {
	location := WardLocation{
		ID:         ward.ID,
		Ward:       ward.Name,
		Latitude:   ward.Latitude,
		Longitude:  ward.Longitude,
		FeverCount: clampCount(ward.FeverCount),
		CoughCount: clampCount(ward.CoughCount),
	}
	location.refresh()
	return location
}

func (location *WardLocation) refresh() {
	location.Total = location.FeverCount + location.CoughCount
	location.Severity = SeverityTierFor(location.Total)
	location.Color = location.Severity.Color()
}
