package services

import (
	"math"
	"sync"
)

const (
	initialFeverReports = 142
	initialCoughReports = 98
	initialRecoveryRate = 87
	minRecoveryRate     = 70
	maxRecoveryRate     = 100
)

type NearbyWard struct {
	ID       string       `json:"id"`
	Fever    int          `json:"fever"`
	Cough    int          `json:"cough"`
	Severity SeverityTier `json:"severity"`
}

type DashboardMetrics struct {
	FeverReports int          `json:"fever_reports"`
	CoughReports int          `json:"cough_reports"`
	RecoveryRate float64      `json:"recovery_rate"`
	NearbyWards  []NearbyWard `json:"nearby_wards"`
}

// DashboardState holds the live dashboard counters shared between the feed
// and HTTP readers.
type DashboardState struct {
	mu           sync.RWMutex
	feverReports int
	coughReports int
	recoveryRate float64
	nearbyWards  []NearbyWard
}

func NewDashboardState() *DashboardState {
	return &DashboardState{
		feverReports: initialFeverReports,
		coughReports: initialCoughReports,
		recoveryRate: initialRecoveryRate,
		nearbyWards: []NearbyWard{
			{ID: "12", Fever: 14, Cough: 9},
			{ID: "13", Fever: 8, Cough: 6},
			{ID: "14", Fever: 22, Cough: 15},
			{ID: "15", Fever: 11, Cough: 8},
		},
	}
}

func (state *DashboardState) Perturb(source DeltaSource) {
	feverDelta := source.CountDelta()
	coughDelta := source.CountDelta()
	rateDelta := source.RateDelta()

	state.mu.Lock()
	defer state.mu.Unlock()

	state.feverReports = clampCount(state.feverReports + feverDelta)
	state.coughReports = clampCount(state.coughReports + coughDelta)
	state.recoveryRate = math.Min(maxRecoveryRate, math.Max(minRecoveryRate, state.recoveryRate+rateDelta))
}

func (state *DashboardState) Snapshot() DashboardMetrics {
	state.mu.RLock()
	defer state.mu.RUnlock()

	wards := make([]NearbyWard, len(state.nearbyWards))
	for index, ward := range state.nearbyWards {
		ward.Severity = SeverityTierFor(ward.Fever + ward.Cough)
		wards[index] = ward
	}

	return DashboardMetrics{
		FeverReports: state.feverReports,
		CoughReports: state.coughReports,
		RecoveryRate: roundToTenth(state.recoveryRate),
		NearbyWards:  wards,
	}
}

func clampCount(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
