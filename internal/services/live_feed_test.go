package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/models"
)

type fixedDeltaSource struct {
	count int
	rate  float64
}

func (source fixedDeltaSource) CountDelta() int {
	return source.count
}

func (source fixedDeltaSource) RateDelta() float64 {
	return source.rate
}

type countingTarget struct {
	mu    sync.Mutex
	ticks int
}

func (target *countingTarget) Perturb(DeltaSource) {
	target.mu.Lock()
	target.ticks++
	target.mu.Unlock()
}

func (target *countingTarget) count() int {
	target.mu.Lock()
	defer target.mu.Unlock()
	return target.ticks
}

type stubWardStore struct {
	wards []models.Ward
	saved [][]models.Ward
	err   error
}

func (stub *stubWardStore) List() ([]models.Ward, error) {
	return stub.wards, nil
}

func (stub *stubWardStore) CreateBatch(wards []models.Ward) error {
	for index := range wards {
		wards[index].ID = uint(index + 1)
	}
	stub.wards = append(stub.wards, wards...)
	return nil
}

func (stub *stubWardStore) SaveCounts(wards []models.Ward) error {
	stub.saved = append(stub.saved, wards)
	return stub.err
}

func TestRandomDeltaSourceRanges(t *testing.T) {
	source := NewRandomDeltaSource(42)
	for index := 0; index < 1000; index++ {
		if delta := source.CountDelta(); delta < -1 || delta > 1 {
			t.Fatalf("count delta %d out of range", delta)
		}
		if delta := source.RateDelta(); delta < -3 || delta >= 3 {
			t.Fatalf("rate delta %v out of range", delta)
		}
	}
}

func TestDashboardStatePerturbClamps(t *testing.T) {
	state := NewDashboardState()

	initial := state.Snapshot()
	if initial.FeverReports != 142 || initial.CoughReports != 98 || initial.RecoveryRate != 87 {
		t.Fatalf("unexpected initial metrics %+v", initial)
	}
	if len(initial.NearbyWards) != 4 || initial.NearbyWards[2].Severity != SeverityHigh {
		t.Fatalf("unexpected nearby wards %+v", initial.NearbyWards)
	}

	for index := 0; index < 10; index++ {
		state.Perturb(fixedDeltaSource{count: 1, rate: 2.9})
	}
	raised := state.Snapshot()
	if raised.FeverReports != 152 || raised.CoughReports != 108 {
		t.Fatalf("unexpected counts %+v", raised)
	}
	if raised.RecoveryRate != 100 {
		t.Fatalf("expected recovery rate clamped to 100, got %v", raised.RecoveryRate)
	}

	for index := 0; index < 200; index++ {
		state.Perturb(fixedDeltaSource{count: -1, rate: -3})
	}
	lowered := state.Snapshot()
	if lowered.FeverReports != 0 || lowered.CoughReports != 0 {
		t.Fatalf("expected counts clamped at zero, got %+v", lowered)
	}
	if lowered.RecoveryRate != 70 {
		t.Fatalf("expected recovery rate clamped to 70, got %v", lowered.RecoveryRate)
	}
}

func TestWardMapPerturbRecomputesTierAndPersists(t *testing.T) {
	store := &stubWardStore{}
	wardMap := NewWardMap([]models.Ward{
		{ID: 1, Name: "Koramangala", Latitude: 12.93, Longitude: 77.62, FeverCount: 5, CoughCount: 5},
		{ID: 2, Name: "Jayanagar", Latitude: 12.92, Longitude: 77.59, FeverCount: 0, CoughCount: 0},
	}, store, zerolog.Nop())

	wardMap.Perturb(fixedDeltaSource{count: 1})
	ward, err := wardMap.Ward(1)
	if err != nil {
		t.Fatalf("Ward() unexpected error: %v", err)
	}
	if ward.Total != 12 || ward.Severity != SeverityModerate || ward.Color != "#eab308" {
		t.Fatalf("expected moderate tier after increase, got %+v", ward)
	}

	wardMap.Perturb(fixedDeltaSource{count: -1})
	wardMap.Perturb(fixedDeltaSource{count: -1})
	empty, _ := wardMap.Ward(2)
	if empty.FeverCount != 0 || empty.CoughCount != 0 {
		t.Fatalf("expected counts clamped at zero, got %+v", empty)
	}

	if len(store.saved) != 3 || store.saved[0][0].FeverCount != 6 {
		t.Fatalf("expected every perturbation to be persisted, got %+v", store.saved)
	}

	if _, err := wardMap.Ward(99); !errors.Is(err, ErrWardNotFound) {
		t.Fatalf("expected ErrWardNotFound, got %v", err)
	}
}

func TestWardMapPersistFailureKeepsLiveCounts(t *testing.T) {
	store := &stubWardStore{err: errors.New("locked")}
	wardMap := NewWardMap([]models.Ward{{ID: 1, Name: "Whitefield", FeverCount: 20}}, store, zerolog.Nop())

	wardMap.Perturb(fixedDeltaSource{count: 1})
	ward, _ := wardMap.Ward(1)
	if ward.Total != 22 || ward.Severity != SeverityHigh {
		t.Fatalf("unexpected ward after failed persist %+v", ward)
	}
}

func TestLoadWardMapSeedsDefaultsAndBuildsSnapshot(t *testing.T) {
	store := &stubWardStore{}
	wardMap, err := LoadWardMap(store, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadWardMap() unexpected error: %v", err)
	}

	snapshot := wardMap.Snapshot()
	if len(snapshot.Wards) != len(models.DefaultMapWards()) {
		t.Fatalf("expected default wards, got %d", len(snapshot.Wards))
	}

	total := 0
	high := 0
	for _, ward := range models.DefaultMapWards() {
		total += ward.FeverCount + ward.CoughCount
		if SeverityTierFor(ward.FeverCount+ward.CoughCount) == SeverityHigh {
			high++
		}
	}
	if snapshot.Stats.TotalReports != total || snapshot.Stats.HighSeverityCount != high {
		t.Fatalf("unexpected stats %+v, want total=%d high=%d", snapshot.Stats, total, high)
	}
	if snapshot.Bounds == nil || snapshot.Bounds.MinLat > snapshot.Bounds.MaxLat || snapshot.Bounds.MaxLat != 13.1007 {
		t.Fatalf("unexpected bounds %+v", snapshot.Bounds)
	}
}

func TestLiveMetricFeedTicksUntilStopped(t *testing.T) {
	target := &countingTarget{}
	feed := NewLiveMetricFeed("test", time.Millisecond, fixedDeltaSource{}, target, zerolog.Nop())

	if err := feed.Start(context.Background()); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	if err := feed.Start(context.Background()); !errors.Is(err, ErrFeedRunning) {
		t.Fatalf("expected ErrFeedRunning, got %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for target.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("feed did not tick")
		}
		time.Sleep(time.Millisecond)
	}

	feed.Stop()
	stoppedAt := target.count()
	feed.Tick()
	time.Sleep(10 * time.Millisecond)
	if target.count() != stoppedAt {
		t.Fatalf("expected no mutation after Stop, got %d ticks after %d", target.count(), stoppedAt)
	}
	if err := feed.Start(context.Background()); !errors.Is(err, ErrFeedStopped) {
		t.Fatalf("expected ErrFeedStopped, got %v", err)
	}
}

func TestLiveMetricFeedStopsOnContextCancel(t *testing.T) {
	target := &countingTarget{}
	feed := NewLiveMetricFeed("test", time.Hour, fixedDeltaSource{}, target, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	if err := feed.Start(ctx); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	feed.Tick()
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for !feed.Stopped() {
		if time.Now().After(deadline) {
			t.Fatal("feed did not observe cancellation")
		}
		time.Sleep(time.Millisecond)
	}
	feed.Tick()
	if target.count() != 1 {
		t.Fatalf("expected only the manual tick before cancel, got %d", target.count())
	}
	feed.Stop()
}

func TestLiveMetricFeedIgnoresTickRightAfterCancel(t *testing.T) {
	target := &countingTarget{}
	feed := NewLiveMetricFeed("test", time.Hour, fixedDeltaSource{}, target, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	if err := feed.Start(ctx); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	defer feed.Stop()

	cancel()
	feed.Tick()
	if target.count() != 0 {
		t.Fatalf("expected no perturbation after cancel, got %d", target.count())
	}
}

func TestLiveMetricFeedStopWithoutStart(t *testing.T) {
	target := &countingTarget{}
	feed := NewLiveMetricFeed("idle", time.Second, fixedDeltaSource{}, target, zerolog.Nop())
	feed.Stop()
	feed.Tick()
	if target.count() != 0 {
		t.Fatal("expected stopped feed to ignore ticks")
	}
}
