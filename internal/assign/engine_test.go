package assign

import (
	"testing"
	"time"

	"dealerhub-gin/internal/models"
	"dealerhub-gin/pkg/logger"

	"github.com/google/uuid"
)

// row builds a pool fixture. lastAssigned nil means never assigned.
func row(id uuid.UUID, active bool, maxPerDay *int, today int, lastAssigned *time.Time) models.RoundRobinConfig {
	return models.RoundRobinConfig{
		SalespersonID:     id,
		IsActive:          active,
		MaxLeadsPerDay:    maxPerDay,
		CurrentLeadsToday: today,
		LastAssignedAt:    lastAssigned,
	}
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestPickFirstEligible(t *testing.T) {
	e := NewEngine(logger.NewNop())
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	a, b := uuid.New(), uuid.New()
	rows := []models.RoundRobinConfig{
		row(a, true, nil, 0, nil),
		row(b, true, nil, 0, nil),
	}

	picked := e.Pick(rows, now)
	if picked == nil {
		t.Fatal("Pick returned nil with two active rows")
	}
	// rows arrive least-recently-assigned first; the head wins
	if picked.SalespersonID != a {
		t.Fatalf("picked %s, want the first row %s", picked.SalespersonID, a)
	}
}

func TestPickSkipsInactive(t *testing.T) {
	e := NewEngine(logger.NewNop())
	now := time.Now()

	a, b := uuid.New(), uuid.New()
	rows := []models.RoundRobinConfig{
		row(a, false, nil, 0, nil),
		row(b, true, nil, 0, nil),
	}

	picked := e.Pick(rows, now)
	if picked == nil || picked.SalespersonID != b {
		t.Fatalf("picked %v, want the active row %s", picked, b)
	}
}

func TestPickSkipsCapped(t *testing.T) {
	e := NewEngine(logger.NewNop())
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	a, b := uuid.New(), uuid.New()
	rows := []models.RoundRobinConfig{
		// first in line but already at today's cap
		row(a, true, intPtr(5), 5, timePtr(now.Add(-time.Hour))),
		row(b, true, intPtr(5), 2, timePtr(now.Add(-30*time.Minute))),
	}

	picked := e.Pick(rows, now)
	if picked == nil || picked.SalespersonID != b {
		t.Fatalf("picked %v, want the uncapped row %s", picked, b)
	}
}

func TestPickStaleCounterReadsAsZero(t *testing.T) {
	e := NewEngine(logger.NewNop())
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	a := uuid.New()
	rows := []models.RoundRobinConfig{
		// counter maxed out yesterday; a new day means a fresh cap
		row(a, true, intPtr(5), 5, timePtr(now.Add(-24*time.Hour))),
	}

	picked := e.Pick(rows, now)
	if picked == nil || picked.SalespersonID != a {
		t.Fatalf("picked %v, want %s with yesterday's counter ignored", picked, a)
	}
}

func TestPickAllCappedOverflows(t *testing.T) {
	e := NewEngine(logger.NewNop())
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	a, b := uuid.New(), uuid.New()
	rows := []models.RoundRobinConfig{
		row(a, true, intPtr(3), 3, timePtr(now.Add(-2*time.Hour))),
		row(b, true, intPtr(3), 3, timePtr(now.Add(-time.Hour))),
	}

	// a lead must land somewhere: the least-recently-assigned absorbs it
	picked := e.Pick(rows, now)
	if picked == nil || picked.SalespersonID != a {
		t.Fatalf("picked %v, want overflow onto %s", picked, a)
	}
}

func TestPickEmptyPool(t *testing.T) {
	e := NewEngine(logger.NewNop())

	if picked := e.Pick(nil, time.Now()); picked != nil {
		t.Fatalf("picked %v from an empty pool", picked)
	}

	onlyInactive := []models.RoundRobinConfig{
		row(uuid.New(), false, nil, 0, nil),
	}
	if picked := e.Pick(onlyInactive, time.Now()); picked != nil {
		t.Fatalf("picked %v from an all-inactive pool", picked)
	}
}

func TestPickUncappedNeverBlocks(t *testing.T) {
	e := NewEngine(logger.NewNop())
	now := time.Now()

	a := uuid.New()
	rows := []models.RoundRobinConfig{
		row(a, true, nil, 999, timePtr(now.Add(-time.Minute))),
	}

	picked := e.Pick(rows, now)
	if picked == nil || picked.SalespersonID != a {
		t.Fatalf("picked %v, nil cap must never block", picked)
	}
}
