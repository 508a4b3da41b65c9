package assign

import (
	"time"

	"dealerhub-gin/internal/models"

	"go.uber.org/zap"
)

// ===========================================================================
// Round-robin engine
// Pure selection over a snapshot of round_robin_config rows plus "now".
// All distribution state lives in the row set; the engine holds none,
// which keeps it testable with plain fixtures.
// ===========================================================================

// Engine picks the next salesperson for a fresh lead
type Engine interface {
	// Pick returns the selected row, or nil when no active row exists.
	// rows must be ordered least-recently-assigned first, never-assigned
	// first of all. That ordering is the fairness invariant.
	Pick(rows []models.RoundRobinConfig, now time.Time) *models.RoundRobinConfig
}

// engine implements Engine
type engine struct {
	logger *zap.Logger
}

// NewEngine creates a round-robin engine
func NewEngine(logger *zap.Logger) Engine {
	return &engine{logger: logger}
}

// Pick walks the ordered rows and returns the first one under its daily
// cap. A counter dated before today counts as zero: caps reset lazily at
// read time, there is no scheduled job. When every row is capped the
// least-recently-assigned one is returned anyway: a new lead must land
// somewhere as long as anyone is enrolled.
func (e *engine) Pick(rows []models.RoundRobinConfig, now time.Time) *models.RoundRobinConfig {
	var eligible []models.RoundRobinConfig
	for _, row := range rows {
		if !row.IsActive {
			continue
		}
		eligible = append(eligible, row)
	}
	if len(eligible) == 0 {
		return nil
	}

	for i := range eligible {
		row := &eligible[i]
		if row.AtCap(now) {
			e.logger.Debug("salesperson at daily cap, skipping",
				zap.String("salesperson_id", row.SalespersonID.String()),
				zap.Int("today", row.TodayCount(now)),
			)
			continue
		}
		return row
	}

	// everyone capped: overflow to the least-recently-assigned
	e.logger.Warn("all salespeople at daily cap, overflowing to least recent",
		zap.String("salesperson_id", eligible[0].SalespersonID.String()),
	)
	return &eligible[0]
}
