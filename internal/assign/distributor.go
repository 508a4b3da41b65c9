package assign

import (
	"context"
	"time"

	"dealerhub-gin/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ===========================================================================
// Distributor
// Repo-backed wrapper around the engine: loads the current pool snapshot,
// picks, and registers the assignment counters atomically.
// ===========================================================================

// Distributor assigns fresh leads to salespeople
type Distributor interface {
	// Assign selects the next salesperson and updates their counters.
	// Returns nil when nobody is enrolled; that is not an error.
	Assign(ctx context.Context) (*uuid.UUID, error)
}

// distributor implements Distributor
type distributor struct {
	roundRobinRepo repositories.RoundRobinRepository
	engine         Engine
	logger         *zap.Logger
}

// NewDistributor creates a Distributor
func NewDistributor(roundRobinRepo repositories.RoundRobinRepository, engine Engine, logger *zap.Logger) Distributor {
	return &distributor{
		roundRobinRepo: roundRobinRepo,
		engine:         engine,
		logger:         logger,
	}
}

// Assign picks the next salesperson for a new lead
func (d *distributor) Assign(ctx context.Context) (*uuid.UUID, error) {
	rows, err := d.roundRobinRepo.FindActiveOrdered(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	picked := d.engine.Pick(rows, now)
	if picked == nil {
		d.logger.Info("no active salespeople in round-robin pool, lead stays unassigned")
		return nil, nil
	}

	// Counters move in one atomic UPDATE; two concurrent webhook
	// invocations must both be counted.
	if err := d.roundRobinRepo.RegisterAssignment(ctx, picked.SalespersonID, now); err != nil {
		return nil, err
	}

	d.logger.Info("lead assigned via round-robin",
		zap.String("salesperson_id", picked.SalespersonID.String()),
		zap.Int("today_before", picked.TodayCount(now)),
		zap.Int("total_before", picked.TotalLeadsAssigned),
	)

	id := picked.SalespersonID
	return &id, nil
}
