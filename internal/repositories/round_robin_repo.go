package repositories

import (
	"context"
	"time"

	"dealerhub-gin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// RoundRobin Repository GORM Implementation
// ===========================================================================

// roundRobinRepo implements RoundRobinRepository with GORM
type roundRobinRepo struct {
	db *gorm.DB
}

// NewRoundRobinRepository creates a new RoundRobinRepository
func NewRoundRobinRepository(db *gorm.DB) RoundRobinRepository {
	return &roundRobinRepo{db: db}
}

// FindActiveOrdered loads active rows ordered least-recently-assigned
// first; salespeople who never received a lead come before everyone.
func (r *roundRobinRepo) FindActiveOrdered(ctx context.Context) ([]models.RoundRobinConfig, error) {
	var configs []models.RoundRobinConfig
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("last_assigned_at ASC NULLS FIRST").
		Find(&configs).Error
	return configs, err
}

// FindAll lists all rows for the dashboard
func (r *roundRobinRepo) FindAll(ctx context.Context) ([]models.RoundRobinConfig, error) {
	var configs []models.RoundRobinConfig
	err := r.db.WithContext(ctx).
		Preload("Salesperson").
		Order("created_at ASC").
		Find(&configs).Error
	return configs, err
}

// FindByID finds a row by ID
func (r *roundRobinRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.RoundRobinConfig, error) {
	var cfg models.RoundRobinConfig
	if err := r.db.WithContext(ctx).First(&cfg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Create enrolls a salesperson
func (r *roundRobinRepo) Create(ctx context.Context, cfg *models.RoundRobinConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

// Update saves a row
func (r *roundRobinRepo) Update(ctx context.Context, cfg *models.RoundRobinConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// Delete unenrolls a salesperson
func (r *roundRobinRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.RoundRobinConfig{}, "id = ?", id).Error
}

// RegisterAssignment applies the counter increments for one assignment as a
// single atomic UPDATE. Two webhook invocations assigning concurrently must
// not lose an increment, so the day rollover is decided inside the statement
// rather than in Go: when last_assigned_at is from a previous day the daily
// counter restarts at 1, otherwise it increments.
func (r *roundRobinRepo) RegisterAssignment(ctx context.Context, salespersonID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.RoundRobinConfig{}).
		Where("salesperson_id = ?", salespersonID).
		Updates(map[string]interface{}{
			"total_leads_assigned": gorm.Expr("total_leads_assigned + 1"),
			"current_leads_today": gorm.Expr(
				"CASE WHEN last_assigned_at IS NOT NULL AND last_assigned_at::date = ?::date THEN current_leads_today + 1 ELSE 1 END",
				now,
			),
			"last_assigned_at": now,
		}).Error
}
