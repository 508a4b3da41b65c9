package services

import (
	"context"
	"errors"
	"time"

	apperrors "dealerhub-gin/internal/errors"
	"dealerhub-gin/internal/models"
	"dealerhub-gin/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Round-Robin Service
// Management surface for the assignment pool: enrollment, caps and the
// dashboard view. The hot path (picking a salesperson for a new lead)
// lives in the assign package, not here.
// ===========================================================================

// PoolEntry is a round-robin row with its effective daily count
type PoolEntry struct {
	models.RoundRobinConfig

	// LeadsToday counter normalized for day rollover: a stale count from
	// yesterday reads as zero
	LeadsToday int `json:"leads_today"`

	// AtCap true when the salesperson reached their daily cap
	AtCap bool `json:"at_cap"`
}

// RoundRobinService manages the assignment pool
type RoundRobinService interface {
	// List returns the pool for the dashboard
	List(ctx context.Context) ([]PoolEntry, error)

	// Enroll adds a salesperson to the pool
	Enroll(ctx context.Context, salespersonID uuid.UUID, maxLeadsPerDay *int) (*models.RoundRobinConfig, error)

	// Update changes a row's cap or active flag
	Update(ctx context.Context, id uuid.UUID, isActive *bool, maxLeadsPerDay *int) (*models.RoundRobinConfig, error)

	// Unenroll removes a salesperson from the pool
	Unenroll(ctx context.Context, id uuid.UUID) error
}

// roundRobinService implements RoundRobinService
type roundRobinService struct {
	repo   repositories.RoundRobinRepository
	logger *zap.Logger
}

// NewRoundRobinService creates a RoundRobinService
func NewRoundRobinService(repo repositories.RoundRobinRepository, logger *zap.Logger) RoundRobinService {
	return &roundRobinService{repo: repo, logger: logger}
}

// List returns the pool for the dashboard
func (s *roundRobinService) List(ctx context.Context) ([]PoolEntry, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]PoolEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, PoolEntry{
			RoundRobinConfig: row,
			LeadsToday:       row.TodayCount(now),
			AtCap:            row.AtCap(now),
		})
	}
	return entries, nil
}

// Enroll adds a salesperson to the pool
func (s *roundRobinService) Enroll(ctx context.Context, salespersonID uuid.UUID, maxLeadsPerDay *int) (*models.RoundRobinConfig, error) {
	if maxLeadsPerDay != nil && *maxLeadsPerDay <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "max_leads_per_day must be positive")
	}

	cfg := &models.RoundRobinConfig{
		SalespersonID:  salespersonID,
		IsActive:       true,
		MaxLeadsPerDay: maxLeadsPerDay,
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrDuplicateEntry, "salesperson already enrolled")
		}
		return nil, err
	}

	s.logger.Info("salesperson enrolled in round-robin",
		zap.String("salesperson_id", salespersonID.String()))
	return cfg, nil
}

// Update changes a row's cap or active flag
func (s *roundRobinService) Update(ctx context.Context, id uuid.UUID, isActive *bool, maxLeadsPerDay *int) (*models.RoundRobinConfig, error) {
	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "round-robin entry not found")
		}
		return nil, err
	}

	if isActive != nil {
		cfg.IsActive = *isActive
	}
	if maxLeadsPerDay != nil {
		if *maxLeadsPerDay <= 0 {
			// zero clears the cap
			cfg.MaxLeadsPerDay = nil
		} else {
			cfg.MaxLeadsPerDay = maxLeadsPerDay
		}
	}

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Unenroll removes a salesperson from the pool
func (s *roundRobinService) Unenroll(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrNotFound, "round-robin entry not found")
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}
