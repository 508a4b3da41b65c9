package repositories

import (
	"context"
	"errors"

	"dealerhub-gin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Lead Repository GORM Implementation
// ===========================================================================

// leadRepo implements LeadRepository with GORM
type leadRepo struct {
	db *gorm.DB
}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepo{db: db}
}

// FindByID finds a lead by ID
func (r *leadRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByAnyPhone tries the phone variants in order, first hit wins.
// Variants are probed one by one instead of a single IN clause so the
// caller's priority order (normalized > stripped > prefixed) is honored.
func (r *leadRepo) FindByAnyPhone(ctx context.Context, variants []string) (*models.Lead, error) {
	for _, phone := range variants {
		if phone == "" {
			continue
		}
		var lead models.Lead
		err := r.db.WithContext(ctx).
			Where("phone = ?", phone).
			First(&lead).Error
		if err == nil {
			return &lead, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// FindAll lists leads
func (r *leadRepo) FindAll(ctx context.Context, opts FindOptions) ([]models.Lead, int64, error) {
	opts.SetDefaults()

	var leads []models.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Lead{})

	if opts.Filters != nil {
		if status, ok := opts.Filters["status"]; ok {
			query = query.Where("status = ?", status)
		}
		if assignedTo, ok := opts.Filters["assigned_to"]; ok {
			query = query.Where("assigned_to = ?", assignedTo)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("AssignedUser").
		Order(opts.GetOrderClause()).
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&leads).Error

	return leads, total, err
}

// Create creates a lead
func (r *leadRepo) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// Update saves a lead
func (r *leadRepo) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}
