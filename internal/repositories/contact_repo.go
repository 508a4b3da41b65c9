package repositories

import (
	"context"
	"time"

	"dealerhub-gin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Contact Repository GORM Implementation
// ===========================================================================

// contactRepo implements ContactRepository with GORM
type contactRepo struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

// FindByID finds a contact by ID
func (r *contactRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByPhone finds a contact by canonical phone
func (r *contactRepo) FindByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByLeadID finds a contact by its lead link
func (r *contactRepo) FindByLeadID(ctx context.Context, leadID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindAll lists contacts for the CRM inbox
func (r *contactRepo) FindAll(ctx context.Context, opts FindOptions) ([]models.Contact, int64, error) {
	opts.SetDefaults()

	var contacts []models.Contact
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Contact{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Inbox sorts by latest activity, not creation
	if opts.OrderBy == "created_at" {
		opts.OrderBy = "last_message_at"
	}

	err := query.
		Preload("Lead").
		Order(opts.GetOrderClause()).
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&contacts).Error

	return contacts, total, err
}

// Create creates a contact
func (r *contactRepo) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// Update saves a contact
func (r *contactRepo) Update(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// RecordInbound atomically bumps unread_count and last_message_at.
// Concurrent webhook deliveries must not lose increments, so this is a
// single UPDATE with an SQL expression, not read-modify-write.
func (r *contactRepo) RecordInbound(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"unread_count":    gorm.Expr("unread_count + 1"),
			"last_message_at": at,
		}).Error
}

// LinkLead backfills lead_id only when it is still empty. The IS NULL
// guard keeps the write idempotent and protects an existing link.
func (r *contactRepo) LinkLead(ctx context.Context, id, leadID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ? AND lead_id IS NULL", id).
		Update("lead_id", leadID).Error
}

// RecordOutbound zeroes unread_count and bumps last_message_at after an
// outbound echo landed
func (r *contactRepo) RecordOutbound(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"unread_count":    0,
			"last_message_at": at,
		}).Error
}

// ResetUnread zeroes unread_count when the salesperson opens the
// conversation. Activity timestamps stay untouched so the inbox keeps
// its order.
func (r *contactRepo) ResetUnread(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", id).
		Update("unread_count", 0).Error
}
