package repositories

import (
	"context"

	"dealerhub-gin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Side-effect repositories
// Append-only records created around lead creation and inbound messages.
// ===========================================================================

// negotiationRepo implements NegotiationRepository with GORM
type negotiationRepo struct {
	db *gorm.DB
}

// NewNegotiationRepository creates a new NegotiationRepository
func NewNegotiationRepository(db *gorm.DB) NegotiationRepository {
	return &negotiationRepo{db: db}
}

func (r *negotiationRepo) Create(ctx context.Context, n *models.Negotiation) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// leadAssignmentRepo implements LeadAssignmentRepository with GORM
type leadAssignmentRepo struct {
	db *gorm.DB
}

// NewLeadAssignmentRepository creates a new LeadAssignmentRepository
func NewLeadAssignmentRepository(db *gorm.DB) LeadAssignmentRepository {
	return &leadAssignmentRepo{db: db}
}

func (r *leadAssignmentRepo) Create(ctx context.Context, a *models.LeadAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// notificationRepo implements NotificationRepository with GORM
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// FindByUser lists a user's notifications, newest first
func (r *notificationRepo) FindByUser(ctx context.Context, userID uuid.UUID, opts FindOptions) ([]models.Notification, int64, error) {
	opts.SetDefaults()

	var notifications []models.Notification
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(opts.GetOrderClause()).
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&notifications).Error

	return notifications, total, err
}

// interactionLogRepo implements InteractionLogRepository with GORM
type interactionLogRepo struct {
	db *gorm.DB
}

// NewInteractionLogRepository creates a new InteractionLogRepository
func NewInteractionLogRepository(db *gorm.DB) InteractionLogRepository {
	return &interactionLogRepo{db: db}
}

func (r *interactionLogRepo) Create(ctx context.Context, entry *models.InteractionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
