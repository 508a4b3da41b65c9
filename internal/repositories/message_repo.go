package repositories

import (
	"context"

	"dealerhub-gin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Message Repository GORM Implementation
// ===========================================================================

// messageRepo implements MessageRepository with GORM
type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

// FindByExternalID finds a message by (instance, external message id)
func (r *messageRepo) FindByExternalID(ctx context.Context, instanceID uuid.UUID, messageID string) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Where("instance_id = ? AND message_id = ?", instanceID, messageID).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByContact lists a contact's messages chronologically
func (r *messageRepo) FindByContact(ctx context.Context, contactID uuid.UUID, opts FindOptions) ([]models.Message, int64, error) {
	opts.SetDefaults()

	var messages []models.Message
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("contact_id = ?", contactID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Chat history reads oldest-first
	if opts.OrderBy == "created_at" && opts.OrderDir == "desc" {
		opts.OrderBy = "timestamp"
		opts.OrderDir = "asc"
	}

	err := query.
		Order(opts.GetOrderClause()).
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&messages).Error

	return messages, total, err
}

// Create inserts a message. The unique index on (instance_id, message_id)
// turns a redelivered webhook into gorm.ErrDuplicatedKey instead of a
// second row.
func (r *messageRepo) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// AdvanceStatus updates delivery status by external message id, guarded so
// only an upgrade goes through. Both the rank check and the write happen in
// one UPDATE, which makes concurrent receipt deliveries safe to re-order.
func (r *messageRepo) AdvanceStatus(ctx context.Context, messageID string, status models.MessageStatus, allowedCurrent []models.MessageStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("message_id = ?", messageID).
		Where("status IN ?", allowedCurrent).
		Update("status", status)
	return res.RowsAffected, res.Error
}
