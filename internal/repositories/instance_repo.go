package repositories

import (
	"context"
	"time"

	"dealerhub-gin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Instance Repository GORM Implementation
// ===========================================================================

// instanceRepo implements InstanceRepository with GORM
type instanceRepo struct {
	db *gorm.DB
}

// NewInstanceRepository creates a new InstanceRepository
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &instanceRepo{db: db}
}

// FindByID finds an instance by ID
func (r *instanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.WhatsAppInstance, error) {
	var instance models.WhatsAppInstance
	if err := r.db.WithContext(ctx).First(&instance, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

// FindByName finds an instance by its gateway slug
func (r *instanceRepo) FindByName(ctx context.Context, name string) (*models.WhatsAppInstance, error) {
	var instance models.WhatsAppInstance
	err := r.db.WithContext(ctx).
		Where("instance_name = ?", name).
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// FindAll lists all instances
func (r *instanceRepo) FindAll(ctx context.Context) ([]models.WhatsAppInstance, error) {
	var instances []models.WhatsAppInstance
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&instances).Error
	return instances, err
}

// Create creates an instance
func (r *instanceRepo) Create(ctx context.Context, instance *models.WhatsAppInstance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}

// Update saves an instance
func (r *instanceRepo) Update(ctx context.Context, instance *models.WhatsAppInstance) error {
	return r.db.WithContext(ctx).Save(instance).Error
}

// Delete removes an instance
func (r *instanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.WhatsAppInstance{}, "id = ?", id).Error
}

// UpdateConnection applies a connection-state transition by slug
func (r *instanceRepo) UpdateConnection(ctx context.Context, name string, status models.InstanceStatus, phone string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if phone != "" {
		updates["phone_number"] = phone
	}
	if status == models.InstanceConnected || status == models.InstanceDisconnected {
		// QR payload is useless once the connection settled either way
		updates["qr_code"] = nil
		updates["qr_expires_at"] = nil
	}
	return r.db.WithContext(ctx).
		Model(&models.WhatsAppInstance{}).
		Where("instance_name = ?", name).
		Updates(updates).Error
}

// StoreQR stores a fresh QR payload and flips the instance to qr_pending
func (r *instanceRepo) StoreQR(ctx context.Context, name, qr string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.WhatsAppInstance{}).
		Where("instance_name = ?", name).
		Updates(map[string]interface{}{
			"qr_code":       qr,
			"qr_expires_at": expiresAt,
			"status":        models.InstanceQRPending,
		}).Error
}
