package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// BaseModel
// Shared columns for all models: UUID primary key, timestamps, soft delete
// ===========================================================================

// BaseModel contains the common fields for every model
type BaseModel struct {
	// ID primary key, generated server-side if absent
	ID uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`

	// CreatedAt record creation time
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`

	// UpdatedAt last update time
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	// DeletedAt soft delete marker
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate generates a UUID when the client did not provide one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// GetID returns the model ID
func (b *BaseModel) GetID() uuid.UUID {
	return b.ID
}
