package models

import (
	"github.com/google/uuid"
)

// ===========================================================================
// Notification
// In-app notification for a salesperson (new lead, new message).
// ===========================================================================

// NotificationType kind of notification
type NotificationType string

const (
	NotificationNewLead    NotificationType = "new_lead"
	NotificationNewMessage NotificationType = "new_message"
)

// Notification represents an in-app notification
type Notification struct {
	BaseModel

	// UserID recipient
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	// Type notification kind
	Type NotificationType `gorm:"size:50;not null" json:"type"`

	// Title short headline shown in the bell dropdown
	Title string `gorm:"size:255;not null" json:"title"`

	// Body longer text
	Body string `gorm:"type:text" json:"body"`

	// IsRead whether the user opened it
	IsRead bool `gorm:"default:false;index" json:"is_read"`

	// LeadID related lead, when applicable
	LeadID *uuid.UUID `gorm:"type:uuid;index" json:"lead_id,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName returns the table name
func (Notification) TableName() string {
	return "notifications"
}
