package models

import (
	"github.com/google/uuid"
)

// ===========================================================================
// InteractionLog
// Lightweight timeline entry written for every inbound message, so the
// CRM can show activity without scanning the messages table.
// ===========================================================================

// InteractionKind kind of interaction
type InteractionKind string

const (
	InteractionMessageIn InteractionKind = "message_in"
	InteractionNote      InteractionKind = "note"
)

// InteractionLog represents one CRM timeline entry
type InteractionLog struct {
	BaseModel

	// LeadID related lead, when resolved
	LeadID *uuid.UUID `gorm:"type:uuid;index" json:"lead_id,omitempty"`

	// ContactID related contact
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`

	// Kind interaction kind
	Kind InteractionKind `gorm:"size:50;not null" json:"kind"`

	// Description short human-readable summary
	Description string `gorm:"size:500" json:"description"`
}

// TableName returns the table name
func (InteractionLog) TableName() string {
	return "lead_interactions"
}
