package models

import (
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// Contact
// One per external phone number, or per opaque channel id when the phone
// could not be resolved. Mutated on every inbound/outbound message.
// ===========================================================================

// Contact represents a WhatsApp contact of the dealership
type Contact struct {
	BaseModel

	// Phone canonical phone (digits only, with country code). Nullable:
	// anonymized senders are stored under their channel id instead.
	Phone *string `gorm:"size:50;index" json:"phone,omitempty"`

	// Name display/push name from the gateway
	Name *string `gorm:"size:255" json:"name,omitempty"`

	// RemoteJID storable channel identifier the gateway addresses this
	// contact by (phone jid or opaque lid)
	RemoteJID string `gorm:"size:255;index" json:"remote_jid"`

	// LeadID link to the lead; once set it is never cleared by the pipeline
	LeadID *uuid.UUID `gorm:"type:uuid;index" json:"lead_id,omitempty"`

	// LastMessageAt timestamp of the latest message either way
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	// UnreadCount inbound messages since the salesperson last replied
	UnreadCount int `gorm:"not null;default:0" json:"unread_count"`

	// Relations
	Lead *Lead `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
}

// TableName returns the table name
func (Contact) TableName() string {
	return "whatsapp_contacts"
}

// Touch records message activity on the contact
func (c *Contact) Touch(at time.Time) {
	c.LastMessageAt = &at
}

// LinkLead backfills the lead link without ever overwriting an existing one
func (c *Contact) LinkLead(leadID uuid.UUID) {
	if c.LeadID == nil {
		c.LeadID = &leadID
	}
}
