package models

import (
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// Message
// Immutable record of one inbound or outbound chat turn. The composite
// unique index on (instance_id, message_id) is the idempotency key for
// at-least-once webhook delivery: a redelivered payload hits the index
// instead of creating a second row.
// ===========================================================================

// MessageDirection message direction
type MessageDirection string

const (
	// DirectionIn from the customer to the dealership
	DirectionIn MessageDirection = "in"

	// DirectionOut echo of a message the salesperson sent
	DirectionOut MessageDirection = "out"
)

// MessageStatus delivery status
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
)

// statusRank orders receipts so a late "delivered" never undoes a "read".
// failed is terminal and always wins.
var statusRank = map[MessageStatus]int{
	StatusPending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
	StatusFailed:    4,
}

// Supersedes reports whether s should replace current in storage
func (s MessageStatus) Supersedes(current MessageStatus) bool {
	return statusRank[s] > statusRank[current]
}

// StatusesBelow returns every status s supersedes. Used as the guard set
// for conditional receipt updates: a receipt only lands when the stored
// status is one of these.
func StatusesBelow(s MessageStatus) []MessageStatus {
	var below []MessageStatus
	for _, candidate := range []MessageStatus{StatusPending, StatusSent, StatusDelivered, StatusRead, StatusFailed} {
		if s.Supersedes(candidate) {
			below = append(below, candidate)
		}
	}
	return below
}

// Message represents one chat turn
type Message struct {
	BaseModel

	// InstanceID owning connection
	InstanceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_instance_message,priority:1" json:"instance_id"`

	// ContactID owning contact
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`

	// RemoteJID channel identifier the gateway used for the counterparty
	RemoteJID string `gorm:"size:255;not null" json:"remote_jid"`

	// MessageID external message id from the gateway (idempotency key)
	MessageID string `gorm:"size:255;not null;uniqueIndex:ux_instance_message,priority:2" json:"message_id"`

	// Direction in or out
	Direction MessageDirection `gorm:"size:10;not null" json:"direction"`

	// Content text body
	Content *string `gorm:"type:text" json:"content,omitempty"`

	// Status delivery status, mutated in place by receipt events
	Status MessageStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	// Timestamp provider timestamp of the message
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`

	// LeadID lead this message belongs to, when known
	LeadID *uuid.UUID `gorm:"type:uuid;index" json:"lead_id,omitempty"`

	// Relations
	Instance WhatsAppInstance `gorm:"foreignKey:InstanceID" json:"instance,omitempty"`
	Contact  Contact          `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
}

// TableName returns the table name
func (Message) TableName() string {
	return "whatsapp_messages"
}

// IsInbound reports whether the message came from the customer
func (m *Message) IsInbound() bool { return m.Direction == DirectionIn }
