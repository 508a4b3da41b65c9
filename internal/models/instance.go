package models

import (
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// WhatsAppInstance
// One per salesperson-owned WhatsApp line at the messaging gateway.
// Mutated by connection-update and QR events from the webhook.
// ===========================================================================

// InstanceStatus lifecycle of a gateway connection
type InstanceStatus string

const (
	// InstanceDisconnected line is not connected
	InstanceDisconnected InstanceStatus = "disconnected"

	// InstanceConnecting gateway is bringing the session up
	InstanceConnecting InstanceStatus = "connecting"

	// InstanceQRPending a QR code is waiting to be scanned
	InstanceQRPending InstanceStatus = "qr_pending"

	// InstanceConnected session established
	InstanceConnected InstanceStatus = "connected"
)

// WhatsAppInstance represents one messaging line registered at the gateway
type WhatsAppInstance struct {
	BaseModel

	// InstanceName slug identifying the instance at the gateway.
	// The webhook envelope carries this name, so it must be unique.
	InstanceName string `gorm:"size:100;uniqueIndex;not null" json:"instance_name"`

	// ExternalID id returned by the gateway on creation
	ExternalID *string `gorm:"size:255" json:"external_id,omitempty"`

	// UserID owning salesperson
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	// Status connection lifecycle
	Status InstanceStatus `gorm:"size:50;not null;default:'disconnected';index" json:"status"`

	// PhoneNumber last phone number reported by the gateway
	PhoneNumber *string `gorm:"size:50" json:"phone_number,omitempty"`

	// QRCode last QR payload (base64), only meaningful while qr_pending
	QRCode *string `gorm:"type:text" json:"qr_code,omitempty"`

	// QRExpiresAt when the stored QR stops being worth rendering
	QRExpiresAt *time.Time `json:"qr_expires_at,omitempty"`

	// WebhookURL url registered at the gateway for this instance
	WebhookURL *string `gorm:"size:500" json:"webhook_url,omitempty"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName returns the table name
func (WhatsAppInstance) TableName() string {
	return "whatsapp_instances"
}

// IsConnected reports whether the line is up
func (i *WhatsAppInstance) IsConnected() bool { return i.Status == InstanceConnected }

// SetQR stores a fresh QR payload and arms the expiry window
func (i *WhatsAppInstance) SetQR(qr string, ttl time.Duration) {
	i.QRCode = &qr
	expires := time.Now().Add(ttl)
	i.QRExpiresAt = &expires
	i.Status = InstanceQRPending
}

// ClearQR drops the QR payload after a successful connect or a logout
func (i *WhatsAppInstance) ClearQR() {
	i.QRCode = nil
	i.QRExpiresAt = nil
}
