package repositories

import (
	"context"
	"time"

	"dealerhub-gin/internal/models"

	"github.com/google/uuid"
)

// ===========================================================================
// Repository interfaces
// One interface per aggregate; GORM implementations live alongside.
// ===========================================================================

// InstanceRepository data access for whatsapp_instances
type InstanceRepository interface {
	// FindByID finds an instance by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.WhatsAppInstance, error)

	// FindByName finds an instance by its gateway slug
	FindByName(ctx context.Context, name string) (*models.WhatsAppInstance, error)

	// FindAll lists all instances
	FindAll(ctx context.Context) ([]models.WhatsAppInstance, error)

	// Create creates an instance
	Create(ctx context.Context, instance *models.WhatsAppInstance) error

	// Update saves an instance
	Update(ctx context.Context, instance *models.WhatsAppInstance) error

	// Delete removes an instance
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateConnection applies a connection-state transition by slug.
	// phone is optional and only written when non-empty.
	UpdateConnection(ctx context.Context, name string, status models.InstanceStatus, phone string) error

	// StoreQR stores a fresh QR payload and flips the instance to qr_pending
	StoreQR(ctx context.Context, name, qr string, expiresAt time.Time) error
}

// ContactRepository data access for whatsapp_contacts
type ContactRepository interface {
	// FindByID finds a contact by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)

	// FindByPhone finds a contact by canonical phone
	FindByPhone(ctx context.Context, phone string) (*models.Contact, error)

	// FindByLeadID finds a contact previously created without a phone match
	FindByLeadID(ctx context.Context, leadID uuid.UUID) (*models.Contact, error)

	// FindAll lists contacts for the CRM inbox
	FindAll(ctx context.Context, opts FindOptions) ([]models.Contact, int64, error)

	// Create creates a contact
	Create(ctx context.Context, contact *models.Contact) error

	// Update saves a contact
	Update(ctx context.Context, contact *models.Contact) error

	// RecordInbound atomically bumps unread_count and last_message_at
	RecordInbound(ctx context.Context, id uuid.UUID, at time.Time) error

	// LinkLead backfills lead_id only when it is still empty; an existing
	// link is never overwritten
	LinkLead(ctx context.Context, id, leadID uuid.UUID) error

	// RecordOutbound zeroes unread_count and bumps last_message_at after
	// an outbound echo landed
	RecordOutbound(ctx context.Context, id uuid.UUID, at time.Time) error

	// ResetUnread zeroes unread_count when the salesperson opens the
	// conversation, without touching activity timestamps
	ResetUnread(ctx context.Context, id uuid.UUID) error
}

// LeadRepository data access for leads
type LeadRepository interface {
	// FindByID finds a lead by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)

	// FindByAnyPhone tries the phone variants in order, first hit wins
	FindByAnyPhone(ctx context.Context, variants []string) (*models.Lead, error)

	// FindAll lists leads
	FindAll(ctx context.Context, opts FindOptions) ([]models.Lead, int64, error)

	// Create creates a lead
	Create(ctx context.Context, lead *models.Lead) error

	// Update saves a lead
	Update(ctx context.Context, lead *models.Lead) error
}

// MessageRepository data access for whatsapp_messages
type MessageRepository interface {
	// FindByExternalID finds a message by (instance, external message id)
	FindByExternalID(ctx context.Context, instanceID uuid.UUID, messageID string) (*models.Message, error)

	// FindByContact lists a contact's messages chronologically
	FindByContact(ctx context.Context, contactID uuid.UUID, opts FindOptions) ([]models.Message, int64, error)

	// Create inserts a message; a duplicate (instance, message id) pair
	// surfaces as gorm.ErrDuplicatedKey
	Create(ctx context.Context, msg *models.Message) error

	// AdvanceStatus updates delivery status by external message id, only
	// when the new status outranks every status in allowedCurrent. Returns
	// the number of rows changed (0 means no-op).
	AdvanceStatus(ctx context.Context, messageID string, status models.MessageStatus, allowedCurrent []models.MessageStatus) (int64, error)
}

// RoundRobinRepository data access for round_robin_config
type RoundRobinRepository interface {
	// FindActiveOrdered loads active rows ordered by last_assigned_at
	// ascending with nulls first (never-assigned salespeople lead)
	FindActiveOrdered(ctx context.Context) ([]models.RoundRobinConfig, error)

	// FindAll lists all rows for the dashboard
	FindAll(ctx context.Context) ([]models.RoundRobinConfig, error)

	// FindByID finds a row by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.RoundRobinConfig, error)

	// Create enrolls a salesperson
	Create(ctx context.Context, cfg *models.RoundRobinConfig) error

	// Update saves a row
	Update(ctx context.Context, cfg *models.RoundRobinConfig) error

	// Delete unenrolls a salesperson
	Delete(ctx context.Context, id uuid.UUID) error

	// RegisterAssignment applies the counter increments for one assignment
	// as a single atomic UPDATE: total +1, today's count +1 (or restarted
	// at 1 when the stored count belongs to a previous day), and
	// last_assigned_at = now.
	RegisterAssignment(ctx context.Context, salespersonID uuid.UUID, now time.Time) error
}

// NegotiationRepository data access for negotiations
type NegotiationRepository interface {
	Create(ctx context.Context, n *models.Negotiation) error
}

// LeadAssignmentRepository data access for lead_assignments
type LeadAssignmentRepository interface {
	Create(ctx context.Context, a *models.LeadAssignment) error
}

// NotificationRepository data access for notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error

	// FindByUser lists a user's notifications, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, opts FindOptions) ([]models.Notification, int64, error)
}

// InteractionLogRepository data access for lead_interactions
type InteractionLogRepository interface {
	Create(ctx context.Context, entry *models.InteractionLog) error
}
