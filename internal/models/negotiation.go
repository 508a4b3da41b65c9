package models

import (
	"github.com/google/uuid"
)

// ===========================================================================
// Negotiation
// Opened alongside a new lead so the sales flow has somewhere to live.
// ===========================================================================

// NegotiationStatus lifecycle of a negotiation
type NegotiationStatus string

const (
	NegotiationAberta    NegotiationStatus = "aberta"
	NegotiationProposta  NegotiationStatus = "proposta"
	NegotiationFechada   NegotiationStatus = "fechada"
	NegotiationCancelada NegotiationStatus = "cancelada"
)

// Negotiation represents an open sales negotiation for a lead
type Negotiation struct {
	BaseModel

	// LeadID the prospect being negotiated with
	LeadID uuid.UUID `gorm:"type:uuid;not null;index" json:"lead_id"`

	// SalespersonID responsible salesperson (nullable for unassigned leads)
	SalespersonID *uuid.UUID `gorm:"type:uuid;index" json:"salesperson_id,omitempty"`

	// Status negotiation stage
	Status NegotiationStatus `gorm:"size:50;not null;default:'aberta'" json:"status"`

	// Relations
	Lead        Lead  `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Salesperson *User `gorm:"foreignKey:SalespersonID" json:"salesperson,omitempty"`
}

// TableName returns the table name
func (Negotiation) TableName() string {
	return "negotiations"
}
