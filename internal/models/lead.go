package models

import (
	"github.com/google/uuid"
)

// ===========================================================================
// Lead
// A sales prospect. Created when an inbound message arrives from a phone
// with no existing lead; assignment happens through the round-robin pool.
// ===========================================================================

// LeadStatus lifecycle of a prospect
type LeadStatus string

const (
	// LeadNovo freshly created, nobody talked to them yet
	LeadNovo LeadStatus = "novo"

	// LeadEmAndamento a salesperson is working the lead
	LeadEmAndamento LeadStatus = "em_andamento"

	// LeadConvertido deal closed
	LeadConvertido LeadStatus = "convertido"

	// LeadPerdido prospect lost
	LeadPerdido LeadStatus = "perdido"
)

// LeadSource where the lead came from
type LeadSource string

const (
	SourceWhatsApp LeadSource = "whatsapp"
	SourceSite     LeadSource = "site"
	SourceIndicacao LeadSource = "indicacao"
)

// Lead represents a sales prospect
type Lead struct {
	BaseModel

	// Phone canonical phone the lead is keyed by
	Phone string `gorm:"size:50;not null;index" json:"phone"`

	// Name display name
	Name string `gorm:"size:255;not null" json:"name"`

	// Source acquisition channel
	Source LeadSource `gorm:"size:50;not null;default:'whatsapp'" json:"source"`

	// Status lifecycle status
	Status LeadStatus `gorm:"size:50;not null;default:'novo';index" json:"status"`

	// AssignedTo salesperson responsible for the lead (nullable)
	AssignedTo *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to,omitempty"`

	// Relations
	AssignedUser *User         `gorm:"foreignKey:AssignedTo" json:"assigned_user,omitempty"`
	Negotiations []Negotiation `gorm:"foreignKey:LeadID" json:"negotiations,omitempty"`
}

// TableName returns the table name
func (Lead) TableName() string {
	return "leads"
}

// IsAssigned reports whether a salesperson owns the lead
func (l *Lead) IsAssigned() bool { return l.AssignedTo != nil }
