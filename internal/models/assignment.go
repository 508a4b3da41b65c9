package models

import (
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// LeadAssignment
// Append-only audit trail of who got which lead and why.
// ===========================================================================

// AssignmentType how the assignment was made
type AssignmentType string

const (
	// AssignmentAuto produced by the round-robin assigner
	AssignmentAuto AssignmentType = "auto"

	// AssignmentManual a manager reassigned the lead by hand
	AssignmentManual AssignmentType = "manual"
)

// LeadAssignment records one assignment of a lead to a salesperson
type LeadAssignment struct {
	BaseModel

	// LeadID assigned lead
	LeadID uuid.UUID `gorm:"type:uuid;not null;index" json:"lead_id"`

	// UserID salesperson who received the lead
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	// AssignmentType auto or manual
	AssignmentType AssignmentType `gorm:"size:20;not null;default:'auto'" json:"assignment_type"`

	// Reason short free-text reason ("round-robin", "manager override")
	Reason string `gorm:"size:200" json:"reason"`

	// AssignedAt when the assignment happened
	AssignedAt time.Time `gorm:"not null;default:now()" json:"assigned_at"`

	// IsActive false once the lead is reassigned
	IsActive bool `gorm:"default:true;index" json:"is_active"`

	// Relations
	Lead Lead `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName returns the table name
func (LeadAssignment) TableName() string {
	return "lead_assignments"
}
