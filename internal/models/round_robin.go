package models

import (
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// RoundRobinConfig
// One row per salesperson enrolled in lead distribution. The assigner
// reads all active rows ordered by last_assigned_at (nulls first) and
// increments the counters in a single atomic UPDATE.
// ===========================================================================

// RoundRobinConfig enrolls a salesperson in automatic lead distribution
type RoundRobinConfig struct {
	BaseModel

	// SalespersonID the enrolled user
	SalespersonID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"salesperson_id"`

	// IsActive inactive rows never receive leads
	IsActive bool `gorm:"default:true;index" json:"is_active"`

	// Priority reserved for manual ordering tweaks on the dashboard
	Priority int `gorm:"not null;default:0" json:"priority"`

	// MaxLeadsPerDay optional daily cap; nil means uncapped
	MaxLeadsPerDay *int `json:"max_leads_per_day,omitempty"`

	// CurrentLeadsToday today's running count. Stale when LastAssignedAt
	// is from a previous day; the assigner treats it as zero then and the
	// stored value is corrected lazily on the next assignment.
	CurrentLeadsToday int `gorm:"not null;default:0" json:"current_leads_today"`

	// LastAssignedAt when this salesperson last received a lead
	LastAssignedAt *time.Time `gorm:"index" json:"last_assigned_at,omitempty"`

	// TotalLeadsAssigned lifetime counter
	TotalLeadsAssigned int `gorm:"not null;default:0" json:"total_leads_assigned"`

	// Relations
	Salesperson User `gorm:"foreignKey:SalespersonID" json:"salesperson,omitempty"`
}

// TableName returns the table name
func (RoundRobinConfig) TableName() string {
	return "round_robin_config"
}

// TodayCount returns the count that matters for cap checks at "now":
// zero when the stored counter belongs to a previous day.
func (c *RoundRobinConfig) TodayCount(now time.Time) int {
	if c.LastAssignedAt == nil {
		return 0
	}
	ly, lm, ld := c.LastAssignedAt.Date()
	ny, nm, nd := now.Date()
	if ly != ny || lm != nm || ld != nd {
		return 0
	}
	return c.CurrentLeadsToday
}

// AtCap reports whether the salesperson hit their daily cap at "now"
func (c *RoundRobinConfig) AtCap(now time.Time) bool {
	if c.MaxLeadsPerDay == nil {
		return false
	}
	return c.TodayCount(now) >= *c.MaxLeadsPerDay
}
