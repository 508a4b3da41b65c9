package dto

import "github.com/google/uuid"

// ===========================================================================
// Request DTOs (Data Transfer Objects)
// Structs used to validate and parse request bodies and query strings.
// ===========================================================================

// PaginationRequest pagination for list APIs
type PaginationRequest struct {
	// Page current page number (starts at 1)
	Page int `form:"page" binding:"min=0"`

	// Limit records per page (max 100)
	Limit int `form:"limit" binding:"min=0,max=100"`
}

// SetDefaults applies default pagination values
func (p *PaginationRequest) SetDefaults() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
}

// Offset computes the database query offset
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ===========================================================================
// Instance Requests
// ===========================================================================

// CreateInstanceRequest registers a new WhatsApp line
type CreateInstanceRequest struct {
	// InstanceName slug used at the gateway; lowercase letters, digits and
	// dashes keep it URL-safe on both sides
	InstanceName string `json:"instance_name" binding:"required,min=3,max=100"`

	// UserID owning salesperson (optional for shared lines)
	UserID *uuid.UUID `json:"user_id"`
}

// ===========================================================================
// Round-Robin Requests
// ===========================================================================

// EnrollRoundRobinRequest adds a salesperson to the assignment pool
type EnrollRoundRobinRequest struct {
	// SalespersonID the user to enroll
	SalespersonID uuid.UUID `json:"salesperson_id" binding:"required"`

	// MaxLeadsPerDay optional daily cap; omit for uncapped
	MaxLeadsPerDay *int `json:"max_leads_per_day" binding:"omitempty,min=1"`
}

// UpdateRoundRobinRequest changes a pool entry
type UpdateRoundRobinRequest struct {
	// IsActive pause or resume the salesperson (nil = unchanged)
	IsActive *bool `json:"is_active"`

	// MaxLeadsPerDay new daily cap; 0 clears it (nil = unchanged)
	MaxLeadsPerDay *int `json:"max_leads_per_day" binding:"omitempty,min=0"`
}

// ===========================================================================
// Inbox Requests
// ===========================================================================

// ListContactsRequest lists the inbox
type ListContactsRequest struct {
	PaginationRequest
}

// ListMessagesRequest lists a conversation's history
type ListMessagesRequest struct {
	PaginationRequest

	// MarkRead zero the unread counter while fetching
	MarkRead bool `form:"mark_read"`
}

// ListLeadsRequest lists leads for the pipeline board
type ListLeadsRequest struct {
	PaginationRequest

	// Status filter by lifecycle status
	Status string `form:"status" binding:"omitempty,oneof=novo em_andamento convertido perdido"`
}
