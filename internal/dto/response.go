package dto

import (
	"math"

	apperrors "dealerhub-gin/internal/errors"
)

// ===========================================================================
// Response DTOs (Data Transfer Objects)
// Standardized response envelope for every API endpoint.
// ===========================================================================

// Response is the standard envelope for all API responses
type Response struct {
	// Success whether the request succeeded
	Success bool `json:"success"`

	// Data payload on success
	Data interface{} `json:"data,omitempty"`

	// Error error details on failure
	Error *APIError `json:"error,omitempty"`

	// Meta pagination info for list endpoints
	Meta *Meta `json:"meta,omitempty"`
}

// APIError is the standard error shape
type APIError struct {
	// Code machine-readable code (e.g. "NOT_FOUND", "INVALID_INPUT")
	Code string `json:"code"`

	// Message human-readable detail
	Message string `json:"message"`
}

// Meta pagination info
type Meta struct {
	// Total total records
	Total int64 `json:"total"`

	// Page current page
	Page int `json:"page"`

	// Limit records per page
	Limit int `json:"limit"`

	// TotalPages total pages
	TotalPages int `json:"total_pages"`
}

// NewMeta builds Meta from pagination info
func NewMeta(page, limit int, total int64) *Meta {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return &Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ===========================================================================
// Response Builders
// ===========================================================================

// Success builds a success response
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// SuccessWithMeta builds a success response with pagination info
func SuccessWithMeta(data interface{}, meta *Meta) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	}
}

// Error builds an error response
func Error(code, message string) Response {
	return Response{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorFromErr builds an error response from an error, mapping the
// sentinel chain to its machine-readable code
func ErrorFromErr(err error) Response {
	return Response{
		Success: false,
		Error: &APIError{
			Code:    apperrors.ErrorCode(err),
			Message: err.Error(),
		},
	}
}
