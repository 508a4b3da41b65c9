package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ===========================================================================
// Request ID Middleware
// Attaches a unique ID to every request for tracking and debugging.
// The ID lives in the gin context and is echoed in the response header.
// ===========================================================================

const (
	// RequestIDKey gin context key for the request ID
	RequestIDKey = "request_id"

	// RequestIDHeader header carrying the request ID
	RequestIDHeader = "X-Request-ID"
)

// RequestID attaches a unique ID to each request. A client-provided
// X-Request-ID is honored; otherwise a fresh UUID is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID reads the request ID from the gin context.
// Returns empty string when absent.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}
