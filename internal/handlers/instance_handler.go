package handlers

import (
	"net/http"

	"dealerhub-gin/internal/dto"
	apperrors "dealerhub-gin/internal/errors"
	"dealerhub-gin/internal/middleware"
	"dealerhub-gin/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ===========================================================================
// Instance Handler
// Lifecycle API for WhatsApp lines: onboarding, pairing QR, state refresh,
// logout and removal.
// ===========================================================================

// InstanceHandler handles instance endpoints
type InstanceHandler struct {
	instances services.InstanceService
	logger    *zap.Logger
}

// NewInstanceHandler creates an InstanceHandler
func NewInstanceHandler(instances services.InstanceService, logger *zap.Logger) *InstanceHandler {
	return &InstanceHandler{instances: instances, logger: logger}
}

// handleError logs the error and maps it to an HTTP response
func (h *InstanceHandler) handleError(c *gin.Context, err error) {
	h.logger.Error("instance request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(apperrors.StatusCode(err), dto.ErrorFromErr(err))
}

// List lists all instances
// GET /api/v1/instances
func (h *InstanceHandler) List(c *gin.Context) {
	instances, err := h.instances.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(instances))
}

// Get returns one instance
// GET /api/v1/instances/:id
func (h *InstanceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid instance id"))
		return
	}

	instance, err := h.instances.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(instance))
}

// Create onboards a new instance
// POST /api/v1/instances
func (h *InstanceHandler) Create(c *gin.Context) {
	var body dto.CreateInstanceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	instance, err := h.instances.Create(c.Request.Context(), body.InstanceName, body.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(instance))
}

// GetQR fetches a fresh pairing QR
// GET /api/v1/instances/:id/qr
func (h *InstanceHandler) GetQR(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid instance id"))
		return
	}

	instance, err := h.instances.GetQR(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(gin.H{
		"instance_name": instance.InstanceName,
		"status":        instance.Status,
		"qr_code":       instance.QRCode,
		"qr_expires_at": instance.QRExpiresAt,
	}))
}

// RefreshState polls the gateway and mirrors the connection state
// POST /api/v1/instances/:id/refresh
func (h *InstanceHandler) RefreshState(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid instance id"))
		return
	}

	instance, err := h.instances.RefreshState(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(instance))
}

// Logout terminates the session
// POST /api/v1/instances/:id/logout
func (h *InstanceHandler) Logout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid instance id"))
		return
	}

	if err := h.instances.Logout(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(nil))
}

// Delete removes the instance
// DELETE /api/v1/instances/:id
func (h *InstanceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid instance id"))
		return
	}

	if err := h.instances.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(nil))
}

// ===========================================================================
// Route Registration
// ===========================================================================

// RegisterRoutes registers routes
func (h *InstanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	instances := rg.Group("/instances")
	{
		instances.GET("", h.List)
		instances.POST("", h.Create)
		instances.GET("/:id", h.Get)
		instances.GET("/:id/qr", h.GetQR)
		instances.POST("/:id/refresh", h.RefreshState)
		instances.POST("/:id/logout", h.Logout)
		instances.DELETE("/:id", h.Delete)
	}
}
