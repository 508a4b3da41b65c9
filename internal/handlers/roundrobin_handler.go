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
// Round-Robin Handler
// Dashboard API for the lead assignment pool.
// ===========================================================================

// RoundRobinHandler handles assignment pool endpoints
type RoundRobinHandler struct {
	pool   services.RoundRobinService
	logger *zap.Logger
}

// NewRoundRobinHandler creates a RoundRobinHandler
func NewRoundRobinHandler(pool services.RoundRobinService, logger *zap.Logger) *RoundRobinHandler {
	return &RoundRobinHandler{pool: pool, logger: logger}
}

// handleError logs the error and maps it to an HTTP response
func (h *RoundRobinHandler) handleError(c *gin.Context, err error) {
	h.logger.Error("round-robin request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(apperrors.StatusCode(err), dto.ErrorFromErr(err))
}

// List returns the pool with effective daily counts
// GET /api/v1/round-robin
func (h *RoundRobinHandler) List(c *gin.Context) {
	entries, err := h.pool.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(entries))
}

// Enroll adds a salesperson to the pool
// POST /api/v1/round-robin
func (h *RoundRobinHandler) Enroll(c *gin.Context) {
	var body dto.EnrollRoundRobinRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	cfg, err := h.pool.Enroll(c.Request.Context(), body.SalespersonID, body.MaxLeadsPerDay)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Success(cfg))
}

// Update changes a pool entry's cap or active flag
// PATCH /api/v1/round-robin/:id
func (h *RoundRobinHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid entry id"))
		return
	}

	var body dto.UpdateRoundRobinRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	cfg, err := h.pool.Update(c.Request.Context(), id, body.IsActive, body.MaxLeadsPerDay)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(cfg))
}

// Unenroll removes a salesperson from the pool
// DELETE /api/v1/round-robin/:id
func (h *RoundRobinHandler) Unenroll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid entry id"))
		return
	}

	if err := h.pool.Unenroll(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(nil))
}

// ===========================================================================
// Route Registration
// ===========================================================================

// RegisterRoutes registers routes
func (h *RoundRobinHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pool := rg.Group("/round-robin")
	{
		pool.GET("", h.List)
		pool.POST("", h.Enroll)
		pool.PATCH("/:id", h.Update)
		pool.DELETE("/:id", h.Unenroll)
	}
}
