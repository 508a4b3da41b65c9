package handlers

import (
	"net/http"

	"dealerhub-gin/internal/dto"
	apperrors "dealerhub-gin/internal/errors"
	"dealerhub-gin/internal/middleware"
	"dealerhub-gin/internal/repositories"
	"dealerhub-gin/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ===========================================================================
// Chat Handler
// Read API for the CRM: inbox, conversation history, leads and
// notifications.
// ===========================================================================

// ChatHandler handles inbox endpoints
type ChatHandler struct {
	chat   services.ChatService
	logger *zap.Logger
}

// NewChatHandler creates a ChatHandler
func NewChatHandler(chat services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// handleError logs the error and maps it to an HTTP response
func (h *ChatHandler) handleError(c *gin.Context, err error) {
	h.logger.Error("chat request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(apperrors.StatusCode(err), dto.ErrorFromErr(err))
}

// ListContacts returns the inbox ordered by latest activity
// GET /api/v1/contacts?page=1&limit=20
func (h *ChatHandler) ListContacts(c *gin.Context) {
	var query dto.ListContactsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}
	query.SetDefaults()

	opts := repositories.FindOptions{
		Offset:   query.Offset(),
		Limit:    query.Limit,
		OrderBy:  "last_message_at",
		OrderDir: "desc",
	}

	contacts, total, err := h.chat.ListContacts(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessWithMeta(contacts, dto.NewMeta(query.Page, query.Limit, total)))
}

// ListMessages returns a contact's history
// GET /api/v1/contacts/:id/messages?page=1&limit=50&mark_read=true
func (h *ChatHandler) ListMessages(c *gin.Context) {
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid contact id"))
		return
	}

	var query dto.ListMessagesRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}
	query.SetDefaults()

	opts := repositories.FindOptions{
		Offset:   query.Offset(),
		Limit:    query.Limit,
		OrderBy:  "timestamp",
		OrderDir: "asc",
	}

	messages, total, err := h.chat.GetMessages(c.Request.Context(), contactID, opts, query.MarkRead)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessWithMeta(messages, dto.NewMeta(query.Page, query.Limit, total)))
}

// ListLeads returns leads for the pipeline board
// GET /api/v1/leads?status=novo&page=1&limit=20
func (h *ChatHandler) ListLeads(c *gin.Context) {
	var query dto.ListLeadsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}
	query.SetDefaults()

	opts := repositories.FindOptions{
		Offset:   query.Offset(),
		Limit:    query.Limit,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
	if query.Status != "" {
		opts.Filters["status"] = query.Status
	}

	leads, total, err := h.chat.ListLeads(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessWithMeta(leads, dto.NewMeta(query.Page, query.Limit, total)))
}

// GetLead returns one lead
// GET /api/v1/leads/:id
func (h *ChatHandler) GetLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "invalid lead id"))
		return
	}

	lead, err := h.chat.GetLead(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success(lead))
}

// ListNotifications returns a user's notifications
// GET /api/v1/notifications?user_id=xxx&page=1&limit=20
func (h *ChatHandler) ListNotifications(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "user_id is required"))
		return
	}

	var query dto.PaginationRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}
	query.SetDefaults()

	opts := repositories.FindOptions{
		Offset:   query.Offset(),
		Limit:    query.Limit,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}

	notifications, total, err := h.chat.ListNotifications(c.Request.Context(), userID, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessWithMeta(notifications, dto.NewMeta(query.Page, query.Limit, total)))
}

// ===========================================================================
// Route Registration
// ===========================================================================

// RegisterRoutes registers routes
func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/contacts", h.ListContacts)
	rg.GET("/contacts/:id/messages", h.ListMessages)

	leads := rg.Group("/leads")
	{
		leads.GET("", h.ListLeads)
		leads.GET("/:id", h.GetLead)
	}

	rg.GET("/notifications", h.ListNotifications)
}
