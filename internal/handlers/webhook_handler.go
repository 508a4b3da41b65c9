package handlers

import (
	"net/http"

	"dealerhub-gin/internal/dto"
	"dealerhub-gin/internal/gateway"
	"dealerhub-gin/internal/middleware"
	"dealerhub-gin/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ===========================================================================
// Webhook Handler
// Receives events from the messaging gateway. The gateway retries on
// non-2xx, so this endpoint acknowledges everything it could parse, even
// events the pipeline drops; only unexpected processing failures return
// 500 and earn a redelivery.
// ===========================================================================

// WebhookHandler handles gateway webhook callbacks
type WebhookHandler struct {
	processor services.Processor
	logger    *zap.Logger
}

// NewWebhookHandler creates a WebhookHandler
func NewWebhookHandler(processor services.Processor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, logger: logger}
}

// Receive handles one webhook delivery
// POST /api/v1/webhook/whatsapp
func (h *WebhookHandler) Receive(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	var event gateway.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		// Unparseable body: retrying will not fix it, ack and move on
		h.logger.Warn("unparseable webhook payload",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	result, err := h.processor.HandleEvent(c.Request.Context(), &event)
	if err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("request_id", requestID),
			zap.String("event", event.Event),
			zap.String("instance", event.Instance),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.Error("INTERNAL_ERROR", err.Error()))
		return
	}

	h.logger.Debug("webhook processed",
		zap.String("request_id", requestID),
		zap.String("event", event.Event),
		zap.String("kind", string(result.Kind)),
		zap.Bool("handled", result.Handled),
		zap.Bool("duplicate", result.Duplicate),
	)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterRoutes registers routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook/whatsapp", h.Receive)
}
