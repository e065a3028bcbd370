package handler

import (
	"io"
	"net/http"

	"paisaback/internal/repository"
	"paisaback/internal/service"
	"paisaback/pkg/affiliate"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives affiliate network conversion webhooks. Networks
// retry on anything but 200, so every benign failure acknowledges; only
// an unexpected internal error returns 5xx (which is the retry we want).
type WebhookHandler struct {
	conversionSvc *service.ConversionService
	registry      *affiliate.Registry
	eventRepo     *repository.WebhookEventRepository
	log           *zap.Logger
}

func NewWebhookHandler(conversionSvc *service.ConversionService, registry *affiliate.Registry, eventRepo *repository.WebhookEventRepository, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{conversionSvc: conversionSvc, registry: registry, eventRepo: eventRepo, log: log}
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	network := c.Param("network")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		// Unreadable body still acknowledges; the event is flagged inside
		// the service on the next retry if the network resends.
		h.log.Warn("webhook body read", zap.String("network", network), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	signature := ""
	if adapter, aerr := h.registry.Get(network); aerr == nil {
		signature = c.GetHeader(adapter.SignatureHeader())
	}

	if err := h.conversionSvc.HandleWebhook(c.Request.Context(), network, body, signature, c.ClientIP()); err != nil {
		h.log.Error("webhook processing", zap.String("network", network), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// ListFlagged returns webhook events held for manual reconciliation.
// Admin only.
func (h *WebhookHandler) ListFlagged(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.eventRepo.ListFlagged(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}
