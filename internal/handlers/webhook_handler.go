package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/gateway"
	"github.com/payhuk02/payhula-sub017/internal/middleware"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
	"github.com/payhuk02/payhula-sub017/internal/services"
)

// WebhookHandler manages merchant webhook endpoints and receives
// payment status callbacks from the gateways
type WebhookHandler struct {
	webhooks repository.WebhookRepository
	payments services.PaymentService
	gateways services.GatewayProvider
	logger   *logrus.Entry
}

// NewWebhookHandler creates a webhook handler
func NewWebhookHandler(webhooks repository.WebhookRepository, payments services.PaymentService, gateways services.GatewayProvider, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhooks: webhooks,
		payments: payments,
		gateways: gateways,
		logger:   logger.WithField("component", "webhook_handler"),
	}
}

// CreateEndpoint handles POST /webhooks
func (h *WebhookHandler) CreateEndpoint(c *gin.Context) {
	var req struct {
		URL    string   `json:"url" binding:"required,url"`
		Events []string `json:"events"`
		Secret string   `json:"secret"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	endpoint := &models.WebhookEndpoint{
		StoreID:  middleware.StoreID(c),
		URL:      req.URL,
		Events:   req.Events,
		Secret:   req.Secret,
		IsActive: true,
	}
	if err := h.webhooks.CreateEndpoint(endpoint); err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, endpoint)
}

// ListEndpoints handles GET /webhooks
func (h *WebhookHandler) ListEndpoints(c *gin.Context) {
	endpoints, err := h.webhooks.ListEndpoints(middleware.StoreID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, endpoints)
}

// DeleteEndpoint handles DELETE /webhooks/:id
func (h *WebhookHandler) DeleteEndpoint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "endpoint ID must be a UUID"})
		return
	}

	if err := h.webhooks.DeleteEndpoint(id, middleware.StoreID(c)); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "webhook endpoint not found"})
			return
		}
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PaymentCallback handles POST /webhooks/payments/:provider, the
// inbound gateway notification that moves payments out of pending.
// Unauthenticated route; trust comes from the signature check.
func (h *WebhookHandler) PaymentCallback(c *gin.Context) {
	provider := models.PaymentProvider(c.Param("provider"))
	gw, err := h.gateways.Get(provider)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown_provider", Message: "unsupported payment provider"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "unreadable payload"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if provider == models.ProviderRazorpay {
		signature = c.GetHeader("X-Razorpay-Signature")
	}
	if err := gw.VerifyWebhook(payload, signature); err != nil {
		h.logger.WithError(err).WithField("provider", provider).Warn("Webhook signature rejected")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_signature", Message: "webhook signature verification failed"})
		return
	}

	event, err := gw.ProcessWebhook(c.Request.Context(), payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_payload", Message: err.Error()})
		return
	}

	switch event.EventType {
	case gateway.WebhookPaymentSucceeded:
		if _, err := h.payments.MarkCompleted(c.Request.Context(), event.TransactionID); err != nil {
			h.logger.WithError(err).WithField("transaction_id", event.TransactionID).
				Warn("Failed to apply payment success callback")
		}
	case gateway.WebhookPaymentFailed:
		if _, err := h.payments.MarkFailed(c.Request.Context(), event.TransactionID, "gateway reported failure"); err != nil {
			h.logger.WithError(err).WithField("transaction_id", event.TransactionID).
				Warn("Failed to apply payment failure callback")
		}
	default:
		h.logger.WithField("provider", provider).Debug("Ignoring unrecognized webhook event")
	}

	// Always 200: gateways retry non-2xx responses aggressively
	c.JSON(http.StatusOK, gin.H{"received": true})
}
