package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/middleware"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
	"github.com/payhuk02/payhula-sub017/internal/services"
)

// PaymentHandler exposes payment records and hold operations
type PaymentHandler struct {
	payments services.PaymentService
	logger   *logrus.Entry
}

// NewPaymentHandler creates a payment handler
func NewPaymentHandler(payments services.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		logger:   logger.WithField("component", "payment_handler"),
	}
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "payment ID must be a UUID"})
		return
	}

	payment, err := h.payments.GetPayment(id, middleware.StoreID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, payment)
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	page, limit := parsePagination(c)

	filters := repository.PaymentFilters{
		StoreID: middleware.StoreID(c),
		Page:    page,
		Limit:   limit,
	}
	if v := c.Query("status"); v != "" {
		status := models.PaymentStatus(v)
		filters.Status = &status
	}
	if v := c.Query("paymentType"); v != "" {
		paymentType := models.PaymentType(v)
		filters.PaymentType = &paymentType
	}

	payments, total, err := h.payments.ListPayments(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, payments, page, limit, total)
}

// ConfirmDelivery handles POST /payments/:id/confirm-delivery
func (h *PaymentHandler) ConfirmDelivery(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "payment ID must be a UUID"})
		return
	}

	var req struct {
		ConfirmedBy string `json:"confirmedBy"`
	}
	_ = c.ShouldBindJSON(&req)

	payment, err := h.payments.ConfirmDelivery(c.Request.Context(), id, middleware.StoreID(c), req.ConfirmedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, payment)
}

// ReleasePayment handles POST /payments/:id/release
func (h *PaymentHandler) ReleasePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "payment ID must be a UUID"})
		return
	}

	var req struct {
		ReleasedBy string `json:"releasedBy"`
	}
	_ = c.ShouldBindJSON(&req)

	payment, err := h.payments.ReleasePayment(c.Request.Context(), id, middleware.StoreID(c), req.ReleasedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, payment)
}

// OpenDispute handles POST /payments/:id/disputes
func (h *PaymentHandler) OpenDispute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "payment ID must be a UUID"})
		return
	}

	var req struct {
		Reason   string `json:"reason" binding:"required"`
		OpenedBy string `json:"openedBy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	dispute, err := h.payments.OpenDispute(c.Request.Context(), id, middleware.StoreID(c), req.Reason, req.OpenedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, dispute)
}
