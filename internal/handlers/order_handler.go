package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/middleware"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
	"github.com/payhuk02/payhula-sub017/internal/services"
)

// OrderHandler exposes the order lifecycle over HTTP
type OrderHandler struct {
	orders   services.OrderService
	receipts services.ReceiptService
	logger   *logrus.Entry
}

// NewOrderHandler creates an order handler
func NewOrderHandler(orders services.OrderService, receipts services.ReceiptService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		receipts: receipts,
		logger:   logger.WithField("component", "order_handler"),
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	resp, err := h.orders.CreateOrder(c.Request.Context(), middleware.StoreID(c), &req)
	if err != nil {
		h.logger.WithError(err).Warn("Order creation failed")
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, resp)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "order ID must be a UUID"})
		return
	}

	order, err := h.orders.GetOrder(id, middleware.StoreID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// GetOrderByNumber handles GET /orders/number/:number
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	order, err := h.orders.GetOrderByNumber(c.Param("number"), middleware.StoreID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, limit := parsePagination(c)

	filters := repository.OrderFilters{
		StoreID: middleware.StoreID(c),
		Page:    page,
		Limit:   limit,
	}
	if v := c.Query("customerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_filter", Message: "customerId must be a UUID"})
			return
		}
		filters.CustomerID = &id
	}
	if v := c.Query("paymentStatus"); v != "" {
		status := models.OrderPaymentStatus(v)
		filters.PaymentStatus = &status
	}
	if v := c.Query("paymentType"); v != "" {
		paymentType := models.PaymentType(v)
		filters.PaymentType = &paymentType
	}

	orders, total, err := h.orders.ListOrders(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, orders, page, limit, total)
}

// UpdateFulfillment handles PATCH /orders/:id/fulfillment
func (h *OrderHandler) UpdateFulfillment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "order ID must be a UUID"})
		return
	}

	var req struct {
		Status models.FulfillmentStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	order, err := h.orders.UpdateFulfillment(c.Request.Context(), id, middleware.StoreID(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// GetReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "order ID must be a UUID"})
		return
	}

	order, err := h.orders.GetOrder(id, middleware.StoreID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := h.receipts.GenerateReceipt(order)
	if err != nil {
		h.logger.WithError(err).Error("Receipt generation failed")
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", order.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
