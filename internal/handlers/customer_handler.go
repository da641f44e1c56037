package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/middleware"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// CustomerHandler exposes customer records and notification preferences
type CustomerHandler struct {
	customers repository.CustomerRepository
	alerts    repository.AlertRepository
	logger    *logrus.Entry
}

// NewCustomerHandler creates a customer handler
func NewCustomerHandler(customers repository.CustomerRepository, alerts repository.AlertRepository, logger *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		alerts:    alerts,
		logger:    logger.WithField("component", "customer_handler"),
	}
}

// ListCustomers handles GET /customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	page, limit := parsePagination(c)

	customers, total, err := h.customers.List(middleware.StoreID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, customers, page, limit, total)
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "customer ID must be a UUID"})
		return
	}

	customer, err := h.customers.GetByID(id, middleware.StoreID(c))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "customer not found"})
			return
		}
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, customer)
}

// UpdatePreferences handles PATCH /customers/:id/preferences
func (h *CustomerHandler) UpdatePreferences(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "customer ID must be a UUID"})
		return
	}

	var req struct {
		NotifyShipments *bool `json:"notifyShipments"`
		NotifyReturns   *bool `json:"notifyReturns"`
		NotifyMarketing *bool `json:"notifyMarketing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	customer, err := h.customers.GetByID(id, middleware.StoreID(c))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "customer not found"})
			return
		}
		respondError(c, err)
		return
	}

	if req.NotifyShipments != nil {
		customer.NotifyShipments = *req.NotifyShipments
	}
	if req.NotifyReturns != nil {
		customer.NotifyReturns = *req.NotifyReturns
	}
	if req.NotifyMarketing != nil {
		customer.NotifyMarketing = *req.NotifyMarketing
	}

	if err := h.customers.Update(customer); err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, customer)
}

// CreatePriceAlert handles POST /customers/:id/price-alerts
func (h *CustomerHandler) CreatePriceAlert(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "customer ID must be a UUID"})
		return
	}

	var req struct {
		ProductID   uuid.UUID `json:"productId" binding:"required"`
		TargetPrice float64   `json:"targetPrice"`
		DropPercent float64   `json:"dropPercent"`
		Channels    []string  `json:"channels"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if req.TargetPrice <= 0 && req.DropPercent <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "targetPrice or dropPercent is required"})
		return
	}

	alert := &models.PriceAlert{
		StoreID:     middleware.StoreID(c),
		ProductID:   req.ProductID,
		CustomerID:  customerID,
		TargetPrice: req.TargetPrice,
		DropPercent: req.DropPercent,
		Channels:    req.Channels,
		IsActive:    true,
	}
	if err := h.alerts.CreatePriceAlert(alert); err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, alert)
}

// CreateStockAlert handles POST /customers/:id/stock-alerts
func (h *CustomerHandler) CreateStockAlert(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "customer ID must be a UUID"})
		return
	}

	var req struct {
		ProductID           uuid.UUID `json:"productId" binding:"required"`
		NotifyOnBackInStock *bool     `json:"notifyOnBackInStock"`
		NotifyOnLowStock    bool      `json:"notifyOnLowStock"`
		Channels            []string  `json:"channels"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	alert := &models.StockAlert{
		StoreID:             middleware.StoreID(c),
		ProductID:           req.ProductID,
		CustomerID:          customerID,
		NotifyOnBackInStock: true,
		NotifyOnLowStock:    req.NotifyOnLowStock,
		Channels:            req.Channels,
		IsActive:            true,
	}
	if req.NotifyOnBackInStock != nil {
		alert.NotifyOnBackInStock = *req.NotifyOnBackInStock
	}
	if err := h.alerts.CreateStockAlert(alert); err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, alert)
}
