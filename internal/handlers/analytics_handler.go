package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/middleware"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
	"github.com/payhuk02/payhula-sub017/internal/services"
)

// AnalyticsHandler exposes store-level aggregates
type AnalyticsHandler struct {
	payments services.PaymentService
	orders   repository.OrderRepository
	logger   *logrus.Entry
}

// NewAnalyticsHandler creates an analytics handler
func NewAnalyticsHandler(payments services.PaymentService, orders repository.OrderRepository, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		payments: payments,
		orders:   orders,
		logger:   logger.WithField("component", "analytics_handler"),
	}
}

// AnalyticsSummary combines payment stats with order aggregates
type AnalyticsSummary struct {
	Payments     *models.PaymentStats `json:"payments"`
	TotalOrders  int64                `json:"totalOrders"`
	OrderRevenue float64              `json:"orderRevenue"`
}

// GetSummary handles GET /analytics/summary. Each aggregate degrades
// independently: a failed source is logged and zeroed, the summary
// still returns.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	storeID := middleware.StoreID(c)
	summary := &AnalyticsSummary{}

	stats, err := h.payments.Stats(c.Request.Context(), storeID)
	if err != nil {
		h.logger.WithError(err).Warn("Payment stats unavailable")
		stats = &models.PaymentStats{}
	}
	summary.Payments = stats

	if count, err := h.orders.CountByStore(storeID); err != nil {
		h.logger.WithError(err).Warn("Order count unavailable")
	} else {
		summary.TotalOrders = count
	}

	if revenue, err := h.orders.SumRevenueByStore(storeID); err != nil {
		h.logger.WithError(err).Warn("Order revenue unavailable")
	} else {
		summary.OrderRevenue = revenue
	}

	respondData(c, http.StatusOK, summary)
}
