package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/middleware"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// exportPageSize bounds how many orders one export request streams
const exportPageSize = 1000

// ExportHandler streams store data as CSV
type ExportHandler struct {
	orders repository.OrderRepository
	logger *logrus.Entry
}

// NewExportHandler creates an export handler
func NewExportHandler(orders repository.OrderRepository, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{
		orders: orders,
		logger: logger.WithField("component", "export_handler"),
	}
}

// ExportOrders handles GET /export/orders
func (h *ExportHandler) ExportOrders(c *gin.Context) {
	storeID := middleware.StoreID(c)

	orders, _, err := h.orders.List(repository.OrderFilters{
		StoreID: storeID,
		Page:    1,
		Limit:   exportPageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write([]string{
		"order_number", "customer_id", "total_amount", "currency",
		"payment_status", "payment_type", "percentage_paid", "remaining_amount",
		"fulfillment_status", "created_at",
	})

	for _, order := range orders {
		record := []string{
			order.OrderNumber,
			order.CustomerID.String(),
			strconv.FormatFloat(order.TotalAmount, 'f', 2, 64),
			order.Currency,
			string(order.PaymentStatus),
			string(order.PaymentType),
			strconv.FormatFloat(order.PercentagePaid, 'f', 2, 64),
			strconv.FormatFloat(order.RemainingAmount, 'f', 2, 64),
			string(order.FulfillmentStatus),
			order.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			h.logger.WithError(err).Error("CSV write failed mid-export")
			return
		}
	}
}
