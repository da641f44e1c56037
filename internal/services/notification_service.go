package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/clients"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// NotificationService runs the four customer notification pipelines:
// price drops, stock transitions, shipment updates and return updates.
// All sends are best effort; failures are logged, never propagated.
type NotificationService interface {
	HandlePriceChange(ctx context.Context, product *models.Product, oldPrice, newPrice float64)
	HandleStockChange(ctx context.Context, product *models.Product, oldQty, newQty int)
	NotifyShipment(ctx context.Context, order *models.Order, status string)
	NotifyReturn(ctx context.Context, order *models.Order, status string)
}

type notificationService struct {
	alertRepo    repository.AlertRepository
	customerRepo repository.CustomerRepository
	client       clients.NotificationClient
	logger       *logrus.Entry
	now          func() time.Time
}

// NewNotificationService creates a notification service
func NewNotificationService(alertRepo repository.AlertRepository, customerRepo repository.CustomerRepository, client clients.NotificationClient, logger *logrus.Logger) NotificationService {
	return &notificationService{
		alertRepo:    alertRepo,
		customerRepo: customerRepo,
		client:       client,
		logger:       logger.WithField("component", "notification_service"),
		now:          time.Now,
	}
}

// HandlePriceChange fires price alerts whose condition the new price
// satisfies. Each alert fires at most once per calendar day.
func (s *notificationService) HandlePriceChange(ctx context.Context, product *models.Product, oldPrice, newPrice float64) {
	if newPrice >= oldPrice {
		return
	}

	log := s.logger.WithFields(logrus.Fields{"product_id": product.ID, "old": oldPrice, "new": newPrice})

	alerts, err := s.alertRepo.ActivePriceAlerts(product.ID, product.StoreID)
	if err != nil {
		log.WithError(err).Error("Failed to load price alerts")
		return
	}

	now := s.now()
	for i := range alerts {
		alert := &alerts[i]
		if alert.NotifiedToday(now) {
			continue
		}
		if !priceAlertTriggered(alert, oldPrice, newPrice) {
			continue
		}

		customer, err := s.customerRepo.GetByID(alert.CustomerID, product.StoreID)
		if err != nil {
			log.WithError(err).WithField("alert_id", alert.ID).Warn("Price alert subscriber not found")
			continue
		}

		err = s.client.SendPriceAlert(ctx, &clients.PriceAlertNotification{
			StoreID:        product.StoreID,
			RecipientEmail: customer.Email,
			ProductName:    product.Name,
			OldPrice:       oldPrice,
			NewPrice:       newPrice,
			Currency:       product.Currency,
		})
		if err != nil {
			log.WithError(err).WithField("alert_id", alert.ID).Warn("Price alert send failed")
			continue
		}

		if err := s.alertRepo.MarkPriceAlertNotified(alert.ID, now); err != nil {
			log.WithError(err).WithField("alert_id", alert.ID).Warn("Failed to stamp price alert")
		}
	}
}

// priceAlertTriggered evaluates the alert condition against the change
func priceAlertTriggered(alert *models.PriceAlert, oldPrice, newPrice float64) bool {
	if alert.TargetPrice > 0 && newPrice <= alert.TargetPrice {
		return true
	}
	if alert.DropPercent > 0 && oldPrice > 0 {
		drop := (oldPrice - newPrice) / oldPrice * 100
		if drop >= alert.DropPercent {
			return true
		}
	}
	return false
}

// HandleStockChange fires stock alerts on the two transitions customers
// care about: out of stock to back in stock, and out of stock to low
// stock. All other level changes are ignored.
func (s *notificationService) HandleStockChange(ctx context.Context, product *models.Product, oldQty, newQty int) {
	oldLevel := models.ClassifyStock(oldQty)
	newLevel := models.ClassifyStock(newQty)

	if oldLevel != models.StockOut || newLevel == models.StockOut {
		return
	}

	transition := "out_to_in"
	if newLevel == models.StockLow {
		transition = "out_to_low"
	}

	log := s.logger.WithFields(logrus.Fields{"product_id": product.ID, "transition": transition})

	alerts, err := s.alertRepo.ActiveStockAlerts(product.ID, product.StoreID)
	if err != nil {
		log.WithError(err).Error("Failed to load stock alerts")
		return
	}

	now := s.now()
	for i := range alerts {
		alert := &alerts[i]
		if alert.NotifiedToday(now) {
			continue
		}
		if transition == "out_to_in" && !alert.NotifyOnBackInStock {
			continue
		}
		if transition == "out_to_low" && !alert.NotifyOnLowStock {
			continue
		}

		customer, err := s.customerRepo.GetByID(alert.CustomerID, product.StoreID)
		if err != nil {
			log.WithError(err).WithField("alert_id", alert.ID).Warn("Stock alert subscriber not found")
			continue
		}

		err = s.client.SendStockAlert(ctx, &clients.StockAlertNotification{
			StoreID:        product.StoreID,
			RecipientEmail: customer.Email,
			ProductName:    product.Name,
			StockQuantity:  newQty,
			Transition:     transition,
		})
		if err != nil {
			log.WithError(err).WithField("alert_id", alert.ID).Warn("Stock alert send failed")
			continue
		}

		if err := s.alertRepo.MarkStockAlertNotified(alert.ID, now); err != nil {
			log.WithError(err).WithField("alert_id", alert.ID).Warn("Failed to stamp stock alert")
		}
	}
}

// NotifyShipment sends the shipment status email once per (order,
// status). The idempotency record is written first; if it already
// exists the send is skipped.
func (s *notificationService) NotifyShipment(ctx context.Context, order *models.Order, status string) {
	log := s.logger.WithFields(logrus.Fields{"order_id": order.ID, "status": status})

	customer, err := s.customerRepo.GetByID(order.CustomerID, order.StoreID)
	if err != nil {
		log.WithError(err).Warn("Shipment notification customer not found")
		return
	}
	if !customer.NotifyShipments {
		return
	}

	inserted, err := s.alertRepo.RecordShipmentNotification(&models.ShipmentNotification{
		StoreID:    order.StoreID,
		OrderID:    order.ID,
		CustomerID: customer.ID,
		Status:     status,
		SentAt:     s.now(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to record shipment notification")
		return
	}
	if !inserted {
		return
	}

	err = s.client.SendShipmentUpdate(ctx, &clients.OrderStatusNotification{
		StoreID:        order.StoreID,
		RecipientEmail: customer.Email,
		CustomerName:   customer.Name,
		OrderNumber:    order.OrderNumber,
		Status:         status,
	})
	if err != nil {
		log.WithError(err).Warn("Shipment notification send failed")
	}
}

// NotifyReturn sends the return status email once per (order, status)
func (s *notificationService) NotifyReturn(ctx context.Context, order *models.Order, status string) {
	log := s.logger.WithFields(logrus.Fields{"order_id": order.ID, "status": status})

	customer, err := s.customerRepo.GetByID(order.CustomerID, order.StoreID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Warn("Return notification customer not found")
		} else {
			log.WithError(err).Warn("Return notification customer lookup failed")
		}
		return
	}
	if !customer.NotifyReturns {
		return
	}

	inserted, err := s.alertRepo.RecordReturnNotification(&models.ReturnNotification{
		StoreID:    order.StoreID,
		OrderID:    order.ID,
		CustomerID: customer.ID,
		Status:     status,
		SentAt:     s.now(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to record return notification")
		return
	}
	if !inserted {
		return
	}

	err = s.client.SendReturnUpdate(ctx, &clients.OrderStatusNotification{
		StoreID:        order.StoreID,
		RecipientEmail: customer.Email,
		CustomerName:   customer.Name,
		OrderNumber:    order.OrderNumber,
		Status:         status,
	})
	if err != nil {
		log.WithError(err).Warn("Return notification send failed")
	}
}
