package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// AlertRepository defines the interface for notification-subscription data
type AlertRepository interface {
	CreatePriceAlert(alert *models.PriceAlert) error
	CreateStockAlert(alert *models.StockAlert) error
	ActivePriceAlerts(productID uuid.UUID, storeID string) ([]models.PriceAlert, error)
	ActiveStockAlerts(productID uuid.UUID, storeID string) ([]models.StockAlert, error)
	MarkPriceAlertNotified(id uuid.UUID, at time.Time) error
	MarkStockAlertNotified(id uuid.UUID, at time.Time) error
	RecordShipmentNotification(n *models.ShipmentNotification) (bool, error)
	RecordReturnNotification(n *models.ReturnNotification) (bool, error)
}

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

// CreatePriceAlert inserts a price alert subscription
func (r *alertRepository) CreatePriceAlert(alert *models.PriceAlert) error {
	if err := r.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create price alert: %w", err)
	}
	return nil
}

// CreateStockAlert inserts a stock alert subscription
func (r *alertRepository) CreateStockAlert(alert *models.StockAlert) error {
	if err := r.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create stock alert: %w", err)
	}
	return nil
}

// ActivePriceAlerts loads the active price alerts on a product
func (r *alertRepository) ActivePriceAlerts(productID uuid.UUID, storeID string) ([]models.PriceAlert, error) {
	var alerts []models.PriceAlert
	err := r.db.Where("product_id = ? AND store_id = ? AND is_active = ?", productID, storeID, true).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load price alerts: %w", err)
	}
	return alerts, nil
}

// ActiveStockAlerts loads the active stock alerts on a product
func (r *alertRepository) ActiveStockAlerts(productID uuid.UUID, storeID string) ([]models.StockAlert, error) {
	var alerts []models.StockAlert
	err := r.db.Where("product_id = ? AND store_id = ? AND is_active = ?", productID, storeID, true).
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stock alerts: %w", err)
	}
	return alerts, nil
}

// MarkPriceAlertNotified stamps the daily-dedup timestamp
func (r *alertRepository) MarkPriceAlertNotified(id uuid.UUID, at time.Time) error {
	err := r.db.Model(&models.PriceAlert{}).
		Where("id = ?", id).
		Update("last_notified_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark price alert notified: %w", err)
	}
	return nil
}

// MarkStockAlertNotified stamps the daily-dedup timestamp
func (r *alertRepository) MarkStockAlertNotified(id uuid.UUID, at time.Time) error {
	err := r.db.Model(&models.StockAlert{}).
		Where("id = ?", id).
		Update("last_notified_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark stock alert notified: %w", err)
	}
	return nil
}

// RecordShipmentNotification inserts the send record for (order, status).
// Returns false when the record already exists, making the send
// idempotent under retries.
func (r *alertRepository) RecordShipmentNotification(n *models.ShipmentNotification) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "status"}},
		DoNothing: true,
	}).Create(n)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record shipment notification: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RecordReturnNotification inserts the send record for (order, status),
// idempotent like shipment notifications
func (r *alertRepository) RecordReturnNotification(n *models.ReturnNotification) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "status"}},
		DoNothing: true,
	}).Create(n)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record return notification: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
