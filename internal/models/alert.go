package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Stock thresholds used by the stock alert trigger
const (
	StockOutThreshold = 0
	StockLowThreshold = 10
)

// StockLevel classifies a stock quantity against the alert thresholds
type StockLevel string

const (
	StockOut StockLevel = "out"
	StockLow StockLevel = "low"
	StockIn  StockLevel = "in"
)

// ClassifyStock maps a quantity to its stock level
func ClassifyStock(qty int) StockLevel {
	switch {
	case qty <= StockOutThreshold:
		return StockOut
	case qty < StockLowThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// PriceAlert is a customer subscription to price changes on a product.
// Either TargetPrice or DropPercent (or both) can arm the alert.
type PriceAlert struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID        string         `json:"storeId" gorm:"type:varchar(255);not null;index:idx_price_alerts_store"`
	ProductID      uuid.UUID      `json:"productId" gorm:"type:uuid;not null;index:idx_price_alerts_product"`
	CustomerID     uuid.UUID      `json:"customerId" gorm:"type:uuid;not null"`
	TargetPrice    float64        `json:"targetPrice" gorm:"type:decimal(12,2);default:0"`
	DropPercent    float64        `json:"dropPercent" gorm:"type:decimal(5,2);default:0"`
	Channels       pq.StringArray `json:"channels" gorm:"type:text[]"`
	IsActive       bool           `json:"isActive" gorm:"default:true"`
	LastNotifiedAt *time.Time     `json:"lastNotifiedAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// NotifiedToday reports whether the alert already fired this calendar day
func (a *PriceAlert) NotifiedToday(now time.Time) bool {
	if a.LastNotifiedAt == nil {
		return false
	}
	y1, m1, d1 := a.LastNotifiedAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// StockAlert is a customer subscription to stock transitions on a product
type StockAlert struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID             string         `json:"storeId" gorm:"type:varchar(255);not null;index:idx_stock_alerts_store"`
	ProductID           uuid.UUID      `json:"productId" gorm:"type:uuid;not null;index:idx_stock_alerts_product"`
	CustomerID          uuid.UUID      `json:"customerId" gorm:"type:uuid;not null"`
	NotifyOnBackInStock bool           `json:"notifyOnBackInStock" gorm:"default:true"`
	NotifyOnLowStock    bool           `json:"notifyOnLowStock" gorm:"default:false"`
	Channels            pq.StringArray `json:"channels" gorm:"type:text[]"`
	IsActive            bool           `json:"isActive" gorm:"default:true"`
	LastNotifiedAt      *time.Time     `json:"lastNotifiedAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// NotifiedToday reports whether the alert already fired this calendar day
func (a *StockAlert) NotifiedToday(now time.Time) bool {
	if a.LastNotifiedAt == nil {
		return false
	}
	y1, m1, d1 := a.LastNotifiedAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ShipmentNotification records that a shipment status email was sent for
// an order. The unique (order_id, status) index makes the send idempotent.
type ShipmentNotification struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID    string    `json:"storeId" gorm:"type:varchar(255);not null;index:idx_shipment_notifications_store"`
	OrderID    uuid.UUID `json:"orderId" gorm:"type:uuid;not null;uniqueIndex:idx_shipment_notifications_order_status"`
	CustomerID uuid.UUID `json:"customerId" gorm:"type:uuid;not null"`
	Status     string    `json:"status" gorm:"type:varchar(30);not null;uniqueIndex:idx_shipment_notifications_order_status"`
	SentAt     time.Time `json:"sentAt"`

	CreatedAt time.Time `json:"createdAt"`
}

// ReturnNotification records that a return status email was sent for an
// order, idempotent per (order_id, status) like shipment notifications.
type ReturnNotification struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID    string    `json:"storeId" gorm:"type:varchar(255);not null;index:idx_return_notifications_store"`
	OrderID    uuid.UUID `json:"orderId" gorm:"type:uuid;not null;uniqueIndex:idx_return_notifications_order_status"`
	CustomerID uuid.UUID `json:"customerId" gorm:"type:uuid;not null"`
	Status     string    `json:"status" gorm:"type:varchar(30);not null;uniqueIndex:idx_return_notifications_order_status"`
	SentAt     time.Time `json:"sentAt"`

	CreatedAt time.Time `json:"createdAt"`
}
