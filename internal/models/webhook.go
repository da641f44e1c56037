package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Webhook event names published to merchant endpoints
const (
	EventOrderCreated          = "order.created"
	EventOrderPaymentCompleted = "order.payment_completed"
	EventOrderPaymentFailed    = "order.payment_failed"
	EventPaymentReleased       = "payment.released"
	EventPaymentDisputed       = "payment.disputed"
	EventProductPriceChanged   = "product.price_changed"
	EventProductStockChanged   = "product.stock_changed"
)

// WebhookEndpoint is a merchant-registered URL subscribed to events
type WebhookEndpoint struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID   string         `json:"storeId" gorm:"type:varchar(255);not null;index:idx_webhook_endpoints_store"`
	URL       string         `json:"url" gorm:"type:text;not null"`
	Events    pq.StringArray `json:"events" gorm:"type:text[]"`
	Secret    string         `json:"-" gorm:"type:varchar(255)"`
	IsActive  bool           `json:"isActive" gorm:"default:true"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// SubscribedTo checks whether the endpoint wants a given event. An empty
// event list subscribes to everything.
func (w *WebhookEndpoint) SubscribedTo(event string) bool {
	if len(w.Events) == 0 {
		return true
	}
	for _, e := range w.Events {
		if e == event || e == "*" {
			return true
		}
	}
	return false
}

// WebhookDelivery records one dispatch attempt to an endpoint
type WebhookDelivery struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EndpointID uuid.UUID `json:"endpointId" gorm:"type:uuid;not null;index:idx_webhook_deliveries_endpoint"`
	StoreID    string    `json:"storeId" gorm:"type:varchar(255);not null;index:idx_webhook_deliveries_store"`
	Event      string    `json:"event" gorm:"type:varchar(100);not null"`
	Payload    JSONB     `json:"payload,omitempty" gorm:"type:jsonb"`
	StatusCode int       `json:"statusCode"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
}
