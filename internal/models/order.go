package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONB is a custom type for PostgreSQL JSONB fields
type JSONB json.RawMessage

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = JSONB(v)
		return nil
	case string:
		*j = JSONB([]byte(v))
		return nil
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler
func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSONB) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		*j = nil
		return nil
	}
	*j = JSONB(data)
	return nil
}

// OrderPaymentStatus represents the money-flow status of an order
type OrderPaymentStatus string

const (
	OrderPaymentPending   OrderPaymentStatus = "pending"
	OrderPaymentCompleted OrderPaymentStatus = "completed"
	OrderPaymentFailed    OrderPaymentStatus = "failed"
)

// FulfillmentStatus represents the delivery status of an order
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentProcessing  FulfillmentStatus = "processing"
	FulfillmentShipped     FulfillmentStatus = "shipped"
	FulfillmentDelivered   FulfillmentStatus = "delivered"
	FulfillmentReturned    FulfillmentStatus = "returned"
)

// PaymentType describes how the buyer settles the order total
type PaymentType string

const (
	PaymentTypeFull            PaymentType = "full"
	PaymentTypePercentage      PaymentType = "percentage"
	PaymentTypeDeliverySecured PaymentType = "delivery_secured"
)

// Order represents a purchase transaction in a merchant store.
// Composite indexes on store_id with frequently filtered columns keep
// multi-tenant list queries on the fast path.
// Invariant: total_amount = percentage_paid + remaining_amount when
// payment_type is 'percentage'.
type Order struct {
	ID                uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID           string             `json:"storeId" gorm:"type:varchar(255);not null;index:idx_orders_store;index:idx_orders_store_status;index:idx_orders_store_number,unique"`
	OrderNumber       string             `json:"orderNumber" gorm:"not null;index:idx_orders_store_number,unique"`
	CustomerID        uuid.UUID          `json:"customerId" gorm:"type:uuid;not null;index:idx_orders_customer"`
	TotalAmount       float64            `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Currency          string             `json:"currency" gorm:"type:varchar(3);not null;default:'XOF'"`
	PaymentStatus     OrderPaymentStatus `json:"paymentStatus" gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_store_status"`
	FulfillmentStatus FulfillmentStatus  `json:"fulfillmentStatus" gorm:"type:varchar(20);not null;default:'unfulfilled'"`
	PaymentType       PaymentType        `json:"paymentType" gorm:"type:varchar(20);not null;default:'full'"`
	PercentagePaid    float64            `json:"percentagePaid" gorm:"type:decimal(12,2);default:0"`
	RemainingAmount   float64            `json:"remainingAmount" gorm:"type:decimal(12,2);default:0"`
	Notes             JSONB              `json:"notes,omitempty" gorm:"type:jsonb"`
	AffiliateCode     string             `json:"affiliateCode,omitempty" gorm:"type:varchar(100)"`

	// Shipping snapshot, only populated when the product requires shipping
	ShippingAddress JSONB `json:"shippingAddress,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"createdAt" gorm:"index:idx_orders_store_created,sort:desc"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Items    []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Timeline []OrderTimeline `json:"timeline,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one line of a purchase. Metadata carries the
// product-type specific attributes (see ItemMetadata).
type OrderItem struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID   `json:"orderId" gorm:"type:uuid;not null;index:idx_order_items_order"`
	ProductID   uuid.UUID   `json:"productId" gorm:"type:uuid;not null;index:idx_order_items_product"`
	ProductType ProductType `json:"productType" gorm:"type:varchar(20);not null"`
	ProductName string      `json:"productName" gorm:"not null"`
	Quantity    int         `json:"quantity" gorm:"not null"`
	UnitPrice   float64     `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	TotalPrice  float64     `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	Metadata    JSONB       `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderTimeline records lifecycle events on an order
type OrderTimeline struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID `json:"orderId" gorm:"type:uuid;not null"`
	Event       string    `json:"event" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ShippingAddress is the structure serialized into Order.ShippingAddress
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// ItemMetadata is the discriminated metadata union stored on an order
// item. Kind matches the item's ProductType; exactly one of the variant
// pointers is populated.
type ItemMetadata struct {
	Kind     ProductType       `json:"kind"`
	Digital  *DigitalItemMeta  `json:"digital,omitempty"`
	Physical *PhysicalItemMeta `json:"physical,omitempty"`
	Service  *ServiceItemMeta  `json:"service,omitempty"`
	Course   *CourseItemMeta   `json:"course,omitempty"`
	Artist   *ArtistItemMeta   `json:"artist,omitempty"`
}

// DigitalItemMeta carries delivery attributes of a digital product line
type DigitalItemMeta struct {
	DownloadLimit int    `json:"downloadLimit,omitempty"`
	LicenseKey    string `json:"licenseKey,omitempty"`
}

// PhysicalItemMeta carries attributes of a physical goods line
type PhysicalItemMeta struct {
	SKU       string  `json:"sku,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
	Insurance float64 `json:"insurance,omitempty"`
}

// ServiceItemMeta carries the booking attributes of a service line
type ServiceItemMeta struct {
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	DurationMin int        `json:"durationMin,omitempty"`
}

// CourseItemMeta carries enrollment attributes of a course line
type CourseItemMeta struct {
	CourseID     string `json:"courseId,omitempty"`
	AccessMonths int    `json:"accessMonths,omitempty"`
}

// ArtistItemMeta carries the edition attributes of an artist-work line
type ArtistItemMeta struct {
	EditionNumber  int     `json:"editionNumber,omitempty"`
	HasCertificate bool    `json:"hasCertificate,omitempty"`
	Insurance      float64 `json:"insurance,omitempty"`
}

// Encode serializes the metadata union into a JSONB column value
func (m ItemMetadata) Encode() (JSONB, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item metadata: %w", err)
	}
	return JSONB(data), nil
}

// DecodeItemMetadata parses the JSONB column back into the union
func DecodeItemMetadata(raw JSONB) (*ItemMetadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m ItemMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode item metadata: %w", err)
	}
	return &m, nil
}

// FallbackOrderNumber builds a timestamp-based order number, used when
// the database sequence is unavailable.
func FallbackOrderNumber() string {
	return fmt.Sprintf("PH-%d", time.Now().UnixNano())
}
