package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus represents the state of a payment record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusHeld      PaymentStatus = "held"
	PaymentStatusReleased  PaymentStatus = "released"
	PaymentStatusDisputed  PaymentStatus = "disputed"
)

// PaymentProvider identifies the external gateway handling the charge
type PaymentProvider string

const (
	ProviderStripe   PaymentProvider = "stripe"
	ProviderRazorpay PaymentProvider = "razorpay"
)

// Payment is the primary money-movement record for an order. Percentage
// and delivery-secured flows attach a satellite row (PartialPayment or
// SecuredPayment) carrying their extra state.
type Payment struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID       string          `json:"storeId" gorm:"type:varchar(255);not null;index:idx_payments_store;index:idx_payments_store_status"`
	OrderID       uuid.UUID       `json:"orderId" gorm:"type:uuid;not null;index:idx_payments_order"`
	CustomerID    uuid.UUID       `json:"customerId" gorm:"type:uuid;not null;index:idx_payments_customer"`
	Amount        float64         `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency      string          `json:"currency" gorm:"type:varchar(3);not null;default:'XOF'"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_payments_store_status"`
	PaymentType   PaymentType     `json:"paymentType" gorm:"type:varchar(20);not null;default:'full'"`
	Provider      PaymentProvider `json:"provider" gorm:"type:varchar(20)"`
	TransactionID string          `json:"transactionId,omitempty" gorm:"type:varchar(255);index:idx_payments_transaction"`
	CheckoutURL   string          `json:"checkoutUrl,omitempty" gorm:"type:text"`
	FailureReason string          `json:"failureReason,omitempty" gorm:"type:text"`
	Metadata      JSONB           `json:"metadata,omitempty" gorm:"type:jsonb"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt" gorm:"index:idx_payments_store_created,sort:desc"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	PartialPayment *PartialPayment `json:"partialPayment,omitempty" gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
	SecuredPayment *SecuredPayment `json:"securedPayment,omitempty" gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
	Disputes       []Dispute       `json:"disputes,omitempty" gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
}

// PartialPayment tracks the split of a percentage payment.
// Invariant: AmountPaid + AmountRemaining = TotalAmount.
type PartialPayment struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PaymentID       uuid.UUID  `json:"paymentId" gorm:"type:uuid;not null;uniqueIndex:idx_partial_payments_payment"`
	TotalAmount     float64    `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	AmountPaid      float64    `json:"amountPaid" gorm:"type:decimal(12,2);not null"`
	AmountRemaining float64    `json:"amountRemaining" gorm:"type:decimal(12,2);not null"`
	PercentageRate  float64    `json:"percentageRate" gorm:"type:decimal(5,2);not null"`
	RemainderDueAt  *time.Time `json:"remainderDueAt,omitempty"`
	RemainderPaidAt *time.Time `json:"remainderPaidAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SecuredPayment tracks a delivery-secured payment hold. Funds stay held
// until delivery is confirmed or the hold window lapses.
type SecuredPayment struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PaymentID           uuid.UUID  `json:"paymentId" gorm:"type:uuid;not null;uniqueIndex:idx_secured_payments_payment"`
	IsHeld              bool       `json:"isHeld" gorm:"default:true"`
	HeldUntil           *time.Time `json:"heldUntil,omitempty"`
	ReleaseConditions   string     `json:"releaseConditions,omitempty" gorm:"type:text"`
	DeliveryConfirmedAt *time.Time `json:"deliveryConfirmedAt,omitempty"`
	DeliveryConfirmedBy string     `json:"deliveryConfirmedBy,omitempty" gorm:"type:varchar(255)"`
	ReleasedAt          *time.Time `json:"releasedAt,omitempty"`
	DisputeOpenedAt     *time.Time `json:"disputeOpenedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisputeStatus enumerates dispute lifecycle states
type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "open"
	DisputeResolved DisputeStatus = "resolved"
	DisputeRejected DisputeStatus = "rejected"
)

// DisputeInitiatorCustomer is the only initiator type today; merchants
// resolve disputes, they do not open them
const DisputeInitiatorCustomer = "customer"

// Dispute is raised by a buyer against a held payment
type Dispute struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PaymentID     uuid.UUID     `json:"paymentId" gorm:"type:uuid;not null;index:idx_disputes_payment"`
	StoreID       string        `json:"storeId" gorm:"type:varchar(255);not null;index:idx_disputes_store"`
	Reason        string        `json:"reason" gorm:"type:text;not null"`
	Status        DisputeStatus `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	InitiatorType string        `json:"initiatorType" gorm:"type:varchar(20);not null;default:'customer'"`
	OpenedBy      string        `json:"openedBy" gorm:"type:varchar(255)"`
	Resolution    string        `json:"resolution,omitempty" gorm:"type:text"`
	ResolvedAt    *time.Time    `json:"resolvedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentStats aggregates payment figures for a store. Each field comes
// from an independent query; a failed sub-query leaves its field zero.
type PaymentStats struct {
	TotalPayments     int64   `json:"totalPayments"`
	CompletedPayments int64   `json:"completedPayments"`
	PendingPayments   int64   `json:"pendingPayments"`
	FailedPayments    int64   `json:"failedPayments"`
	HeldPayments      int64   `json:"heldPayments"`
	DisputedPayments  int64   `json:"disputedPayments"`
	TotalRevenue      float64 `json:"totalRevenue"`
	HeldAmount        float64 `json:"heldAmount"`
	PendingRemainder  float64 `json:"pendingRemainder"`
}
