package gateway

import (
	"context"
	"fmt"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// CheckoutRequest carries everything a gateway needs to open a hosted
// checkout page for the amount actually due now (full price, percentage
// portion, or held delivery-secured amount).
type CheckoutRequest struct {
	StoreID       string
	OrderID       string
	OrderNumber   string
	CustomerID    string
	CustomerEmail string
	CustomerName  string
	Amount        float64
	Currency      string
	Description   string
	SuccessURL    string
	CancelURL     string
}

// CheckoutResult is what the gateway returns on successful initiation
type CheckoutResult struct {
	CheckoutURL   string
	TransactionID string
}

// WebhookEventType classifies inbound gateway callbacks
type WebhookEventType string

const (
	WebhookPaymentSucceeded WebhookEventType = "payment_succeeded"
	WebhookPaymentFailed    WebhookEventType = "payment_failed"
	WebhookUnknown          WebhookEventType = "unknown"
)

// WebhookEvent is the normalized form of a gateway callback payload
type WebhookEvent struct {
	EventType     WebhookEventType
	TransactionID string
	Amount        float64
	Currency      string
}

// PaymentGateway abstracts an external payment provider. Initiation
// happens before any money moves; the status update arrives later via
// the provider's webhook.
type PaymentGateway interface {
	Provider() models.PaymentProvider
	InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error)
	VerifyWebhook(payload []byte, signature string) error
	ProcessWebhook(ctx context.Context, payload []byte) (*WebhookEvent, error)
}

// GatewayError wraps a provider-side failure with retryability info
type GatewayError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

// NewGatewayError creates a gateway error
func NewGatewayError(code, message string, retryable bool) *GatewayError {
	return &GatewayError{Code: code, Message: message, Retryable: retryable}
}
