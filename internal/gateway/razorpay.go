package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	razorpayLib "github.com/razorpay/razorpay-go"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// RazorpayGateway implements PaymentGateway using Razorpay orders with
// payment links for the hosted checkout page
type RazorpayGateway struct {
	client        *razorpayLib.Client
	keyID         string
	keySecret     string
	webhookSecret string

	// Callback target used when the checkout request does not carry its own
	DefaultCallbackURL string
}

// NewRazorpayGateway creates a new Razorpay gateway instance
func NewRazorpayGateway(keyID, keySecret, webhookSecret string) (*RazorpayGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("Razorpay key ID and secret are required")
	}
	return &RazorpayGateway{
		client:        razorpayLib.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}, nil
}

// Provider returns the gateway provider identifier
func (g *RazorpayGateway) Provider() models.PaymentProvider {
	return models.ProviderRazorpay
}

// InitiateCheckout creates a Razorpay payment link and returns its
// short URL as the hosted checkout redirect.
func (g *RazorpayGateway) InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	amount := int64(req.Amount)
	if !isZeroDecimal(req.Currency) {
		amount = int64(req.Amount * 100)
	}

	linkData := map[string]interface{}{
		"amount":       amount,
		"currency":     strings.ToUpper(req.Currency),
		"description":  req.Description,
		"reference_id": req.OrderNumber,
		"customer": map[string]interface{}{
			"name":  req.CustomerName,
			"email": req.CustomerEmail,
		},
		"notes": map[string]interface{}{
			"store_id":    req.StoreID,
			"order_id":    req.OrderID,
			"customer_id": req.CustomerID,
		},
	}
	callbackURL := req.SuccessURL
	if callbackURL == "" {
		callbackURL = g.DefaultCallbackURL
	}
	if callbackURL != "" {
		linkData["callback_url"] = callbackURL
		linkData["callback_method"] = "get"
	}

	link, err := g.client.PaymentLink.Create(linkData, nil)
	if err != nil {
		return nil, g.handleRazorpayError(err)
	}

	linkID, _ := link["id"].(string)
	shortURL, _ := link["short_url"].(string)
	if shortURL == "" {
		return nil, NewGatewayError("invalid_response", "Razorpay returned no checkout URL", false)
	}

	return &CheckoutResult{
		CheckoutURL:   shortURL,
		TransactionID: linkID,
	}, nil
}

// VerifyWebhook verifies the Razorpay webhook HMAC signature
func (g *RazorpayGateway) VerifyWebhook(payload []byte, signature string) error {
	if g.webhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}
	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return NewGatewayError("webhook_verification_failed", "signature mismatch", false)
	}
	return nil
}

// ProcessWebhook normalizes a Razorpay webhook event
func (g *RazorpayGateway) ProcessWebhook(ctx context.Context, payload []byte) (*WebhookEvent, error) {
	var event struct {
		Event   string `json:"event"`
		Payload struct {
			PaymentLink struct {
				Entity struct {
					ID       string  `json:"id"`
					Amount   float64 `json:"amount"`
					Currency string  `json:"currency"`
				} `json:"entity"`
			} `json:"payment_link"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	entity := event.Payload.PaymentLink.Entity
	webhookEvent := &WebhookEvent{
		EventType:     WebhookUnknown,
		TransactionID: entity.ID,
		Currency:      strings.ToUpper(entity.Currency),
	}
	if isZeroDecimal(webhookEvent.Currency) {
		webhookEvent.Amount = entity.Amount
	} else {
		webhookEvent.Amount = entity.Amount / 100
	}

	switch event.Event {
	case "payment_link.paid":
		webhookEvent.EventType = WebhookPaymentSucceeded
	case "payment_link.expired", "payment_link.cancelled":
		webhookEvent.EventType = WebhookPaymentFailed
	}

	return webhookEvent, nil
}

func (g *RazorpayGateway) handleRazorpayError(err error) error {
	return NewGatewayError("razorpay_error", err.Error(), false)
}
