package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// StripeGateway implements PaymentGateway using Stripe Checkout Sessions
type StripeGateway struct {
	secretKey     string
	webhookSecret string

	// Redirect targets used when the checkout request does not carry its own
	DefaultSuccessURL string
	DefaultCancelURL  string
}

// NewStripeGateway creates a new Stripe gateway instance
func NewStripeGateway(secretKey, webhookSecret string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("Stripe secret key is required")
	}
	return &StripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
	}, nil
}

// Provider returns the gateway provider identifier
func (g *StripeGateway) Provider() models.PaymentProvider {
	return models.ProviderStripe
}

// InitiateCheckout creates a Stripe Checkout Session for a hosted
// payment page and returns its redirect URL.
func (g *StripeGateway) InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	stripe.Key = g.secretKey

	// Stripe wants the smallest currency unit. XOF is zero-decimal.
	amount := int64(req.Amount)
	if !isZeroDecimal(req.Currency) {
		amount = int64(req.Amount * 100)
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = g.DefaultSuccessURL
	}
	if successURL == "" {
		successURL = "https://payhula.com/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = g.DefaultCancelURL
	}
	if cancelURL == "" {
		cancelURL = "https://payhula.com/checkout?cancelled=true"
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.Description),
						Description: stripe.String(fmt.Sprintf("Order %s", req.OrderNumber)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata: map[string]string{
			"store_id":    req.StoreID,
			"order_id":    req.OrderID,
			"customer_id": req.CustomerID,
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, g.handleStripeError(err)
	}

	return &CheckoutResult{
		CheckoutURL:   sess.URL,
		TransactionID: sess.ID,
	}, nil
}

// VerifyWebhook verifies a Stripe webhook signature
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) error {
	if g.webhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}
	if _, err := webhook.ConstructEvent(payload, signature, g.webhookSecret); err != nil {
		return NewGatewayError("webhook_verification_failed", err.Error(), false)
	}
	return nil
}

// ProcessWebhook normalizes a Stripe webhook event
func (g *StripeGateway) ProcessWebhook(ctx context.Context, payload []byte) (*WebhookEvent, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	webhookEvent := &WebhookEvent{EventType: WebhookUnknown}

	switch event.Type {
	case "checkout.session.completed":
		webhookEvent.EventType = WebhookPaymentSucceeded
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err == nil {
			webhookEvent.TransactionID = sess.ID
			webhookEvent.Currency = strings.ToUpper(string(sess.Currency))
			if isZeroDecimal(webhookEvent.Currency) {
				webhookEvent.Amount = float64(sess.AmountTotal)
			} else {
				webhookEvent.Amount = float64(sess.AmountTotal) / 100
			}
		}

	case "checkout.session.expired":
		webhookEvent.EventType = WebhookPaymentFailed
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err == nil {
			webhookEvent.TransactionID = sess.ID
		}
	}

	return webhookEvent, nil
}

func (g *StripeGateway) handleStripeError(err error) error {
	if stripeErr, ok := err.(*stripe.Error); ok {
		return &GatewayError{
			Code:      string(stripeErr.Code),
			Message:   stripeErr.Msg,
			Retryable: stripeErr.HTTPStatusCode == 429,
		}
	}
	return NewGatewayError("unknown_error", err.Error(), false)
}

// isZeroDecimal reports whether a currency has no minor unit
func isZeroDecimal(currency string) bool {
	switch strings.ToUpper(currency) {
	case "XOF", "XAF", "JPY", "KRW", "VND", "GNF", "RWF":
		return true
	}
	return false
}
