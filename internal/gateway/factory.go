package gateway

import (
	"fmt"

	"github.com/payhuk02/payhula-sub017/internal/config"
	"github.com/payhuk02/payhula-sub017/internal/models"
)

// Factory creates gateway instances from service configuration
type Factory struct {
	cfg *config.Config
}

// NewFactory creates a gateway factory
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// Get returns the gateway implementation for a provider
func (f *Factory) Get(provider models.PaymentProvider) (PaymentGateway, error) {
	switch provider {
	case models.ProviderStripe:
		gw, err := NewStripeGateway(f.cfg.StripeSecretKey, f.cfg.StripeWebhookSecret)
		if err != nil {
			return nil, err
		}
		gw.DefaultSuccessURL = f.cfg.CheckoutSuccessURL
		gw.DefaultCancelURL = f.cfg.CheckoutCancelURL
		return gw, nil
	case models.ProviderRazorpay:
		gw, err := NewRazorpayGateway(f.cfg.RazorpayKeyID, f.cfg.RazorpayKeySecret, f.cfg.RazorpayWebhookSecret)
		if err != nil {
			return nil, err
		}
		gw.DefaultCallbackURL = f.cfg.CheckoutSuccessURL
		return gw, nil
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}

// Default returns the gateway for the configured default provider
func (f *Factory) Default() (PaymentGateway, error) {
	return f.Get(models.PaymentProvider(f.cfg.DefaultPaymentProvider))
}
