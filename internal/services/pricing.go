package services

import (
	"math"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// PaymentResolution is the outcome of resolving a product's payment
// configuration against an order total.
// Invariant: AmountToPay + RemainingAmount = Total.
type PaymentResolution struct {
	PaymentType     models.PaymentType
	Total           float64
	AmountToPay     float64
	RemainingAmount float64
	PercentageRate  float64
}

// ResolvePayment splits an order total according to the product's
// payment options. Full and delivery-secured charge the whole amount up
// front (the latter into a hold); percentage charges the configured
// share now, rounded to the nearest unit, leaving the rest due later.
func ResolvePayment(opts models.PaymentOptions, total float64) PaymentResolution {
	res := PaymentResolution{
		PaymentType: opts.PaymentType,
		Total:       total,
		AmountToPay: total,
	}

	switch opts.PaymentType {
	case models.PaymentTypePercentage:
		rate := opts.PercentageRate
		if rate <= 0 {
			rate = models.DefaultPercentageRate
		}
		res.PercentageRate = rate
		res.AmountToPay = math.Round(total * rate / 100)
		res.RemainingAmount = total - res.AmountToPay
	case models.PaymentTypeDeliverySecured, models.PaymentTypeFull:
		// whole amount due now
	default:
		res.PaymentType = models.PaymentTypeFull
	}

	return res
}

// ApplyGiftCard offsets the amount due now by a gift card balance.
// Returns the amount actually drawn from the card and the new amount to
// pay, floored at zero; the card never covers the deferred remainder.
func ApplyGiftCard(amountToPay, cardBalance float64) (applied, newAmountToPay float64) {
	if cardBalance <= 0 || amountToPay <= 0 {
		return 0, amountToPay
	}
	applied = math.Min(cardBalance, amountToPay)
	return applied, amountToPay - applied
}
