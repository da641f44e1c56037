package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

func TestResolvePayment_Full(t *testing.T) {
	res := ResolvePayment(models.PaymentOptions{PaymentType: models.PaymentTypeFull}, 15000)

	assert.Equal(t, models.PaymentTypeFull, res.PaymentType)
	assert.Equal(t, 15000.0, res.Total)
	assert.Equal(t, 15000.0, res.AmountToPay)
	assert.Equal(t, 0.0, res.RemainingAmount)
}

func TestResolvePayment_Percentage(t *testing.T) {
	tests := []struct {
		name          string
		rate          float64
		total         float64
		wantToPay     float64
		wantRemaining float64
		wantRate      float64
	}{
		{"configured rate", 40, 10000, 4000, 6000, 40},
		{"default rate when zero", 0, 10000, 3000, 7000, 30},
		{"default rate when negative", -5, 10000, 3000, 7000, 30},
		{"rounds to nearest unit", 33, 101, 33, 68, 33},
		{"rounds half up", 30, 105, 32, 73, 30},
		{"hundred percent", 100, 5000, 5000, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolvePayment(models.PaymentOptions{
				PaymentType:    models.PaymentTypePercentage,
				PercentageRate: tt.rate,
			}, tt.total)

			assert.Equal(t, models.PaymentTypePercentage, res.PaymentType)
			assert.Equal(t, tt.wantToPay, res.AmountToPay)
			assert.Equal(t, tt.wantRemaining, res.RemainingAmount)
			assert.Equal(t, tt.wantRate, res.PercentageRate)
			assert.Equal(t, res.Total, res.AmountToPay+res.RemainingAmount)
		})
	}
}

func TestResolvePayment_DeliverySecured(t *testing.T) {
	res := ResolvePayment(models.PaymentOptions{PaymentType: models.PaymentTypeDeliverySecured}, 8000)

	assert.Equal(t, models.PaymentTypeDeliverySecured, res.PaymentType)
	assert.Equal(t, 8000.0, res.AmountToPay)
	assert.Equal(t, 0.0, res.RemainingAmount)
}

func TestResolvePayment_UnknownTypeFallsBackToFull(t *testing.T) {
	res := ResolvePayment(models.PaymentOptions{PaymentType: "subscription"}, 2000)

	assert.Equal(t, models.PaymentTypeFull, res.PaymentType)
	assert.Equal(t, 2000.0, res.AmountToPay)
}

func TestApplyGiftCard(t *testing.T) {
	tests := []struct {
		name        string
		amountToPay float64
		balance     float64
		wantApplied float64
		wantNewPay  float64
	}{
		{"partial coverage", 10000, 4000, 4000, 6000},
		{"exact coverage", 10000, 10000, 10000, 0},
		{"balance exceeds amount", 3000, 10000, 3000, 0},
		{"empty card", 3000, 0, 0, 3000},
		{"negative balance", 3000, -50, 0, 3000},
		{"nothing due", 0, 5000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied, newPay := ApplyGiftCard(tt.amountToPay, tt.balance)
			assert.Equal(t, tt.wantApplied, applied)
			assert.Equal(t, tt.wantNewPay, newPay)
			assert.GreaterOrEqual(t, newPay, 0.0)
		})
	}
}
