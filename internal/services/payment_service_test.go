package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/events"
	"github.com/payhuk02/payhula-sub017/internal/models"
)

type paymentServiceFixture struct {
	repo      *MockPaymentRepository
	orderRepo *MockOrderRepository
	service   PaymentService
}

func newPaymentServiceFixture() *paymentServiceFixture {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	f := &paymentServiceFixture{
		repo:      new(MockPaymentRepository),
		orderRepo: new(MockOrderRepository),
	}
	f.service = NewPaymentService(f.repo, f.orderRepo, events.NewPublisher("", logger), logger)
	return f
}

func TestCreateForOrder_FullPayment(t *testing.T) {
	f := newPaymentServiceFixture()

	f.repo.On("Create", mock.AnythingOfType("*models.Payment")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Payment).ID = uuid.New()
	}).Return(nil)

	payment, err := f.service.CreateForOrder(context.Background(), CreatePaymentInput{
		StoreID:    "store-1",
		OrderID:    uuid.New(),
		CustomerID: uuid.New(),
		Currency:   "XOF",
		Resolution: PaymentResolution{
			PaymentType: models.PaymentTypeFull,
			Total:       10000,
			AmountToPay: 10000,
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, 10000.0, payment.Amount)
	assert.Nil(t, payment.PartialPayment)
	assert.Nil(t, payment.SecuredPayment)

	f.repo.AssertNotCalled(t, "CreatePartial", mock.Anything)
	f.repo.AssertNotCalled(t, "CreateSecured", mock.Anything)
}

func TestCreateForOrder_PercentageCreatesPartialRow(t *testing.T) {
	f := newPaymentServiceFixture()

	f.repo.On("Create", mock.AnythingOfType("*models.Payment")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Payment).ID = uuid.New()
	}).Return(nil)

	var partial *models.PartialPayment
	f.repo.On("CreatePartial", mock.AnythingOfType("*models.PartialPayment")).Run(func(args mock.Arguments) {
		partial = args.Get(0).(*models.PartialPayment)
	}).Return(nil)

	payment, err := f.service.CreateForOrder(context.Background(), CreatePaymentInput{
		StoreID:  "store-1",
		OrderID:  uuid.New(),
		Currency: "XOF",
		Resolution: PaymentResolution{
			PaymentType:     models.PaymentTypePercentage,
			Total:           10000,
			AmountToPay:     3000,
			RemainingAmount: 7000,
			PercentageRate:  30,
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, 3000.0, payment.Amount)
	assert.NotNil(t, payment.PartialPayment)
	assert.Equal(t, 10000.0, partial.TotalAmount)
	assert.Equal(t, 30.0, partial.PercentageRate)
	// Nothing collected yet; the split is settled on completion
	assert.Equal(t, 0.0, partial.AmountPaid)
	assert.Equal(t, 10000.0, partial.AmountRemaining)
}

func TestCreateForOrder_SatelliteFailureIsPartial(t *testing.T) {
	f := newPaymentServiceFixture()

	f.repo.On("Create", mock.AnythingOfType("*models.Payment")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Payment).ID = uuid.New()
	}).Return(nil)
	f.repo.On("CreatePartial", mock.AnythingOfType("*models.PartialPayment")).
		Return(errors.New("constraint violation"))

	payment, err := f.service.CreateForOrder(context.Background(), CreatePaymentInput{
		StoreID: "store-1",
		OrderID: uuid.New(),
		Resolution: PaymentResolution{
			PaymentType:     models.PaymentTypePercentage,
			Total:           10000,
			AmountToPay:     3000,
			RemainingAmount: 7000,
			PercentageRate:  30,
		},
	})

	// The primary row stands even though the satellite write failed
	var partialErr *PartialFailureError
	assert.ErrorAs(t, err, &partialErr)
	assert.NotNil(t, payment)
	assert.NotEqual(t, uuid.Nil, payment.ID)
}

func TestCreateForOrder_DeliverySecuredStartsHeld(t *testing.T) {
	f := newPaymentServiceFixture()

	f.repo.On("Create", mock.AnythingOfType("*models.Payment")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Payment).ID = uuid.New()
	}).Return(nil)

	var secured *models.SecuredPayment
	f.repo.On("CreateSecured", mock.AnythingOfType("*models.SecuredPayment")).Run(func(args mock.Arguments) {
		secured = args.Get(0).(*models.SecuredPayment)
	}).Return(nil)

	payment, err := f.service.CreateForOrder(context.Background(), CreatePaymentInput{
		StoreID: "store-1",
		OrderID: uuid.New(),
		Resolution: PaymentResolution{
			PaymentType: models.PaymentTypeDeliverySecured,
			Total:       20000,
			AmountToPay: 20000,
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusHeld, payment.Status)
	assert.True(t, secured.IsHeld)
	assert.NotNil(t, secured.HeldUntil)
	assert.Equal(t, "delivery_confirmed", secured.ReleaseConditions)
}

func TestMarkCompleted(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:            uuid.New(),
		StoreID:       "store-1",
		OrderID:       uuid.New(),
		Status:        models.PaymentStatusPending,
		PaymentType:   models.PaymentTypeFull,
		TransactionID: "cs_123",
	}

	f.repo.On("GetByTransactionID", "cs_123").Return(payment, nil)
	f.repo.On("Update", payment).Return(nil)
	f.orderRepo.On("UpdatePaymentStatus", payment.OrderID, models.OrderPaymentCompleted, "store-1").Return(nil)

	updated, err := f.service.MarkCompleted(context.Background(), "cs_123")

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, updated.Status)
	assert.NotNil(t, updated.PaidAt)
	f.orderRepo.AssertExpectations(t)
}

func TestMarkCompleted_DeliverySecuredStaysHeld(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:            uuid.New(),
		StoreID:       "store-1",
		OrderID:       uuid.New(),
		Status:        models.PaymentStatusHeld,
		PaymentType:   models.PaymentTypeDeliverySecured,
		TransactionID: "cs_456",
	}

	f.repo.On("GetByTransactionID", "cs_456").Return(payment, nil)
	f.repo.On("Update", payment).Return(nil)
	f.orderRepo.On("UpdatePaymentStatus", payment.OrderID, models.OrderPaymentCompleted, "store-1").Return(nil)

	updated, err := f.service.MarkCompleted(context.Background(), "cs_456")

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusHeld, updated.Status)
	assert.NotNil(t, updated.PaidAt)
}

func TestMarkCompleted_PercentageSettlesSplit(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:            uuid.New(),
		StoreID:       "store-1",
		OrderID:       uuid.New(),
		Amount:        3000,
		Status:        models.PaymentStatusPending,
		PaymentType:   models.PaymentTypePercentage,
		TransactionID: "cs_321",
		PartialPayment: &models.PartialPayment{
			TotalAmount:     10000,
			AmountPaid:      0,
			AmountRemaining: 10000,
			PercentageRate:  30,
		},
	}

	f.repo.On("GetByTransactionID", "cs_321").Return(payment, nil)
	f.repo.On("Update", payment).Return(nil)
	f.repo.On("UpdatePartial", payment.PartialPayment).Return(nil)
	f.orderRepo.On("UpdatePaymentStatus", payment.OrderID, models.OrderPaymentCompleted, "store-1").Return(nil)

	updated, err := f.service.MarkCompleted(context.Background(), "cs_321")

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, updated.Status)
	assert.Equal(t, 3000.0, updated.PartialPayment.AmountPaid)
	assert.Equal(t, 7000.0, updated.PartialPayment.AmountRemaining)
	f.repo.AssertCalled(t, "UpdatePartial", payment.PartialPayment)
}

func TestMarkCompleted_UnknownTransaction(t *testing.T) {
	f := newPaymentServiceFixture()

	f.repo.On("GetByTransactionID", "cs_missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.MarkCompleted(context.Background(), "cs_missing")

	var nfErr *NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestMarkFailed(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:            uuid.New(),
		StoreID:       "store-1",
		OrderID:       uuid.New(),
		Status:        models.PaymentStatusPending,
		TransactionID: "cs_789",
	}

	f.repo.On("GetByTransactionID", "cs_789").Return(payment, nil)
	f.repo.On("Update", payment).Return(nil)
	f.orderRepo.On("UpdatePaymentStatus", payment.OrderID, models.OrderPaymentFailed, "store-1").Return(nil)

	updated, err := f.service.MarkFailed(context.Background(), "cs_789", "card declined")

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, updated.Status)
	assert.Equal(t, "card declined", updated.FailureReason)
}

func TestReleasePayment(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:      uuid.New(),
		StoreID: "store-1",
		Status:  models.PaymentStatusHeld,
		SecuredPayment: &models.SecuredPayment{
			PaymentID: uuid.New(),
			IsHeld:    true,
		},
	}

	f.repo.On("GetByID", payment.ID, "store-1").Return(payment, nil)
	f.repo.On("Update", payment).Return(nil)
	f.repo.On("UpdateSecured", payment.SecuredPayment).Return(nil)
	f.repo.On("InvalidateStatsCache", mock.Anything, "store-1").Return()

	released, err := f.service.ReleasePayment(context.Background(), payment.ID, "store-1", "merchant-admin")

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusReleased, released.Status)
	assert.False(t, released.SecuredPayment.IsHeld)
	assert.NotNil(t, released.SecuredPayment.ReleasedAt)
	// Releasing implies delivery happened
	assert.NotNil(t, released.SecuredPayment.DeliveryConfirmedAt)
	assert.Equal(t, "merchant-admin", released.SecuredPayment.DeliveryConfirmedBy)
}

func TestReleasePayment_KeepsEarlierConfirmation(t *testing.T) {
	f := newPaymentServiceFixture()
	confirmedAt := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	payment := &models.Payment{
		ID:      uuid.New(),
		StoreID: "store-1",
		Status:  models.PaymentStatusHeld,
		SecuredPayment: &models.SecuredPayment{
			PaymentID:           uuid.New(),
			IsHeld:              true,
			DeliveryConfirmedAt: &confirmedAt,
			DeliveryConfirmedBy: "courier-scan",
		},
	}

	f.repo.On("GetByID", payment.ID, "store-1").Return(payment, nil)
	f.repo.On("Update", payment).Return(nil)
	f.repo.On("UpdateSecured", payment.SecuredPayment).Return(nil)
	f.repo.On("InvalidateStatsCache", mock.Anything, "store-1").Return()

	released, err := f.service.ReleasePayment(context.Background(), payment.ID, "store-1", "merchant-admin")

	assert.NoError(t, err)
	assert.Equal(t, confirmedAt, *released.SecuredPayment.DeliveryConfirmedAt)
	assert.Equal(t, "courier-scan", released.SecuredPayment.DeliveryConfirmedBy)
}

func TestReleasePayment_NotHeld(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:      uuid.New(),
		StoreID: "store-1",
		Status:  models.PaymentStatusCompleted,
	}

	f.repo.On("GetByID", payment.ID, "store-1").Return(payment, nil)

	_, err := f.service.ReleasePayment(context.Background(), payment.ID, "store-1", "merchant-admin")

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
	f.repo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestReleasePayment_DisputedIsBlocked(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:      uuid.New(),
		StoreID: "store-1",
		Status:  models.PaymentStatusDisputed,
		SecuredPayment: &models.SecuredPayment{
			IsHeld: true,
		},
	}

	f.repo.On("GetByID", payment.ID, "store-1").Return(payment, nil)

	_, err := f.service.ReleasePayment(context.Background(), payment.ID, "store-1", "merchant-admin")

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestOpenDispute(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:      uuid.New(),
		StoreID: "store-1",
		Status:  models.PaymentStatusHeld,
		SecuredPayment: &models.SecuredPayment{
			IsHeld: true,
		},
	}

	f.repo.On("GetByID", payment.ID, "store-1").Return(payment, nil)
	f.repo.On("CreateDispute", mock.AnythingOfType("*models.Dispute")).Return(nil)
	f.repo.On("Update", payment).Return(nil)
	f.repo.On("UpdateSecured", payment.SecuredPayment).Return(nil)

	dispute, err := f.service.OpenDispute(context.Background(), payment.ID, "store-1", "item never arrived", "buyer")

	assert.NoError(t, err)
	assert.Equal(t, models.DisputeOpen, dispute.Status)
	assert.Equal(t, models.DisputeInitiatorCustomer, dispute.InitiatorType)
	assert.Equal(t, "item never arrived", dispute.Reason)
	assert.Equal(t, models.PaymentStatusDisputed, payment.Status)
	assert.NotNil(t, payment.SecuredPayment.DisputeOpenedAt)
}

func TestOpenDispute_RequiresReason(t *testing.T) {
	f := newPaymentServiceFixture()

	_, err := f.service.OpenDispute(context.Background(), uuid.New(), "store-1", "", "buyer")

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
	f.repo.AssertNotCalled(t, "CreateDispute", mock.Anything)
}

func TestOpenDispute_OnlyHeldPayments(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:      uuid.New(),
		StoreID: "store-1",
		Status:  models.PaymentStatusCompleted,
	}

	f.repo.On("GetByID", payment.ID, "store-1").Return(payment, nil)

	_, err := f.service.OpenDispute(context.Background(), payment.ID, "store-1", "changed my mind", "buyer")

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestConfirmDelivery(t *testing.T) {
	f := newPaymentServiceFixture()
	payment := &models.Payment{
		ID:      uuid.New(),
		StoreID: "store-1",
		Status:  models.PaymentStatusHeld,
		SecuredPayment: &models.SecuredPayment{
			IsHeld: true,
		},
	}

	f.repo.On("GetByID", payment.ID, "store-1").Return(payment, nil)
	f.repo.On("UpdateSecured", payment.SecuredPayment).Return(nil)

	confirmed, err := f.service.ConfirmDelivery(context.Background(), payment.ID, "store-1", "courier-scan")

	assert.NoError(t, err)
	assert.NotNil(t, confirmed.SecuredPayment.DeliveryConfirmedAt)
	assert.Equal(t, "courier-scan", confirmed.SecuredPayment.DeliveryConfirmedBy)
	// Confirming delivery does not release the hold
	assert.True(t, confirmed.SecuredPayment.IsHeld)
	assert.Equal(t, models.PaymentStatusHeld, confirmed.Status)
}
