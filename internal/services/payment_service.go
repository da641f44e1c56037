package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/events"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// DefaultHoldDays is how long a delivery-secured payment stays held when
// no release conditions specify otherwise
const DefaultHoldDays = 14

// CreatePaymentInput carries what the order workflow knows when it
// creates the payment record
type CreatePaymentInput struct {
	StoreID    string
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Currency   string
	Provider   models.PaymentProvider
	Resolution PaymentResolution
}

// PaymentService manages payment records and their satellite rows
type PaymentService interface {
	CreateForOrder(ctx context.Context, input CreatePaymentInput) (*models.Payment, error)
	GetPayment(id uuid.UUID, storeID string) (*models.Payment, error)
	ListPayments(filters repository.PaymentFilters) ([]models.Payment, int64, error)
	AttachTransaction(payment *models.Payment, transactionID, checkoutURL string) error
	MarkCompleted(ctx context.Context, transactionID string) (*models.Payment, error)
	MarkFailed(ctx context.Context, transactionID, reason string) (*models.Payment, error)
	ConfirmDelivery(ctx context.Context, paymentID uuid.UUID, storeID, confirmedBy string) (*models.Payment, error)
	ReleasePayment(ctx context.Context, paymentID uuid.UUID, storeID, releasedBy string) (*models.Payment, error)
	OpenDispute(ctx context.Context, paymentID uuid.UUID, storeID, reason, openedBy string) (*models.Dispute, error)
	DeletePayment(id uuid.UUID, storeID string) error
	Stats(ctx context.Context, storeID string) (*models.PaymentStats, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	orderRepo repository.OrderRepository
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPaymentService creates a new payment service
func NewPaymentService(repo repository.PaymentRepository, orderRepo repository.OrderRepository, publisher *events.Publisher, logger *logrus.Logger) PaymentService {
	return &paymentService{
		repo:      repo,
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger.WithField("component", "payment_service"),
	}
}

// CreateForOrder writes the primary payment record and, for percentage
// and delivery-secured flows, the satellite row. Satellite writes happen
// after the primary commit; a satellite failure is surfaced as a
// PartialFailureError and logged, the primary row stands.
func (s *paymentService) CreateForOrder(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	res := input.Resolution

	payment := &models.Payment{
		StoreID:     input.StoreID,
		OrderID:     input.OrderID,
		CustomerID:  input.CustomerID,
		Amount:      res.AmountToPay,
		Currency:    input.Currency,
		Status:      models.PaymentStatusPending,
		PaymentType: res.PaymentType,
		Provider:    input.Provider,
	}
	if res.PaymentType == models.PaymentTypeDeliverySecured {
		payment.Status = models.PaymentStatusHeld
	}

	if err := s.repo.Create(payment); err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	switch res.PaymentType {
	case models.PaymentTypePercentage:
		// The split starts unpaid; MarkCompleted moves the collected
		// share onto it once the gateway confirms.
		partial := &models.PartialPayment{
			PaymentID:       payment.ID,
			TotalAmount:     res.Total,
			AmountPaid:      0,
			AmountRemaining: res.Total,
			PercentageRate:  res.PercentageRate,
		}
		if err := s.repo.CreatePartial(partial); err != nil {
			s.logger.WithError(err).WithField("payment_id", payment.ID).
				Error("Partial payment row failed after primary payment commit")
			return payment, NewPartialFailureError("create_partial_payment", err)
		}
		payment.PartialPayment = partial

	case models.PaymentTypeDeliverySecured:
		heldUntil := time.Now().AddDate(0, 0, DefaultHoldDays)
		secured := &models.SecuredPayment{
			PaymentID:         payment.ID,
			IsHeld:            true,
			HeldUntil:         &heldUntil,
			ReleaseConditions: "delivery_confirmed",
		}
		if err := s.repo.CreateSecured(secured); err != nil {
			s.logger.WithError(err).WithField("payment_id", payment.ID).
				Error("Secured payment row failed after primary payment commit")
			return payment, NewPartialFailureError("create_secured_payment", err)
		}
		payment.SecuredPayment = secured
	}

	return payment, nil
}

// GetPayment retrieves a payment by ID
func (s *paymentService) GetPayment(id uuid.UUID, storeID string) (*models.Payment, error) {
	payment, err := s.repo.GetByID(id, storeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("payment", id.String())
		}
		return nil, err
	}
	return payment, nil
}

// ListPayments lists payments with filters and pagination
func (s *paymentService) ListPayments(filters repository.PaymentFilters) ([]models.Payment, int64, error) {
	return s.repo.List(filters)
}

// AttachTransaction records the gateway references on a payment after
// checkout initiation succeeds
func (s *paymentService) AttachTransaction(payment *models.Payment, transactionID, checkoutURL string) error {
	payment.TransactionID = transactionID
	payment.CheckoutURL = checkoutURL
	return s.repo.Update(payment)
}

// MarkCompleted transitions a payment to completed after the gateway
// confirms the charge, and mirrors the status on the order
func (s *paymentService) MarkCompleted(ctx context.Context, transactionID string) (*models.Payment, error) {
	payment, err := s.repo.GetByTransactionID(transactionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("payment", transactionID)
		}
		return nil, err
	}

	now := time.Now()
	if payment.PaymentType != models.PaymentTypeDeliverySecured {
		payment.Status = models.PaymentStatusCompleted
	}
	payment.PaidAt = &now
	if err := s.repo.Update(payment); err != nil {
		return nil, err
	}

	if payment.PaymentType == models.PaymentTypePercentage && payment.PartialPayment != nil {
		partial := payment.PartialPayment
		partial.AmountPaid = payment.Amount
		partial.AmountRemaining = partial.TotalAmount - payment.Amount
		if err := s.repo.UpdatePartial(partial); err != nil {
			s.logger.WithError(err).WithField("payment_id", payment.ID).
				Error("Partial payment update failed after completion")
		}
	}

	if err := s.orderRepo.UpdatePaymentStatus(payment.OrderID, models.OrderPaymentCompleted, payment.StoreID); err != nil {
		s.logger.WithError(err).WithField("order_id", payment.OrderID).
			Error("Failed to mirror completed status on order")
	}

	s.publisher.Publish(models.EventOrderPaymentCompleted, payment.StoreID, payment)
	return payment, nil
}

// MarkFailed transitions a payment to failed and mirrors it on the order
func (s *paymentService) MarkFailed(ctx context.Context, transactionID, reason string) (*models.Payment, error) {
	payment, err := s.repo.GetByTransactionID(transactionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("payment", transactionID)
		}
		return nil, err
	}

	payment.Status = models.PaymentStatusFailed
	payment.FailureReason = reason
	if err := s.repo.Update(payment); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdatePaymentStatus(payment.OrderID, models.OrderPaymentFailed, payment.StoreID); err != nil {
		s.logger.WithError(err).WithField("order_id", payment.OrderID).
			Error("Failed to mirror failed status on order")
	}

	s.publisher.Publish(models.EventOrderPaymentFailed, payment.StoreID, payment)
	return payment, nil
}

// ConfirmDelivery records delivery confirmation on a held payment. The
// hold is not released automatically; release is a separate action.
func (s *paymentService) ConfirmDelivery(ctx context.Context, paymentID uuid.UUID, storeID, confirmedBy string) (*models.Payment, error) {
	payment, err := s.GetPayment(paymentID, storeID)
	if err != nil {
		return nil, err
	}
	if payment.SecuredPayment == nil {
		return nil, NewValidationError("payment", "payment is not delivery-secured")
	}

	now := time.Now()
	payment.SecuredPayment.DeliveryConfirmedAt = &now
	payment.SecuredPayment.DeliveryConfirmedBy = confirmedBy
	if err := s.repo.UpdateSecured(payment.SecuredPayment); err != nil {
		return nil, err
	}

	return payment, nil
}

// ReleasePayment releases a held delivery-secured payment to the
// merchant. Requires the payment to be held and not disputed. Release
// implies delivery, so the confirmation stamp is set here too unless a
// prior ConfirmDelivery already recorded it.
func (s *paymentService) ReleasePayment(ctx context.Context, paymentID uuid.UUID, storeID, releasedBy string) (*models.Payment, error) {
	payment, err := s.GetPayment(paymentID, storeID)
	if err != nil {
		return nil, err
	}
	if payment.SecuredPayment == nil || !payment.SecuredPayment.IsHeld {
		return nil, NewValidationError("payment", "payment is not held")
	}
	if payment.Status == models.PaymentStatusDisputed {
		return nil, NewValidationError("payment", "cannot release a disputed payment")
	}

	now := time.Now()
	payment.Status = models.PaymentStatusReleased
	payment.SecuredPayment.IsHeld = false
	payment.SecuredPayment.ReleasedAt = &now
	if payment.SecuredPayment.DeliveryConfirmedAt == nil {
		payment.SecuredPayment.DeliveryConfirmedAt = &now
		payment.SecuredPayment.DeliveryConfirmedBy = releasedBy
	}

	if err := s.repo.Update(payment); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSecured(payment.SecuredPayment); err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID).
			Error("Secured row update failed after release")
		return payment, NewPartialFailureError("release_secured_row", err)
	}

	s.repo.InvalidateStatsCache(ctx, storeID)
	s.publisher.Publish(models.EventPaymentReleased, storeID, payment)
	return payment, nil
}

// OpenDispute opens a dispute against a held payment and freezes it in
// disputed status
func (s *paymentService) OpenDispute(ctx context.Context, paymentID uuid.UUID, storeID, reason, openedBy string) (*models.Dispute, error) {
	if reason == "" {
		return nil, NewValidationError("reason", "dispute reason is required")
	}

	payment, err := s.GetPayment(paymentID, storeID)
	if err != nil {
		return nil, err
	}
	if payment.SecuredPayment == nil || !payment.SecuredPayment.IsHeld {
		return nil, NewValidationError("payment", "disputes can only be opened on held payments")
	}

	now := time.Now()
	dispute := &models.Dispute{
		PaymentID:     payment.ID,
		StoreID:       storeID,
		Reason:        reason,
		Status:        models.DisputeOpen,
		InitiatorType: models.DisputeInitiatorCustomer,
		OpenedBy:      openedBy,
	}
	if err := s.repo.CreateDispute(dispute); err != nil {
		return nil, err
	}

	payment.Status = models.PaymentStatusDisputed
	payment.SecuredPayment.DisputeOpenedAt = &now
	if err := s.repo.Update(payment); err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID).
			Error("Payment status update failed after dispute creation")
		return dispute, NewPartialFailureError("dispute_status_update", err)
	}
	if err := s.repo.UpdateSecured(payment.SecuredPayment); err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID).
			Error("Secured row update failed after dispute creation")
	}

	s.publisher.Publish(models.EventPaymentDisputed, storeID, dispute)
	return dispute, nil
}

// DeletePayment hard-deletes a payment record (compensation path)
func (s *paymentService) DeletePayment(id uuid.UUID, storeID string) error {
	return s.repo.Delete(id, storeID)
}

// Stats returns the aggregated payment figures for a store
func (s *paymentService) Stats(ctx context.Context, storeID string) (*models.PaymentStats, error) {
	return s.repo.Stats(ctx, storeID)
}
