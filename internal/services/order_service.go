package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/events"
	"github.com/payhuk02/payhula-sub017/internal/gateway"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// OrderItemRequest is one requested line in a new order
type OrderItemRequest struct {
	ProductID uuid.UUID            `json:"productId" binding:"required"`
	Quantity  int                  `json:"quantity" binding:"required,min=1"`
	Metadata  *models.ItemMetadata `json:"metadata,omitempty"`
}

// CreateOrderRequest is the order assembly input
type CreateOrderRequest struct {
	CustomerEmail   string                  `json:"customerEmail" binding:"required,email"`
	CustomerName    string                  `json:"customerName,omitempty"`
	Items           []OrderItemRequest      `json:"items" binding:"required,min=1,dive"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress,omitempty"`
	GiftCardCode    string                  `json:"giftCardCode,omitempty"`
	AffiliateCode   string                  `json:"affiliateCode,omitempty"`
	Provider        models.PaymentProvider  `json:"provider,omitempty"`
	SuccessURL      string                  `json:"successUrl,omitempty"`
	CancelURL       string                  `json:"cancelUrl,omitempty"`
}

// CreateOrderResponse carries the assembled order and the checkout
// redirect the buyer must follow
type CreateOrderResponse struct {
	Order           *models.Order   `json:"order"`
	Payment         *models.Payment `json:"payment"`
	CheckoutURL     string          `json:"checkoutUrl,omitempty"`
	GiftCardApplied float64         `json:"giftCardApplied,omitempty"`
	AmountToPay     float64         `json:"amountToPay"`
	RemainingAmount float64         `json:"remainingAmount"`
}

// OrderService orchestrates the order lifecycle
type OrderService interface {
	CreateOrder(ctx context.Context, storeID string, req *CreateOrderRequest) (*CreateOrderResponse, error)
	GetOrder(id uuid.UUID, storeID string) (*models.Order, error)
	GetOrderByNumber(orderNumber, storeID string) (*models.Order, error)
	ListOrders(filters repository.OrderFilters) ([]models.Order, int64, error)
	UpdateFulfillment(ctx context.Context, id uuid.UUID, storeID string, status models.FulfillmentStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	giftCardRepo repository.GiftCardRepository
	payments     PaymentService
	gateways     GatewayProvider
	dispatcher   WebhookDispatcher
	notifier     NotificationService
	publisher    *events.Publisher
	logger       *logrus.Entry
}

// GatewayProvider resolves a payment gateway for a provider. Satisfied
// by gateway.Factory; an interface here keeps the workflow testable.
type GatewayProvider interface {
	Get(provider models.PaymentProvider) (gateway.PaymentGateway, error)
	Default() (gateway.PaymentGateway, error)
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	giftCardRepo repository.GiftCardRepository,
	payments PaymentService,
	gateways GatewayProvider,
	dispatcher WebhookDispatcher,
	notifier NotificationService,
	publisher *events.Publisher,
	logger *logrus.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		giftCardRepo: giftCardRepo,
		payments:     payments,
		gateways:     gateways,
		dispatcher:   dispatcher,
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger.WithField("component", "order_service"),
	}
}

// CreateOrder runs the full assembly workflow: validation, availability,
// customer resolution, pricing, persistence, payment record, external
// checkout initiation. Every write registers an undo on the compensation
// list; any later failure unwinds the writes in reverse order before the
// error is surfaced.
func (s *orderService) CreateOrder(ctx context.Context, storeID string, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	log := s.logger.WithField("store_id", storeID)

	products, total, err := s.loadAndValidate(storeID, req)
	if err != nil {
		return nil, err
	}

	// Payment options come from the primary (first) product
	opts, err := products[0].GetPaymentOptions()
	if err != nil {
		return nil, NewValidationError("paymentOptions", fmt.Sprintf("invalid payment options: %v", err))
	}

	customer, err := s.customerRepo.FindOrCreate(storeID, req.CustomerEmail, req.CustomerName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	resolution := ResolvePayment(opts, total)

	comp := NewCompensationList(log)

	// Gift card offset applies to the amount due now only
	var giftCardApplied float64
	if req.GiftCardCode != "" {
		applied, err := s.redeemGiftCard(storeID, req.GiftCardCode, &resolution, comp)
		if err != nil {
			return nil, err
		}
		giftCardApplied = applied
	}

	orderNumber, err := s.orderRepo.NextOrderNumber(ctx)
	if err != nil {
		log.WithError(err).Warn("Order number sequence unavailable, using timestamp fallback")
		orderNumber = models.FallbackOrderNumber()
	}

	order := &models.Order{
		StoreID:           storeID,
		OrderNumber:       orderNumber,
		CustomerID:        customer.ID,
		TotalAmount:       resolution.Total,
		Currency:          products[0].Currency,
		PaymentStatus:     models.OrderPaymentPending,
		FulfillmentStatus: models.FulfillmentUnfulfilled,
		PaymentType:       resolution.PaymentType,
		PercentagePaid:    0,
		RemainingAmount:   resolution.RemainingAmount,
		AffiliateCode:     req.AffiliateCode,
	}
	if resolution.PaymentType == models.PaymentTypePercentage {
		order.PercentagePaid = resolution.AmountToPay
	}
	if req.ShippingAddress != nil {
		addr, err := encodeShippingAddress(req.ShippingAddress)
		if err != nil {
			return nil, NewValidationError("shippingAddress", err.Error())
		}
		order.ShippingAddress = addr
	}

	if err := s.orderRepo.Create(order); err != nil {
		comp.Run()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	comp.Add("delete_order", func() error {
		return s.orderRepo.Delete(order.ID, storeID)
	})

	if err := s.createItems(order, products, req.Items, comp); err != nil {
		comp.Run()
		return nil, err
	}

	payment, err := s.payments.CreateForOrder(ctx, CreatePaymentInput{
		StoreID:    storeID,
		OrderID:    order.ID,
		CustomerID: customer.ID,
		Currency:   order.Currency,
		Provider:   req.Provider,
		Resolution: resolution,
	})
	if err != nil {
		if _, partial := err.(*PartialFailureError); !partial {
			comp.Run()
			return nil, err
		}
		// Satellite row failed; primary payment stands, logged upstream
	}
	comp.Add("delete_payment", func() error {
		return s.payments.DeletePayment(payment.ID, storeID)
	})

	resp := &CreateOrderResponse{
		Order:           order,
		Payment:         payment,
		GiftCardApplied: giftCardApplied,
		AmountToPay:     resolution.AmountToPay,
		RemainingAmount: resolution.RemainingAmount,
	}

	// Gift card covering the whole amount due skips the gateway entirely
	if resolution.AmountToPay <= 0 {
		if _, err := s.completeWithoutGateway(ctx, order, payment); err != nil {
			comp.Run()
			return nil, err
		}
		s.postCommit(order, payment)
		return resp, nil
	}

	checkoutURL, err := s.initiateCheckout(ctx, order, payment, customer, req, resolution)
	if err != nil {
		comp.Run()
		return nil, err
	}
	resp.CheckoutURL = checkoutURL

	s.postCommit(order, payment)
	log.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"payment_type": order.PaymentType,
		"amount":       resolution.AmountToPay,
	}).Info("Order created")

	return resp, nil
}

// loadAndValidate fetches the products, enforces shipping and
// availability rules, and computes the order total including insurance
func (s *orderService) loadAndValidate(storeID string, req *CreateOrderRequest) ([]*models.Product, float64, error) {
	products := make([]*models.Product, 0, len(req.Items))
	var total float64
	requiresShipping := false

	for _, item := range req.Items {
		product, err := s.productRepo.GetByID(item.ProductID, storeID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, 0, NewNotFoundError("product", item.ProductID.String())
			}
			return nil, 0, err
		}
		if !product.IsActive {
			return nil, 0, NewValidationError("productId", fmt.Sprintf("product %s is not available for sale", product.Name))
		}

		if product.IsLimitedEdition() {
			sold, err := s.orderRepo.SumCompletedQuantity(product.ID, storeID)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to check edition availability: %w", err)
			}
			available := product.TotalEditions - sold
			if item.Quantity > available {
				return nil, 0, &InsufficientAvailabilityError{
					ProductID:     product.ID.String(),
					Requested:     item.Quantity,
					Available:     available,
					TotalEditions: product.TotalEditions,
				}
			}
		}

		if product.RequiresShipping {
			requiresShipping = true
		}

		total += product.Price*float64(item.Quantity) + product.InsuranceFee*float64(item.Quantity)
		products = append(products, product)
	}

	if requiresShipping && req.ShippingAddress == nil {
		return nil, 0, NewValidationError("shippingAddress", "shipping address is required for physical products")
	}
	if req.ShippingAddress != nil {
		if req.ShippingAddress.Street == "" || req.ShippingAddress.City == "" || req.ShippingAddress.Country == "" {
			return nil, 0, NewValidationError("shippingAddress", "street, city and country are required")
		}
	}

	return products, total, nil
}

// redeemGiftCard applies a gift card to the amount due now and registers
// the refund undo
func (s *orderService) redeemGiftCard(storeID, code string, resolution *PaymentResolution, comp *CompensationList) (float64, error) {
	card, err := s.giftCardRepo.GetByCode(code, storeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, NewNotFoundError("gift card", code)
		}
		return 0, err
	}
	if !card.Usable(time.Now()) {
		return 0, NewValidationError("giftCardCode", "gift card is expired, inactive or empty")
	}

	applied, newAmount := ApplyGiftCard(resolution.AmountToPay, card.RemainingBalance)
	if applied <= 0 {
		return 0, nil
	}

	if err := s.giftCardRepo.Redeem(card, applied); err != nil {
		return 0, err
	}
	comp.Add("refund_gift_card", func() error {
		return s.giftCardRepo.Refund(card, applied)
	})

	resolution.AmountToPay = newAmount
	return applied, nil
}

// createItems writes the order items one by one, registering an undo per
// row so a mid-sequence failure unwinds the already written lines
func (s *orderService) createItems(order *models.Order, products []*models.Product, items []OrderItemRequest, comp *CompensationList) error {
	for i, reqItem := range items {
		product := products[i]

		item := &models.OrderItem{
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductType: product.ProductType,
			ProductName: product.Name,
			Quantity:    reqItem.Quantity,
			UnitPrice:   product.Price,
			TotalPrice:  product.Price * float64(reqItem.Quantity),
		}
		if reqItem.Metadata != nil {
			if reqItem.Metadata.Kind == "" {
				reqItem.Metadata.Kind = product.ProductType
			}
			encoded, err := reqItem.Metadata.Encode()
			if err != nil {
				return NewValidationError("metadata", err.Error())
			}
			item.Metadata = encoded
		}

		if err := s.orderRepo.CreateItem(item); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
		itemID := item.ID
		comp.Add(fmt.Sprintf("delete_item_%d", i), func() error {
			return s.orderRepo.DeleteItem(itemID)
		})
		order.Items = append(order.Items, *item)
	}
	return nil
}

// initiateCheckout opens the hosted checkout page on the external
// gateway and attaches its references to the payment record
func (s *orderService) initiateCheckout(ctx context.Context, order *models.Order, payment *models.Payment, customer *models.Customer, req *CreateOrderRequest, resolution PaymentResolution) (string, error) {
	provider := req.Provider
	var gw gateway.PaymentGateway
	var err error
	if provider == "" {
		gw, err = s.gateways.Default()
	} else {
		gw, err = s.gateways.Get(provider)
	}
	if err != nil {
		return "", NewValidationError("provider", err.Error())
	}

	description := order.Items[0].ProductName
	if len(order.Items) > 1 {
		description = fmt.Sprintf("%s and %d more", description, len(order.Items)-1)
	}

	result, err := gw.InitiateCheckout(ctx, &gateway.CheckoutRequest{
		StoreID:       order.StoreID,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		CustomerID:    customer.ID.String(),
		CustomerEmail: customer.Email,
		CustomerName:  customer.Name,
		Amount:        resolution.AmountToPay,
		Currency:      order.Currency,
		Description:   description,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	})
	if err != nil {
		return "", NewExternalServiceError(string(gw.Provider()), err)
	}

	payment.Provider = gw.Provider()
	if err := s.payments.AttachTransaction(payment, result.TransactionID, result.CheckoutURL); err != nil {
		return "", fmt.Errorf("failed to attach transaction: %w", err)
	}

	return result.CheckoutURL, nil
}

// completeWithoutGateway settles a zero-amount checkout (gift card
// covered everything due now)
func (s *orderService) completeWithoutGateway(ctx context.Context, order *models.Order, payment *models.Payment) (*models.Payment, error) {
	now := time.Now()
	if payment.PaymentType != models.PaymentTypeDeliverySecured {
		payment.Status = models.PaymentStatusCompleted
	}
	payment.PaidAt = &now
	payment.TransactionID = "giftcard-" + order.ID.String()
	if err := s.payments.AttachTransaction(payment, payment.TransactionID, ""); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdatePaymentStatus(order.ID, models.OrderPaymentCompleted, order.StoreID); err != nil {
		return nil, err
	}
	order.PaymentStatus = models.OrderPaymentCompleted
	return payment, nil
}

// postCommit fires the side effects that must not affect the workflow
// outcome: the internal event and the merchant webhooks
func (s *orderService) postCommit(order *models.Order, payment *models.Payment) {
	s.publisher.Publish(models.EventOrderCreated, order.StoreID, order)
	s.dispatcher.Trigger(order.StoreID, models.EventOrderCreated, map[string]interface{}{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"totalAmount": order.TotalAmount,
		"paymentType": order.PaymentType,
		"status":      order.PaymentStatus,
	})
}

// encodeShippingAddress serializes the address into the order's JSONB column
func encodeShippingAddress(addr *models.ShippingAddress) (models.JSONB, error) {
	data, err := json.Marshal(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping address: %w", err)
	}
	return models.JSONB(data), nil
}

// GetOrder retrieves an order by ID
func (s *orderService) GetOrder(id uuid.UUID, storeID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id, storeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("order", id.String())
		}
		return nil, err
	}
	return order, nil
}

// GetOrderByNumber retrieves an order by its human-readable number
func (s *orderService) GetOrderByNumber(orderNumber, storeID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(orderNumber, storeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("order", orderNumber)
		}
		return nil, err
	}
	return order, nil
}

// ListOrders lists orders with filters and pagination
func (s *orderService) ListOrders(filters repository.OrderFilters) ([]models.Order, int64, error) {
	return s.orderRepo.List(filters)
}

// UpdateFulfillment transitions the fulfillment status and fires the
// shipment/return notification pipeline
func (s *orderService) UpdateFulfillment(ctx context.Context, id uuid.UUID, storeID string, status models.FulfillmentStatus) (*models.Order, error) {
	switch status {
	case models.FulfillmentProcessing, models.FulfillmentShipped, models.FulfillmentDelivered, models.FulfillmentReturned:
	default:
		return nil, NewValidationError("status", fmt.Sprintf("invalid fulfillment status %q", status))
	}

	if err := s.orderRepo.UpdateFulfillmentStatus(id, status, storeID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("order", id.String())
		}
		return nil, err
	}

	order, err := s.orderRepo.GetByID(id, storeID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.FulfillmentShipped, models.FulfillmentDelivered:
		go s.notifier.NotifyShipment(context.Background(), order, string(status))
	case models.FulfillmentReturned:
		go s.notifier.NotifyReturn(context.Background(), order, string(status))
	}

	return order, nil
}
