package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/payhuk02/payhula-sub017/internal/clients"
	"github.com/payhuk02/payhula-sub017/internal/gateway"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// MockOrderRepository mocks repository.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepository = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateItem(item *models.OrderItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id uuid.UUID, storeID string) (*models.Order, error) {
	args := m.Called(id, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByOrderNumber(orderNumber string, storeID string) (*models.Order, error) {
	args := m.Called(orderNumber, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(filters repository.OrderFilters) ([]models.Order, int64, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Update(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(id uuid.UUID, storeID string) error {
	args := m.Called(id, storeID)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteItem(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdatePaymentStatus(id uuid.UUID, status models.OrderPaymentStatus, storeID string) error {
	args := m.Called(id, status, storeID)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateFulfillmentStatus(id uuid.UUID, status models.FulfillmentStatus, storeID string) error {
	args := m.Called(id, status, storeID)
	return args.Error(0)
}

func (m *MockOrderRepository) AddTimelineEvent(orderID uuid.UUID, event, description string, storeID string) error {
	args := m.Called(orderID, event, description, storeID)
	return args.Error(0)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) SumCompletedQuantity(productID uuid.UUID, storeID string) (int, error) {
	args := m.Called(productID, storeID)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) CountByStore(storeID string) (int64, error) {
	args := m.Called(storeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SumRevenueByStore(storeID string) (float64, error) {
	args := m.Called(storeID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockOrderRepository) RedisHealth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockProductRepository mocks repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepository = (*MockProductRepository)(nil)

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(id uuid.UUID, storeID string) (*models.Product, error) {
	args := m.Called(id, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(filters repository.ProductFilters) ([]models.Product, int64, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdatePrice(id uuid.UUID, price float64, storeID string) error {
	args := m.Called(id, price, storeID)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateStock(id uuid.UUID, quantity int, storeID string) error {
	args := m.Called(id, quantity, storeID)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id uuid.UUID, storeID string) error {
	args := m.Called(id, storeID)
	return args.Error(0)
}

// MockCustomerRepository mocks repository.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

var _ repository.CustomerRepository = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) Create(customer *models.Customer) error {
	args := m.Called(customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(id uuid.UUID, storeID string) (*models.Customer, error) {
	args := m.Called(id, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByEmail(email string, storeID string) (*models.Customer, error) {
	args := m.Called(email, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindOrCreate(storeID, email, name string) (*models.Customer, error) {
	args := m.Called(storeID, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(storeID string, page, limit int) ([]models.Customer, int64, error) {
	args := m.Called(storeID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Update(customer *models.Customer) error {
	args := m.Called(customer)
	return args.Error(0)
}

// MockGiftCardRepository mocks repository.GiftCardRepository
type MockGiftCardRepository struct {
	mock.Mock
}

var _ repository.GiftCardRepository = (*MockGiftCardRepository)(nil)

func (m *MockGiftCardRepository) Create(card *models.GiftCard) error {
	args := m.Called(card)
	return args.Error(0)
}

func (m *MockGiftCardRepository) GetByCode(code string, storeID string) (*models.GiftCard, error) {
	args := m.Called(code, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GiftCard), args.Error(1)
}

func (m *MockGiftCardRepository) Redeem(card *models.GiftCard, amount float64) error {
	args := m.Called(card, amount)
	return args.Error(0)
}

func (m *MockGiftCardRepository) Refund(card *models.GiftCard, amount float64) error {
	args := m.Called(card, amount)
	return args.Error(0)
}

// MockAlertRepository mocks repository.AlertRepository
type MockAlertRepository struct {
	mock.Mock
}

var _ repository.AlertRepository = (*MockAlertRepository)(nil)

func (m *MockAlertRepository) CreatePriceAlert(alert *models.PriceAlert) error {
	args := m.Called(alert)
	return args.Error(0)
}

func (m *MockAlertRepository) CreateStockAlert(alert *models.StockAlert) error {
	args := m.Called(alert)
	return args.Error(0)
}

func (m *MockAlertRepository) ActivePriceAlerts(productID uuid.UUID, storeID string) ([]models.PriceAlert, error) {
	args := m.Called(productID, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PriceAlert), args.Error(1)
}

func (m *MockAlertRepository) ActiveStockAlerts(productID uuid.UUID, storeID string) ([]models.StockAlert, error) {
	args := m.Called(productID, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockAlert), args.Error(1)
}

func (m *MockAlertRepository) MarkPriceAlertNotified(id uuid.UUID, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

func (m *MockAlertRepository) MarkStockAlertNotified(id uuid.UUID, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

func (m *MockAlertRepository) RecordShipmentNotification(n *models.ShipmentNotification) (bool, error) {
	args := m.Called(n)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) RecordReturnNotification(n *models.ReturnNotification) (bool, error) {
	args := m.Called(n)
	return args.Bool(0), args.Error(1)
}

// MockPaymentRepository mocks repository.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

var _ repository.PaymentRepository = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) Create(payment *models.Payment) error {
	args := m.Called(payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CreatePartial(partial *models.PartialPayment) error {
	args := m.Called(partial)
	return args.Error(0)
}

func (m *MockPaymentRepository) CreateSecured(secured *models.SecuredPayment) error {
	args := m.Called(secured)
	return args.Error(0)
}

func (m *MockPaymentRepository) CreateDispute(dispute *models.Dispute) error {
	args := m.Called(dispute)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(id uuid.UUID, storeID string) (*models.Payment, error) {
	args := m.Called(id, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByOrderID(orderID uuid.UUID, storeID string) (*models.Payment, error) {
	args := m.Called(orderID, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByTransactionID(transactionID string) (*models.Payment, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(filters repository.PaymentFilters) ([]models.Payment, int64, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Update(payment *models.Payment) error {
	args := m.Called(payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePartial(partial *models.PartialPayment) error {
	args := m.Called(partial)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateSecured(secured *models.SecuredPayment) error {
	args := m.Called(secured)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(id uuid.UUID, storeID string) error {
	args := m.Called(id, storeID)
	return args.Error(0)
}

func (m *MockPaymentRepository) Stats(ctx context.Context, storeID string) (*models.PaymentStats, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentStats), args.Error(1)
}

func (m *MockPaymentRepository) InvalidateStatsCache(ctx context.Context, storeID string) {
	m.Called(ctx, storeID)
}

// MockPaymentService mocks PaymentService
type MockPaymentService struct {
	mock.Mock
}

var _ PaymentService = (*MockPaymentService)(nil)

func (m *MockPaymentService) CreateForOrder(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) GetPayment(id uuid.UUID, storeID string) (*models.Payment, error) {
	args := m.Called(id, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) ListPayments(filters repository.PaymentFilters) ([]models.Payment, int64, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentService) AttachTransaction(payment *models.Payment, transactionID, checkoutURL string) error {
	args := m.Called(payment, transactionID, checkoutURL)
	return args.Error(0)
}

func (m *MockPaymentService) MarkCompleted(ctx context.Context, transactionID string) (*models.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) MarkFailed(ctx context.Context, transactionID, reason string) (*models.Payment, error) {
	args := m.Called(ctx, transactionID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) ConfirmDelivery(ctx context.Context, paymentID uuid.UUID, storeID, confirmedBy string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, storeID, confirmedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) ReleasePayment(ctx context.Context, paymentID uuid.UUID, storeID, releasedBy string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, storeID, releasedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) OpenDispute(ctx context.Context, paymentID uuid.UUID, storeID, reason, openedBy string) (*models.Dispute, error) {
	args := m.Called(ctx, paymentID, storeID, reason, openedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *MockPaymentService) DeletePayment(id uuid.UUID, storeID string) error {
	args := m.Called(id, storeID)
	return args.Error(0)
}

func (m *MockPaymentService) Stats(ctx context.Context, storeID string) (*models.PaymentStats, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentStats), args.Error(1)
}

// MockPaymentGateway mocks gateway.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

var _ gateway.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Provider() models.PaymentProvider {
	args := m.Called()
	return args.Get(0).(models.PaymentProvider)
}

func (m *MockPaymentGateway) InitiateCheckout(ctx context.Context, req *gateway.CheckoutRequest) (*gateway.CheckoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CheckoutResult), args.Error(1)
}

func (m *MockPaymentGateway) VerifyWebhook(payload []byte, signature string) error {
	args := m.Called(payload, signature)
	return args.Error(0)
}

func (m *MockPaymentGateway) ProcessWebhook(ctx context.Context, payload []byte) (*gateway.WebhookEvent, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.WebhookEvent), args.Error(1)
}

// MockGatewayProvider mocks GatewayProvider
type MockGatewayProvider struct {
	mock.Mock
}

var _ GatewayProvider = (*MockGatewayProvider)(nil)

func (m *MockGatewayProvider) Get(provider models.PaymentProvider) (gateway.PaymentGateway, error) {
	args := m.Called(provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(gateway.PaymentGateway), args.Error(1)
}

func (m *MockGatewayProvider) Default() (gateway.PaymentGateway, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(gateway.PaymentGateway), args.Error(1)
}

// MockWebhookDispatcher mocks WebhookDispatcher
type MockWebhookDispatcher struct {
	mock.Mock
}

var _ WebhookDispatcher = (*MockWebhookDispatcher)(nil)

func (m *MockWebhookDispatcher) Trigger(storeID, event string, payload map[string]interface{}) {
	m.Called(storeID, event, payload)
}

// MockNotificationService mocks NotificationService
type MockNotificationService struct {
	mock.Mock
}

var _ NotificationService = (*MockNotificationService)(nil)

func (m *MockNotificationService) HandlePriceChange(ctx context.Context, product *models.Product, oldPrice, newPrice float64) {
	m.Called(ctx, product, oldPrice, newPrice)
}

func (m *MockNotificationService) HandleStockChange(ctx context.Context, product *models.Product, oldQty, newQty int) {
	m.Called(ctx, product, oldQty, newQty)
}

func (m *MockNotificationService) NotifyShipment(ctx context.Context, order *models.Order, status string) {
	m.Called(ctx, order, status)
}

func (m *MockNotificationService) NotifyReturn(ctx context.Context, order *models.Order, status string) {
	m.Called(ctx, order, status)
}

// MockNotificationClient mocks clients.NotificationClient
type MockNotificationClient struct {
	mock.Mock
}

var _ clients.NotificationClient = (*MockNotificationClient)(nil)

func (m *MockNotificationClient) SendPriceAlert(ctx context.Context, n *clients.PriceAlertNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationClient) SendStockAlert(ctx context.Context, n *clients.StockAlertNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationClient) SendShipmentUpdate(ctx context.Context, n *clients.OrderStatusNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationClient) SendReturnUpdate(ctx context.Context, n *clients.OrderStatusNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
