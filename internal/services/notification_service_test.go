package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/payhuk02/payhula-sub017/internal/clients"
	"github.com/payhuk02/payhula-sub017/internal/models"
)

type notificationFixture struct {
	alertRepo    *MockAlertRepository
	customerRepo *MockCustomerRepository
	client       *MockNotificationClient
	service      *notificationService
}

func newNotificationFixture(now time.Time) *notificationFixture {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	f := &notificationFixture{
		alertRepo:    new(MockAlertRepository),
		customerRepo: new(MockCustomerRepository),
		client:       new(MockNotificationClient),
	}
	f.service = &notificationService{
		alertRepo:    f.alertRepo,
		customerRepo: f.customerRepo,
		client:       f.client,
		logger:       logger.WithField("component", "notification_service"),
		now:          func() time.Time { return now },
	}
	return f
}

func testProduct() *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		StoreID:  "store-1",
		Name:     "Vinyl Record",
		Currency: "XOF",
	}
}

func TestHandlePriceChange_TargetPriceReached(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	product := testProduct()
	customer := &models.Customer{ID: uuid.New(), StoreID: "store-1", Email: "fan@example.com"}
	alert := models.PriceAlert{
		ID:          uuid.New(),
		StoreID:     "store-1",
		ProductID:   product.ID,
		CustomerID:  customer.ID,
		TargetPrice: 8000,
		IsActive:    true,
	}

	f.alertRepo.On("ActivePriceAlerts", product.ID, "store-1").Return([]models.PriceAlert{alert}, nil)
	f.customerRepo.On("GetByID", customer.ID, "store-1").Return(customer, nil)
	f.client.On("SendPriceAlert", mock.Anything, mock.MatchedBy(func(n *clients.PriceAlertNotification) bool {
		return n.RecipientEmail == "fan@example.com" && n.NewPrice == 7500
	})).Return(nil)
	f.alertRepo.On("MarkPriceAlertNotified", alert.ID, now).Return(nil)

	f.service.HandlePriceChange(context.Background(), product, 10000, 7500)

	f.client.AssertExpectations(t)
	f.alertRepo.AssertExpectations(t)
}

func TestHandlePriceChange_DropPercentReached(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	product := testProduct()
	customer := &models.Customer{ID: uuid.New(), StoreID: "store-1", Email: "fan@example.com"}
	alert := models.PriceAlert{
		ID:          uuid.New(),
		StoreID:     "store-1",
		ProductID:   product.ID,
		CustomerID:  customer.ID,
		DropPercent: 20,
		IsActive:    true,
	}

	f.alertRepo.On("ActivePriceAlerts", product.ID, "store-1").Return([]models.PriceAlert{alert}, nil)
	f.customerRepo.On("GetByID", customer.ID, "store-1").Return(customer, nil)
	f.client.On("SendPriceAlert", mock.Anything, mock.Anything).Return(nil)
	f.alertRepo.On("MarkPriceAlertNotified", alert.ID, now).Return(nil)

	// 25% drop satisfies the 20% threshold
	f.service.HandlePriceChange(context.Background(), product, 10000, 7500)

	f.client.AssertExpectations(t)
}

func TestHandlePriceChange_ThresholdNotReached(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	product := testProduct()
	alert := models.PriceAlert{
		ID:          uuid.New(),
		StoreID:     "store-1",
		ProductID:   product.ID,
		CustomerID:  uuid.New(),
		TargetPrice: 5000,
		IsActive:    true,
	}

	f.alertRepo.On("ActivePriceAlerts", product.ID, "store-1").Return([]models.PriceAlert{alert}, nil)

	f.service.HandlePriceChange(context.Background(), product, 10000, 9500)

	f.client.AssertNotCalled(t, "SendPriceAlert", mock.Anything, mock.Anything)
}

func TestHandlePriceChange_IgnoresIncreases(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)

	f.service.HandlePriceChange(context.Background(), testProduct(), 10000, 12000)

	f.alertRepo.AssertNotCalled(t, "ActivePriceAlerts", mock.Anything, mock.Anything)
}

func TestHandlePriceChange_OncePerDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	earlierToday := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	product := testProduct()
	alert := models.PriceAlert{
		ID:             uuid.New(),
		StoreID:        "store-1",
		ProductID:      product.ID,
		CustomerID:     uuid.New(),
		TargetPrice:    8000,
		IsActive:       true,
		LastNotifiedAt: &earlierToday,
	}

	f.alertRepo.On("ActivePriceAlerts", product.ID, "store-1").Return([]models.PriceAlert{alert}, nil)

	f.service.HandlePriceChange(context.Background(), product, 10000, 7500)

	f.client.AssertNotCalled(t, "SendPriceAlert", mock.Anything, mock.Anything)
}

func TestHandlePriceChange_YesterdayStampFiresAgain(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 3, 9, 23, 50, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	product := testProduct()
	customer := &models.Customer{ID: uuid.New(), StoreID: "store-1", Email: "fan@example.com"}
	alert := models.PriceAlert{
		ID:             uuid.New(),
		StoreID:        "store-1",
		ProductID:      product.ID,
		CustomerID:     customer.ID,
		TargetPrice:    8000,
		IsActive:       true,
		LastNotifiedAt: &yesterday,
	}

	f.alertRepo.On("ActivePriceAlerts", product.ID, "store-1").Return([]models.PriceAlert{alert}, nil)
	f.customerRepo.On("GetByID", customer.ID, "store-1").Return(customer, nil)
	f.client.On("SendPriceAlert", mock.Anything, mock.Anything).Return(nil)
	f.alertRepo.On("MarkPriceAlertNotified", alert.ID, now).Return(nil)

	f.service.HandlePriceChange(context.Background(), product, 10000, 7500)

	f.client.AssertExpectations(t)
}

func TestHandleStockChange_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		oldQty     int
		newQty     int
		shouldFire bool
	}{
		{"out to in stock", 0, 25, true},
		{"out to low stock", 0, 5, true},
		{"out to out", 0, 0, false},
		{"low to in", 5, 25, false},
		{"in to out", 25, 0, false},
		{"in to low", 25, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
			f := newNotificationFixture(now)
			product := testProduct()
			customer := &models.Customer{ID: uuid.New(), StoreID: "store-1", Email: "fan@example.com"}
			alert := models.StockAlert{
				ID:                  uuid.New(),
				StoreID:             "store-1",
				ProductID:           product.ID,
				CustomerID:          customer.ID,
				NotifyOnBackInStock: true,
				NotifyOnLowStock:    true,
				IsActive:            true,
			}

			f.alertRepo.On("ActiveStockAlerts", product.ID, "store-1").Return([]models.StockAlert{alert}, nil).Maybe()
			f.customerRepo.On("GetByID", customer.ID, "store-1").Return(customer, nil).Maybe()
			f.client.On("SendStockAlert", mock.Anything, mock.Anything).Return(nil).Maybe()
			f.alertRepo.On("MarkStockAlertNotified", alert.ID, now).Return(nil).Maybe()

			f.service.HandleStockChange(context.Background(), product, tt.oldQty, tt.newQty)

			if tt.shouldFire {
				f.client.AssertCalled(t, "SendStockAlert", mock.Anything, mock.Anything)
			} else {
				f.client.AssertNotCalled(t, "SendStockAlert", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandleStockChange_LowStockPreferenceOff(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	product := testProduct()
	alert := models.StockAlert{
		ID:                  uuid.New(),
		StoreID:             "store-1",
		ProductID:           product.ID,
		CustomerID:          uuid.New(),
		NotifyOnBackInStock: true,
		NotifyOnLowStock:    false,
		IsActive:            true,
	}

	f.alertRepo.On("ActiveStockAlerts", product.ID, "store-1").Return([]models.StockAlert{alert}, nil)

	// out_to_low transition, subscriber only wants back-in-stock
	f.service.HandleStockChange(context.Background(), product, 0, 5)

	f.client.AssertNotCalled(t, "SendStockAlert", mock.Anything, mock.Anything)
}

func TestNotifyShipment(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	customer := &models.Customer{
		ID:              uuid.New(),
		StoreID:         "store-1",
		Email:           "buyer@example.com",
		Name:            "buyer",
		NotifyShipments: true,
	}
	order := &models.Order{
		ID:          uuid.New(),
		StoreID:     "store-1",
		OrderNumber: "PH-000042",
		CustomerID:  customer.ID,
	}

	f.customerRepo.On("GetByID", customer.ID, "store-1").Return(customer, nil)
	f.alertRepo.On("RecordShipmentNotification", mock.MatchedBy(func(n *models.ShipmentNotification) bool {
		return n.OrderID == order.ID && n.Status == "shipped"
	})).Return(true, nil)
	f.client.On("SendShipmentUpdate", mock.Anything, mock.MatchedBy(func(n *clients.OrderStatusNotification) bool {
		return n.OrderNumber == "PH-000042" && n.Status == "shipped"
	})).Return(nil)

	f.service.NotifyShipment(context.Background(), order, "shipped")

	f.client.AssertExpectations(t)
}

func TestNotifyShipment_AlreadySent(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	customer := &models.Customer{ID: uuid.New(), StoreID: "store-1", Email: "buyer@example.com", NotifyShipments: true}
	order := &models.Order{ID: uuid.New(), StoreID: "store-1", OrderNumber: "PH-000042", CustomerID: customer.ID}

	f.customerRepo.On("GetByID", customer.ID, "store-1").Return(customer, nil)
	f.alertRepo.On("RecordShipmentNotification", mock.Anything).Return(false, nil)

	f.service.NotifyShipment(context.Background(), order, "shipped")

	f.client.AssertNotCalled(t, "SendShipmentUpdate", mock.Anything, mock.Anything)
}

func TestNotifyShipment_PreferenceOff(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	customer := &models.Customer{ID: uuid.New(), StoreID: "store-1", Email: "buyer@example.com", NotifyShipments: false}
	order := &models.Order{ID: uuid.New(), StoreID: "store-1", OrderNumber: "PH-000042", CustomerID: customer.ID}

	f.customerRepo.On("GetByID", customer.ID, "store-1").Return(customer, nil)

	f.service.NotifyShipment(context.Background(), order, "shipped")

	f.alertRepo.AssertNotCalled(t, "RecordShipmentNotification", mock.Anything)
	f.client.AssertNotCalled(t, "SendShipmentUpdate", mock.Anything, mock.Anything)
}

func TestNotifyReturn(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	f := newNotificationFixture(now)
	customer := &models.Customer{
		ID:            uuid.New(),
		StoreID:       "store-1",
		Email:         "buyer@example.com",
		NotifyReturns: true,
	}
	order := &models.Order{ID: uuid.New(), StoreID: "store-1", OrderNumber: "PH-000042", CustomerID: customer.ID}

	f.customerRepo.On("GetByID", customer.ID, "store-1").Return(customer, nil)
	f.alertRepo.On("RecordReturnNotification", mock.MatchedBy(func(n *models.ReturnNotification) bool {
		return n.OrderID == order.ID && n.Status == "returned"
	})).Return(true, nil)
	f.client.On("SendReturnUpdate", mock.Anything, mock.Anything).Return(nil)

	f.service.NotifyReturn(context.Background(), order, "returned")

	f.client.AssertExpectations(t)
}
