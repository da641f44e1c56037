package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// ProductService manages the catalog and fires the notification
// pipelines on price and stock changes
type ProductService interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(id uuid.UUID, storeID string) (*models.Product, error)
	ListProducts(filters repository.ProductFilters) ([]models.Product, int64, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, storeID string, newPrice float64) (*models.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, storeID string, newQuantity int) (*models.Product, error)
	DeleteProduct(id uuid.UUID, storeID string) error
}

type productService struct {
	repo       repository.ProductRepository
	notifier   NotificationService
	dispatcher WebhookDispatcher
	logger     *logrus.Entry
}

// NewProductService creates a product service
func NewProductService(repo repository.ProductRepository, notifier NotificationService, dispatcher WebhookDispatcher, logger *logrus.Logger) ProductService {
	return &productService{
		repo:       repo,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger.WithField("component", "product_service"),
	}
}

// CreateProduct validates and persists a new product
func (s *productService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return NewValidationError("name", "product name is required")
	}
	if product.Price < 0 {
		return NewValidationError("price", "price cannot be negative")
	}
	switch product.ProductType {
	case models.ProductTypeDigital, models.ProductTypePhysical, models.ProductTypeService,
		models.ProductTypeCourse, models.ProductTypeArtist:
	default:
		return NewValidationError("productType", "unknown product type")
	}
	if product.Currency == "" {
		product.Currency = "XOF"
	}
	if _, err := product.GetPaymentOptions(); err != nil {
		return NewValidationError("paymentOptions", err.Error())
	}

	return s.repo.Create(product)
}

// GetProduct retrieves a product
func (s *productService) GetProduct(id uuid.UUID, storeID string) (*models.Product, error) {
	product, err := s.repo.GetByID(id, storeID)
	if err != nil {
		return nil, NewNotFoundError("product", id.String())
	}
	return product, nil
}

// ListProducts lists products with filters
func (s *productService) ListProducts(filters repository.ProductFilters) ([]models.Product, int64, error) {
	return s.repo.List(filters)
}

// UpdatePrice changes the product price and, when it dropped, fires the
// price alert pipeline in the background
func (s *productService) UpdatePrice(ctx context.Context, id uuid.UUID, storeID string, newPrice float64) (*models.Product, error) {
	if newPrice < 0 {
		return nil, NewValidationError("price", "price cannot be negative")
	}

	product, err := s.GetProduct(id, storeID)
	if err != nil {
		return nil, err
	}
	oldPrice := product.Price
	if oldPrice == newPrice {
		return product, nil
	}

	if err := s.repo.UpdatePrice(id, newPrice, storeID); err != nil {
		return nil, err
	}
	product.Price = newPrice

	go s.notifier.HandlePriceChange(context.Background(), product, oldPrice, newPrice)
	s.dispatcher.Trigger(storeID, models.EventProductPriceChanged, map[string]interface{}{
		"productId": id,
		"oldPrice":  oldPrice,
		"newPrice":  newPrice,
	})

	return product, nil
}

// UpdateStock changes the stock quantity and fires the stock alert
// pipeline in the background
func (s *productService) UpdateStock(ctx context.Context, id uuid.UUID, storeID string, newQuantity int) (*models.Product, error) {
	if newQuantity < 0 {
		return nil, NewValidationError("stockQuantity", "stock cannot be negative")
	}

	product, err := s.GetProduct(id, storeID)
	if err != nil {
		return nil, err
	}
	oldQuantity := product.StockQuantity
	if oldQuantity == newQuantity {
		return product, nil
	}

	if err := s.repo.UpdateStock(id, newQuantity, storeID); err != nil {
		return nil, err
	}
	product.StockQuantity = newQuantity

	go s.notifier.HandleStockChange(context.Background(), product, oldQuantity, newQuantity)
	s.dispatcher.Trigger(storeID, models.EventProductStockChanged, map[string]interface{}{
		"productId":   id,
		"oldQuantity": oldQuantity,
		"newQuantity": newQuantity,
	})

	return product, nil
}

// DeleteProduct soft-deletes a product
func (s *productService) DeleteProduct(id uuid.UUID, storeID string) error {
	if err := s.repo.Delete(id, storeID); err != nil {
		return NewNotFoundError("product", id.String())
	}
	return nil
}
