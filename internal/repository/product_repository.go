package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uuid.UUID, storeID string) (*models.Product, error)
	List(filters ProductFilters) ([]models.Product, int64, error)
	Update(product *models.Product) error
	UpdatePrice(id uuid.UUID, price float64, storeID string) error
	UpdateStock(id uuid.UUID, quantity int, storeID string) error
	Delete(id uuid.UUID, storeID string) error
}

// ProductFilters represents filters for querying products
type ProductFilters struct {
	StoreID     string
	ProductType *models.ProductType
	ActiveOnly  bool
	Page        int
	Limit       int
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a product row
func (r *productRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a product scoped to its store
func (r *productRepository) GetByID(id uuid.UUID, storeID string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("store_id = ?", storeID).First(&product, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// List retrieves products matching the filters with pagination
func (r *productRepository) List(filters ProductFilters) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{}).Where("store_id = ?", filters.StoreID)
	if filters.ProductType != nil {
		query = query.Where("product_type = ?", *filters.ProductType)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = 20
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// Update saves changes to a product
func (r *productRepository) Update(product *models.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// UpdatePrice sets only the price column
func (r *productRepository) UpdatePrice(id uuid.UUID, price float64, storeID string) error {
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("price", price)
	if result.Error != nil {
		return fmt.Errorf("failed to update price: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStock sets only the stock quantity column
func (r *productRepository) UpdateStock(id uuid.UUID, quantity int, storeID string) error {
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("stock_quantity", quantity)
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft-deletes a product
func (r *productRepository) Delete(id uuid.UUID, storeID string) error {
	result := r.db.Where("store_id = ?", storeID).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
