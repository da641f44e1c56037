package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uuid.UUID, storeID string) (*models.Customer, error)
	GetByEmail(email string, storeID string) (*models.Customer, error)
	FindOrCreate(storeID, email, name string) (*models.Customer, error)
	List(storeID string, page, limit int) ([]models.Customer, int64, error)
	Update(customer *models.Customer) error
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create inserts a customer row
func (r *customerRepository) Create(customer *models.Customer) error {
	if err := r.db.Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer scoped to its store
func (r *customerRepository) GetByID(id uuid.UUID, storeID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("store_id = ?", storeID).First(&customer, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

// GetByEmail retrieves a customer by store-scoped email (case-insensitive)
func (r *customerRepository) GetByEmail(email string, storeID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("store_id = ? AND LOWER(email) = ?", storeID, strings.ToLower(email)).
		First(&customer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}
	return &customer, nil
}

// FindOrCreate resolves a customer by (store, email), creating the row
// when none exists. Name defaults from the email local part on create.
func (r *customerRepository) FindOrCreate(storeID, email, name string) (*models.Customer, error) {
	existing, err := r.GetByEmail(email, storeID)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	customer := &models.Customer{
		StoreID: storeID,
		Email:   strings.ToLower(email),
		Name:    name,
	}
	if err := r.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// List retrieves a store's customers with pagination
func (r *customerRepository) List(storeID string, page, limit int) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	query := r.db.Model(&models.Customer{}).Where("store_id = ?", storeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, total, nil
}

// Update saves changes to a customer
func (r *customerRepository) Update(customer *models.Customer) error {
	if err := r.db.Save(customer).Error; err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}
