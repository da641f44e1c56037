package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// Cache TTL constants for orders
const (
	OrderCacheTTL     = 10 * time.Minute // Single order lookups
	OrderListCacheTTL = 2 * time.Minute  // Order lists - frequent changes
)

const orderKeyPrefix = "payhula:orders:"

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(order *models.Order) error
	CreateItem(item *models.OrderItem) error
	GetByID(id uuid.UUID, storeID string) (*models.Order, error)
	GetByOrderNumber(orderNumber string, storeID string) (*models.Order, error)
	List(filters OrderFilters) ([]models.Order, int64, error)
	Update(order *models.Order) error
	Delete(id uuid.UUID, storeID string) error
	DeleteItem(id uuid.UUID) error
	UpdatePaymentStatus(id uuid.UUID, status models.OrderPaymentStatus, storeID string) error
	UpdateFulfillmentStatus(id uuid.UUID, status models.FulfillmentStatus, storeID string) error
	AddTimelineEvent(orderID uuid.UUID, event, description string, storeID string) error
	NextOrderNumber(ctx context.Context) (string, error)
	SumCompletedQuantity(productID uuid.UUID, storeID string) (int, error)
	CountByStore(storeID string) (int64, error)
	SumRevenueByStore(storeID string) (float64, error)
	RedisHealth(ctx context.Context) error
}

// OrderFilters represents filters for querying orders
type OrderFilters struct {
	StoreID       string
	CustomerID    *uuid.UUID
	PaymentStatus *models.OrderPaymentStatus
	PaymentType   *models.PaymentType
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	Limit         int
}

type orderRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewOrderRepository creates a new order repository with optional Redis caching
func NewOrderRepository(db *gorm.DB, redisClient *redis.Client) OrderRepository {
	return &orderRepository{db: db, redis: redisClient}
}

// generateOrderCacheKey creates a cache key for order lookups by ID
func generateOrderCacheKey(storeID string, orderID uuid.UUID) string {
	return fmt.Sprintf("%sorder:%s:%s", orderKeyPrefix, storeID, orderID.String())
}

// generateOrderNumberCacheKey creates a cache key for order lookups by number
func generateOrderNumberCacheKey(storeID string, orderNumber string) string {
	return fmt.Sprintf("%sorder:number:%s:%s", orderKeyPrefix, storeID, orderNumber)
}

// invalidateOrderCaches removes all cached entries related to an order
func (r *orderRepository) invalidateOrderCaches(ctx context.Context, storeID string, orderID uuid.UUID, orderNumber string) {
	if r.redis == nil {
		return
	}

	_ = r.redis.Del(ctx, generateOrderCacheKey(storeID, orderID)).Err()
	if orderNumber != "" {
		_ = r.redis.Del(ctx, generateOrderNumberCacheKey(storeID, orderNumber)).Err()
	}

	// List caches for this store
	pattern := fmt.Sprintf("%sorder:list:%s:*", orderKeyPrefix, storeID)
	iter := r.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
}

// RedisHealth returns the health status of the Redis connection
func (r *orderRepository) RedisHealth(ctx context.Context) error {
	if r.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return r.redis.Ping(ctx).Err()
}

// Create creates a new order with its items and initial timeline event
func (r *orderRepository) Create(order *models.Order) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		timeline := models.OrderTimeline{
			OrderID:     order.ID,
			Event:       "order_created",
			Description: fmt.Sprintf("Order %s has been created", order.OrderNumber),
			Timestamp:   time.Now(),
			CreatedBy:   "system",
		}
		if err := tx.Create(&timeline).Error; err != nil {
			return fmt.Errorf("failed to create timeline event: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.invalidateOrderCaches(context.Background(), order.StoreID, order.ID, order.OrderNumber)
	return nil
}

// CreateItem inserts a single order item row
func (r *orderRepository) CreateItem(item *models.OrderItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

// GetByID retrieves an order by ID with items and timeline (with caching)
func (r *orderRepository) GetByID(id uuid.UUID, storeID string) (*models.Order, error) {
	ctx := context.Background()
	cacheKey := generateOrderCacheKey(storeID, id)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var order models.Order
			if err := json.Unmarshal([]byte(val), &order); err == nil {
				return &order, nil
			}
		}
	}

	var order models.Order
	err := r.db.Preload("Items").
		Preload("Timeline").
		Where("store_id = ?", storeID).
		First(&order, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(order); marshalErr == nil {
			r.redis.Set(ctx, cacheKey, data, OrderCacheTTL)
		}
	}

	return &order, nil
}

// GetByOrderNumber retrieves an order by order number (with caching)
func (r *orderRepository) GetByOrderNumber(orderNumber string, storeID string) (*models.Order, error) {
	ctx := context.Background()
	cacheKey := generateOrderNumberCacheKey(storeID, orderNumber)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var order models.Order
			if err := json.Unmarshal([]byte(val), &order); err == nil {
				return &order, nil
			}
		}
	}

	var order models.Order
	err := r.db.Preload("Items").
		Preload("Timeline").
		Where("store_id = ? AND order_number = ?", storeID, orderNumber).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get order by number: %w", err)
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(order); marshalErr == nil {
			r.redis.Set(ctx, cacheKey, data, OrderCacheTTL)
		}
	}

	return &order, nil
}

// List retrieves orders matching the filters with pagination
func (r *orderRepository) List(filters OrderFilters) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.Model(&models.Order{}).Where("store_id = ?", filters.StoreID)

	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.PaymentType != nil {
		query = query.Where("payment_type = ?", *filters.PaymentType)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// Update saves changes to an order and invalidates its caches
func (r *orderRepository) Update(order *models.Order) error {
	if err := r.db.Save(order).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	r.invalidateOrderCaches(context.Background(), order.StoreID, order.ID, order.OrderNumber)
	return nil
}

// Delete hard-deletes an order row. Used by compensation when a later
// workflow step fails; cascades remove items and timeline.
func (r *orderRepository) Delete(id uuid.UUID, storeID string) error {
	result := r.db.Unscoped().Where("store_id = ?", storeID).Delete(&models.Order{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete order: %w", result.Error)
	}
	r.invalidateOrderCaches(context.Background(), storeID, id, "")
	return nil
}

// DeleteItem hard-deletes a single order item row (compensation path)
func (r *orderRepository) DeleteItem(id uuid.UUID) error {
	if err := r.db.Unscoped().Delete(&models.OrderItem{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	return nil
}

// UpdatePaymentStatus sets the payment status and records a timeline event
func (r *orderRepository) UpdatePaymentStatus(id uuid.UUID, status models.OrderPaymentStatus, storeID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("id = ? AND store_id = ?", id, storeID).
			Update("payment_status", status)
		if result.Error != nil {
			return fmt.Errorf("failed to update payment status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		timeline := models.OrderTimeline{
			OrderID:     id,
			Event:       "payment_status_changed",
			Description: fmt.Sprintf("Payment status changed to %s", status),
			Timestamp:   time.Now(),
			CreatedBy:   "system",
		}
		return tx.Create(&timeline).Error
	})
	if err != nil {
		return err
	}

	r.invalidateOrderCaches(context.Background(), storeID, id, "")
	return nil
}

// UpdateFulfillmentStatus sets the fulfillment status and records a timeline event
func (r *orderRepository) UpdateFulfillmentStatus(id uuid.UUID, status models.FulfillmentStatus, storeID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("id = ? AND store_id = ?", id, storeID).
			Update("fulfillment_status", status)
		if result.Error != nil {
			return fmt.Errorf("failed to update fulfillment status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		timeline := models.OrderTimeline{
			OrderID:     id,
			Event:       "fulfillment_status_changed",
			Description: fmt.Sprintf("Fulfillment status changed to %s", status),
			Timestamp:   time.Now(),
			CreatedBy:   "system",
		}
		return tx.Create(&timeline).Error
	})
	if err != nil {
		return err
	}

	r.invalidateOrderCaches(context.Background(), storeID, id, "")
	return nil
}

// AddTimelineEvent appends a lifecycle event to an order's timeline
func (r *orderRepository) AddTimelineEvent(orderID uuid.UUID, event, description string, storeID string) error {
	timeline := models.OrderTimeline{
		OrderID:     orderID,
		Event:       event,
		Description: description,
		Timestamp:   time.Now(),
		CreatedBy:   "system",
	}
	if err := r.db.Create(&timeline).Error; err != nil {
		return fmt.Errorf("failed to add timeline event: %w", err)
	}
	r.invalidateOrderCaches(context.Background(), storeID, orderID, "")
	return nil
}

// NextOrderNumber returns the next order number from the database
// sequence. Callers fall back to a timestamp number when this fails.
func (r *orderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	var seq int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval('order_number_seq')").
		Scan(&seq).Error
	if err != nil {
		return "", fmt.Errorf("failed to fetch order number sequence: %w", err)
	}
	return fmt.Sprintf("PH-%06d", seq), nil
}

// SumCompletedQuantity returns the total quantity of a product sold in
// completed orders. Used for the limited-edition availability check;
// the read is advisory, concurrent orders can both pass it.
func (r *orderRepository) SumCompletedQuantity(productID uuid.UUID, storeID string) (int, error) {
	var sold int
	err := r.db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ?", productID).
		Where("orders.store_id = ? AND orders.payment_status = ?", storeID, models.OrderPaymentCompleted).
		Scan(&sold).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum completed quantity: %w", err)
	}
	return sold, nil
}

// CountByStore returns the number of orders in a store
func (r *orderRepository) CountByStore(storeID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// SumRevenueByStore sums the total amount of completed orders in a store
func (r *orderRepository) SumRevenueByStore(storeID string) (float64, error) {
	var revenue float64
	err := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("store_id = ? AND payment_status = ?", storeID, models.OrderPaymentCompleted).
		Scan(&revenue).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return revenue, nil
}
