package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// Cache TTL constants for payments
const (
	PaymentCacheTTL      = 10 * time.Minute
	PaymentListCacheTTL  = 2 * time.Minute
	PaymentStatsCacheTTL = 5 * time.Minute
)

const paymentKeyPrefix = "payhula:payments:"

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(payment *models.Payment) error
	CreatePartial(partial *models.PartialPayment) error
	CreateSecured(secured *models.SecuredPayment) error
	CreateDispute(dispute *models.Dispute) error
	GetByID(id uuid.UUID, storeID string) (*models.Payment, error)
	GetByOrderID(orderID uuid.UUID, storeID string) (*models.Payment, error)
	GetByTransactionID(transactionID string) (*models.Payment, error)
	List(filters PaymentFilters) ([]models.Payment, int64, error)
	Update(payment *models.Payment) error
	UpdatePartial(partial *models.PartialPayment) error
	UpdateSecured(secured *models.SecuredPayment) error
	Delete(id uuid.UUID, storeID string) error
	Stats(ctx context.Context, storeID string) (*models.PaymentStats, error)
	InvalidateStatsCache(ctx context.Context, storeID string)
}

// PaymentFilters represents filters for querying payments
type PaymentFilters struct {
	StoreID     string
	CustomerID  *uuid.UUID
	Status      *models.PaymentStatus
	PaymentType *models.PaymentType
	Page        int
	Limit       int
}

type paymentRepository struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *logrus.Entry
}

// NewPaymentRepository creates a new payment repository with optional Redis caching
func NewPaymentRepository(db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) PaymentRepository {
	return &paymentRepository{
		db:     db,
		redis:  redisClient,
		logger: logger.WithField("component", "payment_repository"),
	}
}

func generatePaymentCacheKey(storeID string, paymentID uuid.UUID) string {
	return fmt.Sprintf("%spayment:%s:%s", paymentKeyPrefix, storeID, paymentID.String())
}

func generatePaymentStatsCacheKey(storeID string) string {
	return fmt.Sprintf("%sstats:%s", paymentKeyPrefix, storeID)
}

// invalidatePaymentCaches removes cached entries related to a payment,
// including the store's list and stats caches
func (r *paymentRepository) invalidatePaymentCaches(ctx context.Context, storeID string, paymentID uuid.UUID) {
	if r.redis == nil {
		return
	}

	_ = r.redis.Del(ctx, generatePaymentCacheKey(storeID, paymentID)).Err()
	_ = r.redis.Del(ctx, generatePaymentStatsCacheKey(storeID)).Err()

	pattern := fmt.Sprintf("%spayment:list:%s:*", paymentKeyPrefix, storeID)
	iter := r.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
}

// InvalidateStatsCache drops the cached stats for a store so the next
// read recomputes them
func (r *paymentRepository) InvalidateStatsCache(ctx context.Context, storeID string) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, generatePaymentStatsCacheKey(storeID)).Err()
}

// Create inserts the primary payment record
func (r *paymentRepository) Create(payment *models.Payment) error {
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	r.invalidatePaymentCaches(context.Background(), payment.StoreID, payment.ID)
	return nil
}

// CreatePartial inserts the percentage-split satellite row
func (r *paymentRepository) CreatePartial(partial *models.PartialPayment) error {
	if err := r.db.Create(partial).Error; err != nil {
		return fmt.Errorf("failed to create partial payment: %w", err)
	}
	return nil
}

// CreateSecured inserts the delivery-hold satellite row
func (r *paymentRepository) CreateSecured(secured *models.SecuredPayment) error {
	if err := r.db.Create(secured).Error; err != nil {
		return fmt.Errorf("failed to create secured payment: %w", err)
	}
	return nil
}

// CreateDispute inserts a dispute row against a payment
func (r *paymentRepository) CreateDispute(dispute *models.Dispute) error {
	if err := r.db.Create(dispute).Error; err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}
	r.invalidatePaymentCaches(context.Background(), dispute.StoreID, dispute.PaymentID)
	return nil
}

// GetByID retrieves a payment with its satellite rows (with caching)
func (r *paymentRepository) GetByID(id uuid.UUID, storeID string) (*models.Payment, error) {
	ctx := context.Background()
	cacheKey := generatePaymentCacheKey(storeID, id)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var payment models.Payment
			if err := json.Unmarshal([]byte(val), &payment); err == nil {
				return &payment, nil
			}
		}
	}

	var payment models.Payment
	err := r.db.Preload("PartialPayment").
		Preload("SecuredPayment").
		Preload("Disputes").
		Where("store_id = ?", storeID).
		First(&payment, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(payment); marshalErr == nil {
			r.redis.Set(ctx, cacheKey, data, PaymentCacheTTL)
		}
	}

	return &payment, nil
}

// GetByOrderID retrieves the payment attached to an order
func (r *paymentRepository) GetByOrderID(orderID uuid.UUID, storeID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Preload("PartialPayment").
		Preload("SecuredPayment").
		Preload("Disputes").
		Where("order_id = ? AND store_id = ?", orderID, storeID).
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get payment by order: %w", err)
	}
	return &payment, nil
}

// GetByTransactionID retrieves a payment by its gateway transaction
// reference. Used by the payment webhook callback, which has no store
// context of its own.
func (r *paymentRepository) GetByTransactionID(transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Preload("PartialPayment").
		Preload("SecuredPayment").
		Where("transaction_id = ?", transactionID).
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get payment by transaction: %w", err)
	}
	return &payment, nil
}

// List retrieves payments matching the filters with pagination
func (r *paymentRepository) List(filters PaymentFilters) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	query := r.db.Model(&models.Payment{}).Where("store_id = ?", filters.StoreID)

	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaymentType != nil {
		query = query.Where("payment_type = ?", *filters.PaymentType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = 20
	}

	err := query.Preload("PartialPayment").
		Preload("SecuredPayment").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, total, nil
}

// Update saves changes to a payment and invalidates its caches
func (r *paymentRepository) Update(payment *models.Payment) error {
	if err := r.db.Save(payment).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	r.invalidatePaymentCaches(context.Background(), payment.StoreID, payment.ID)
	return nil
}

// UpdatePartial saves changes to a percentage-split satellite row
func (r *paymentRepository) UpdatePartial(partial *models.PartialPayment) error {
	if err := r.db.Save(partial).Error; err != nil {
		return fmt.Errorf("failed to update partial payment: %w", err)
	}
	return nil
}

// UpdateSecured saves changes to a secured-payment satellite row
func (r *paymentRepository) UpdateSecured(secured *models.SecuredPayment) error {
	if err := r.db.Save(secured).Error; err != nil {
		return fmt.Errorf("failed to update secured payment: %w", err)
	}
	return nil
}

// Delete hard-deletes a payment row (compensation path); cascades remove
// satellite rows
func (r *paymentRepository) Delete(id uuid.UUID, storeID string) error {
	result := r.db.Unscoped().Where("store_id = ?", storeID).Delete(&models.Payment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment: %w", result.Error)
	}
	r.invalidatePaymentCaches(context.Background(), storeID, id)
	return nil
}

// Stats aggregates payment figures for a store. The nine sub-queries run
// concurrently and each is individually fault-tolerant: a failed query
// is logged and contributes zero to its field rather than failing the
// whole aggregation.
func (r *paymentRepository) Stats(ctx context.Context, storeID string) (*models.PaymentStats, error) {
	cacheKey := generatePaymentStatsCacheKey(storeID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var stats models.PaymentStats
			if err := json.Unmarshal([]byte(val), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats := &models.PaymentStats{}
	var wg sync.WaitGroup

	countQuery := func(dest *int64, name string, conds func(*gorm.DB) *gorm.DB) {
		defer wg.Done()
		query := conds(r.db.WithContext(ctx).Model(&models.Payment{}).Where("store_id = ?", storeID))
		if err := query.Count(dest).Error; err != nil {
			r.logger.WithError(err).WithField("query", name).Warn("Payment stats sub-query failed")
			*dest = 0
		}
	}
	sumQuery := func(dest *float64, name, selectExpr string, conds func(*gorm.DB) *gorm.DB) {
		defer wg.Done()
		query := conds(r.db.WithContext(ctx).Model(&models.Payment{}).Where("payments.store_id = ?", storeID))
		if err := query.Select(selectExpr).Scan(dest).Error; err != nil {
			r.logger.WithError(err).WithField("query", name).Warn("Payment stats sub-query failed")
			*dest = 0
		}
	}

	wg.Add(9)
	go countQuery(&stats.TotalPayments, "total", func(q *gorm.DB) *gorm.DB { return q })
	go countQuery(&stats.CompletedPayments, "completed", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.PaymentStatusCompleted)
	})
	go countQuery(&stats.PendingPayments, "pending", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.PaymentStatusPending)
	})
	go countQuery(&stats.FailedPayments, "failed", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.PaymentStatusFailed)
	})
	go countQuery(&stats.HeldPayments, "held", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.PaymentStatusHeld)
	})
	go countQuery(&stats.DisputedPayments, "disputed", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.PaymentStatusDisputed)
	})
	go sumQuery(&stats.TotalRevenue, "revenue", "COALESCE(SUM(amount), 0)", func(q *gorm.DB) *gorm.DB {
		return q.Where("status IN ?", []models.PaymentStatus{models.PaymentStatusCompleted, models.PaymentStatusReleased})
	})
	go sumQuery(&stats.HeldAmount, "held_amount", "COALESCE(SUM(amount), 0)", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.PaymentStatusHeld)
	})
	go sumQuery(&stats.PendingRemainder, "pending_remainder", "COALESCE(SUM(partial_payments.amount_remaining), 0)", func(q *gorm.DB) *gorm.DB {
		return q.Joins("JOIN partial_payments ON partial_payments.payment_id = payments.id").
			Where("partial_payments.amount_remaining > 0")
	})
	wg.Wait()

	if r.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			r.redis.Set(ctx, cacheKey, data, PaymentStatsCacheTTL)
		}
	}

	return stats, nil
}
