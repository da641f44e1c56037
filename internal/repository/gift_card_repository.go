package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// GiftCardRepository defines the interface for gift card data operations
type GiftCardRepository interface {
	Create(card *models.GiftCard) error
	GetByCode(code string, storeID string) (*models.GiftCard, error)
	Redeem(card *models.GiftCard, amount float64) error
	Refund(card *models.GiftCard, amount float64) error
}

type giftCardRepository struct {
	db *gorm.DB
}

// NewGiftCardRepository creates a new gift card repository
func NewGiftCardRepository(db *gorm.DB) GiftCardRepository {
	return &giftCardRepository{db: db}
}

// Create inserts a gift card row
func (r *giftCardRepository) Create(card *models.GiftCard) error {
	if err := r.db.Create(card).Error; err != nil {
		return fmt.Errorf("failed to create gift card: %w", err)
	}
	return nil
}

// GetByCode retrieves a gift card by its store-scoped code
func (r *giftCardRepository) GetByCode(code string, storeID string) (*models.GiftCard, error) {
	var card models.GiftCard
	err := r.db.Where("store_id = ? AND code = ?", storeID, code).First(&card).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get gift card: %w", err)
	}
	return &card, nil
}

// Redeem atomically debits the card balance. The WHERE guard on the
// balance prevents over-redemption under concurrent checkouts.
func (r *giftCardRepository) Redeem(card *models.GiftCard, amount float64) error {
	result := r.db.Model(&models.GiftCard{}).
		Where("id = ? AND remaining_balance >= ?", card.ID, amount).
		Update("remaining_balance", gorm.Expr("remaining_balance - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to redeem gift card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("gift card %s has insufficient balance", card.Code)
	}
	card.RemainingBalance -= amount
	return nil
}

// Refund credits a previously redeemed amount back (compensation path)
func (r *giftCardRepository) Refund(card *models.GiftCard, amount float64) error {
	result := r.db.Model(&models.GiftCard{}).
		Where("id = ?", card.ID).
		Update("remaining_balance", gorm.Expr("remaining_balance + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to refund gift card: %w", result.Error)
	}
	card.RemainingBalance += amount
	return nil
}
