package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GiftCard is a store-scoped prepaid balance redeemable at checkout
type GiftCard struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID          string     `json:"storeId" gorm:"type:varchar(255);not null;uniqueIndex:idx_gift_cards_store_code"`
	Code             string     `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_gift_cards_store_code"`
	InitialBalance   float64    `json:"initialBalance" gorm:"type:decimal(12,2);not null"`
	RemainingBalance float64    `json:"remainingBalance" gorm:"type:decimal(12,2);not null"`
	Currency         string     `json:"currency" gorm:"type:varchar(3);not null;default:'XOF'"`
	IsActive         bool       `json:"isActive" gorm:"default:true"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Usable reports whether the card can offset a purchase right now
func (g *GiftCard) Usable(now time.Time) bool {
	if !g.IsActive || g.RemainingBalance <= 0 {
		return false
	}
	if g.ExpiresAt != nil && g.ExpiresAt.Before(now) {
		return false
	}
	return true
}
