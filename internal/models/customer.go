package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a store-scoped buyer identity, unique per (store, email)
type Customer struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID string    `json:"storeId" gorm:"type:varchar(255);not null;uniqueIndex:idx_customers_store_email"`
	Email   string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_customers_store_email"`
	Name    string    `json:"name" gorm:"type:varchar(255)"`
	Phone   string    `json:"phone,omitempty" gorm:"type:varchar(50)"`

	// Notification preferences, default to sending everything
	NotifyShipments bool `json:"notifyShipments" gorm:"default:true"`
	NotifyReturns   bool `json:"notifyReturns" gorm:"default:true"`
	NotifyMarketing bool `json:"notifyMarketing" gorm:"default:true"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate defaults the display name from the email local part
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.Name == "" && c.Email != "" {
		c.Name = strings.Split(c.Email, "@")[0]
	}
	return nil
}
