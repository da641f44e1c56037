package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductType enumerates the five sellable product categories
type ProductType string

const (
	ProductTypeDigital  ProductType = "digital"
	ProductTypePhysical ProductType = "physical"
	ProductTypeService  ProductType = "service"
	ProductTypeCourse   ProductType = "course"
	ProductTypeArtist   ProductType = "artist"
)

// DefaultPercentageRate is applied when a product enables percentage
// payment without configuring a rate.
const DefaultPercentageRate = 30.0

// PaymentOptions is the per-product payment configuration stored as JSONB
type PaymentOptions struct {
	PaymentType    PaymentType `json:"payment_type"`
	PercentageRate float64     `json:"percentage_rate,omitempty"`
}

// Product is a sellable item owned by a merchant store.
// TotalEditions > 0 marks a limited-edition artist work; 0 means
// unlimited. StockQuantity only applies to physical products.
type Product struct {
	ID               uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID          string      `json:"storeId" gorm:"type:varchar(255);not null;index:idx_products_store;index:idx_products_store_type"`
	Name             string      `json:"name" gorm:"not null"`
	Description      string      `json:"description,omitempty" gorm:"type:text"`
	ProductType      ProductType `json:"productType" gorm:"type:varchar(20);not null;index:idx_products_store_type"`
	Price            float64     `json:"price" gorm:"type:decimal(12,2);not null"`
	Currency         string      `json:"currency" gorm:"type:varchar(3);not null;default:'XOF'"`
	StockQuantity    int         `json:"stockQuantity" gorm:"default:0"`
	TotalEditions    int         `json:"totalEditions" gorm:"default:0"`
	RequiresShipping bool        `json:"requiresShipping" gorm:"default:false"`
	InsuranceFee     float64     `json:"insuranceFee" gorm:"type:decimal(12,2);default:0"`
	PaymentOptions   JSONB       `json:"paymentOptions,omitempty" gorm:"type:jsonb"`
	IsActive         bool        `json:"isActive" gorm:"default:true"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// GetPaymentOptions decodes the JSONB payment configuration. Products
// without explicit options default to full upfront payment.
func (p *Product) GetPaymentOptions() (PaymentOptions, error) {
	opts := PaymentOptions{PaymentType: PaymentTypeFull}
	if len(p.PaymentOptions) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(p.PaymentOptions, &opts); err != nil {
		return opts, err
	}
	if opts.PaymentType == "" {
		opts.PaymentType = PaymentTypeFull
	}
	if opts.PaymentType == PaymentTypePercentage && opts.PercentageRate <= 0 {
		opts.PercentageRate = DefaultPercentageRate
	}
	return opts, nil
}

// IsLimitedEdition reports whether edition availability must be checked
func (p *Product) IsLimitedEdition() bool {
	return p.ProductType == ProductTypeArtist && p.TotalEditions > 0
}
