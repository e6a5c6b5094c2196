package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage  = "percentage"
	DiscountFixedAmount = "fixed_amount"
	DiscountBOGO        = "BOGO"
)

func IsValidDiscountType(s string) bool {
	return s == DiscountPercentage || s == DiscountFixedAmount || s == DiscountBOGO
}

// Offer is promotional metadata shown to customers.
type Offer struct {
	ID                      uint            `gorm:"primaryKey" json:"id"`
	Name                    string          `gorm:"type:varchar(100);not null" json:"name"`
	Description             string          `gorm:"type:text" json:"description"`
	DiscountType            string          `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	StartDate               Date            `gorm:"not null" json:"start_date"`
	EndDate                 Date            `gorm:"not null" json:"end_date"`
	ApplicableToAllProducts bool            `gorm:"not null" json:"applicable_to_all_products"`
	ProductIDs              string          `gorm:"type:varchar(255)" json:"product_ids"`
	IsActive                bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}
