package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cake struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL     *string         `gorm:"type:varchar(255)" json:"image_url"`
	BogoEligible bool            `gorm:"not null" json:"bogo_eligible"`
	IsAvailable  bool            `gorm:"not null" json:"is_available"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
