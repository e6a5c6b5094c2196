package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Distributor struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(100);not null" json:"name"`
	ContactPerson  string          `gorm:"type:varchar(100)" json:"contact_person"`
	PhoneNumber    string          `gorm:"type:varchar(15)" json:"phone_number"`
	Email          string          `gorm:"type:varchar(255)" json:"email"`
	Region         string          `gorm:"type:varchar(100);index" json:"region"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commission_rate"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SaleProduct is one product line recorded on a distributor sale.
type SaleProduct struct {
	CakeID      uint            `json:"cake_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Flavor      string          `json:"flavor,omitempty"`
}

// SaleProducts is stored as a JSON document.
type SaleProducts []SaleProduct

func (SaleProducts) GormDataType() string { return "text" }

func (p SaleProducts) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *SaleProducts) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SaleProducts", value)
	}
	return json.Unmarshal(raw, p)
}

const (
	SalePending  = "pending"
	SalePaid     = "paid"
	SaleRefunded = "refunded"
)

func IsValidSalePaymentStatus(s string) bool {
	return s == SalePending || s == SalePaid || s == SaleRefunded
}

type DistributorSale struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	DistributorID    uint            `gorm:"not null;index" json:"distributor_id"`
	Distributor      *Distributor    `gorm:"foreignKey:DistributorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"distributor,omitempty"`
	SaleDate         Date            `gorm:"not null;index" json:"sale_date"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CommissionEarned decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"commission_earned"`
	ProductDetails   SaleProducts    `json:"product_details"`
	Notes            string          `gorm:"type:text" json:"notes"`
	PaymentStatus    string          `gorm:"type:varchar(20);not null" json:"payment_status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
