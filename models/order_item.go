package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	CakeID       uint            `gorm:"not null;index" json:"cake_id"`
	Cake         *Cake           `gorm:"foreignKey:CakeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PriceAtOrder decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_order"`
	ItemCost     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"item_cost"`
	CreatedAt    time.Time       `json:"created_at"`
}

type OrderItemView struct {
	ID           uint   `json:"id"`
	CakeID       uint   `json:"cake_id"`
	CakeName     string `json:"cake_name"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
	ItemCost     string `json:"item_cost"`
}

func (it *OrderItem) View() OrderItemView {
	v := OrderItemView{
		ID:           it.ID,
		CakeID:       it.CakeID,
		Quantity:     it.Quantity,
		PriceAtOrder: it.PriceAtOrder.StringFixed(2),
		ItemCost:     it.ItemCost.StringFixed(2),
	}
	if it.Cake != nil {
		v.CakeName = it.Cake.Name
	}
	return v
}
