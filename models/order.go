package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderConfirmed  OrderStatus = "Confirmed"
	OrderProcessing OrderStatus = "Processing"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing, OrderDelivered, OrderCancelled}

func (s OrderStatus) IsValid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderUUID     string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_uuid"`
	CustomerName  string          `gorm:"type:varchar(255);not null;index" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(50);not null" json:"customer_phone"`
	CustomerEmail *string         `gorm:"type:varchar(255)" json:"customer_email"`
	OrderDate     time.Time       `gorm:"not null;index" json:"order_date"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_cost"`
	RouteID       *uint           `gorm:"index" json:"route_id"`
	Route         *Route          `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	StopoverID    *uint           `gorm:"index" json:"stopover_id"`
	Stopover      *Stopover       `gorm:"foreignKey:StopoverID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderView is the API representation of an order with its lines.
type OrderView struct {
	ID            uint            `json:"id"`
	OrderUUID     string          `json:"order_uuid"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail *string         `json:"customer_email"`
	OrderDate     time.Time       `json:"order_date"`
	TotalCost     string          `json:"total_cost"`
	RouteID       *uint           `json:"route_id"`
	RouteName     *string         `json:"route_name,omitempty"`
	DeliveryDate  *Date           `json:"delivery_date,omitempty"`
	StopoverID    *uint           `json:"stopover_id"`
	StopoverName  *string         `json:"stopover_name,omitempty"`
	Notes         string          `json:"notes"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItemView `json:"items"`
}

// View flattens o for responses. Lines are ordered by cake name.
func (o *Order) View() OrderView {
	v := OrderView{
		ID:            o.ID,
		OrderUUID:     o.OrderUUID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		CustomerEmail: o.CustomerEmail,
		OrderDate:     o.OrderDate,
		TotalCost:     o.TotalCost.StringFixed(2),
		RouteID:       o.RouteID,
		StopoverID:    o.StopoverID,
		Notes:         o.Notes,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         make([]OrderItemView, 0, len(o.Items)),
	}
	if o.Route != nil {
		name, date := o.Route.Name, o.Route.DeliveryDate
		v.RouteName, v.DeliveryDate = &name, &date
	}
	if o.Stopover != nil {
		name := o.Stopover.Name
		v.StopoverName = &name
	}
	for i := range o.Items {
		v.Items = append(v.Items, o.Items[i].View())
	}
	sort.SliceStable(v.Items, func(i, j int) bool {
		return v.Items[i].CakeName < v.Items[j].CakeName
	})
	return v
}
