package models

import "time"

type Route struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	DeliveryDate Date      `gorm:"not null;index" json:"delivery_date"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StopoverStatus string

const (
	StopoverPending  StopoverStatus = "Pending"
	StopoverArrived  StopoverStatus = "Arrived"
	StopoverDeparted StopoverStatus = "Departed"
	StopoverSkipped  StopoverStatus = "Skipped"
)

func (s StopoverStatus) IsValid() bool {
	switch s {
	case StopoverPending, StopoverArrived, StopoverDeparted, StopoverSkipped:
		return true
	}
	return false
}

type Stopover struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	RouteID       uint           `gorm:"not null;uniqueIndex:idx_route_sequence" json:"route_id"`
	Route         *Route         `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"route,omitempty"`
	Name          string         `gorm:"type:varchar(100);not null" json:"name"`
	SequenceOrder int            `gorm:"not null;uniqueIndex:idx_route_sequence" json:"sequence_order"`
	Status        StopoverStatus `gorm:"type:varchar(20);not null" json:"status"`
	LastUpdated   time.Time      `json:"last_updated"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
