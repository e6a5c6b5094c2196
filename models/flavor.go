package models

import "time"

type Flavor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CakeFlavor links a cake to one of its flavors.
type CakeFlavor struct {
	CakeID    uint      `gorm:"primaryKey;autoIncrement:false" json:"cake_id"`
	FlavorID  uint      `gorm:"primaryKey;autoIncrement:false" json:"flavor_id"`
	CreatedAt time.Time `json:"created_at"`
}
