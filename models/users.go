package models

import "time"

const (
	RoleAdmin       = "admin"
	RoleDriver      = "driver"
	RoleDistributor = "distributor"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDriver, RoleDistributor:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
