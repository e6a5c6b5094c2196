package models

import "time"

type CustomerFeedback struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CustomerName    string    `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerContact string    `gorm:"type:varchar(255)" json:"customer_contact"`
	FeedbackText    string    `gorm:"type:text;not null" json:"feedback_text"`
	Rating          *int      `json:"rating"`
	FeedbackDate    time.Time `gorm:"not null" json:"feedback_date"`
	Resolved        bool      `gorm:"not null;index" json:"resolved"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CustomerFeedback) TableName() string { return "customer_feedback" }
