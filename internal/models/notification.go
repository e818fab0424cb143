package models

import "time"

// Notification is an in-app message for a single user.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message,omitempty"`
	Type      string    `gorm:"default:info" json:"type"`
	Read      bool      `gorm:"default:false" json:"read"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
