package models

import "time"

// Note is a free-form text record. UpdatedAt refreshes on every content
// change.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	Category  string    `gorm:"default:general" json:"category"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
