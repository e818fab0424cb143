package models

import "time"

// Task priorities. Free-text priorities are rejected by the repository layer.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// DefaultCategory is applied to tasks and notes created without one.
const DefaultCategory = "general"

// Task is a to-do item with optional scheduling fields.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	Priority    string     `gorm:"default:medium" json:"priority"`
	Category    string     `gorm:"default:general" json:"category"`
	Tags        string     `json:"tags,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ReminderAt  *time.Time `json:"reminder_date,omitempty"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ValidPriority reports whether p is one of the three known priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
