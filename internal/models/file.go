package models

import "time"

// File holds upload metadata. The bytes themselves live on disk (or wherever
// the upload layer put them); the store only tracks this record.
type File struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Filename     string    `gorm:"not null" json:"filename"`
	OriginalName string    `gorm:"not null" json:"original_name"`
	Path         string    `gorm:"not null" json:"file_path"`
	Size         int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}
