// Package models contains the domain entities and error types shared by the
// storage, repository, and HTTP layers.
package models

import "time"

// User is an account holder. Every other entity is owned by exactly one User.
type User struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Username             string    `gorm:"uniqueIndex;not null" json:"username"`
	Email                string    `gorm:"uniqueIndex;not null" json:"email"`
	Password             string    `gorm:"not null" json:"-"`
	Avatar               string    `json:"avatar,omitempty"`
	FirstName            string    `json:"first_name,omitempty"`
	LastName             string    `json:"last_name,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	Bio                  string    `json:"bio,omitempty"`
	Timezone             string    `gorm:"default:UTC" json:"timezone"`
	Theme                string    `gorm:"default:light" json:"theme"`
	NotificationsEnabled bool      `gorm:"default:true" json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Profile is the subset of User safe to return to API clients.
type Profile struct {
	ID                   uint   `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Avatar               string `json:"avatar,omitempty"`
	FirstName            string `json:"first_name,omitempty"`
	LastName             string `json:"last_name,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Bio                  string `json:"bio,omitempty"`
	Timezone             string `json:"timezone"`
	Theme                string `json:"theme"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// AsProfile strips credential fields from a User.
func (u *User) AsProfile() Profile {
	return Profile{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		Avatar:               u.Avatar,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Phone:                u.Phone,
		Bio:                  u.Bio,
		Timezone:             u.Timezone,
		Theme:                u.Theme,
		NotificationsEnabled: u.NotificationsEnabled,
	}
}
