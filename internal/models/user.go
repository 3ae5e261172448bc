package models

import (
	"time"
)

// Profile is the app-side view of an identity issued by the external provider.
type Profile struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type UserRole struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"not null;uniqueIndex:idx_user_role"`
	Role   string `gorm:"not null;uniqueIndex:idx_user_role"`
}
