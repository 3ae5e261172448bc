package models

import (
	"time"

	"gorm.io/gorm"
)

type PrayerRequest struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	UserID       string         `gorm:"not null;index" json:"user_id"`
	Content      string         `gorm:"not null" json:"content"`
	Interactions []Interaction  `gorm:"foreignKey:PrayerRequestID" json:"interactions,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type InteractionType string

const (
	InteractionPray     InteractionType = "pray"
	InteractionSupport  InteractionType = "support"
	InteractionPeace    InteractionType = "peace"
	InteractionStrength InteractionType = "strength"
)

var InteractionTypes = []InteractionType{InteractionPray, InteractionSupport, InteractionPeace, InteractionStrength}

func (t InteractionType) Valid() bool {
	for _, v := range InteractionTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Interaction struct {
	ID              string          `gorm:"primaryKey" json:"id"`
	PrayerRequestID string          `gorm:"not null;uniqueIndex:idx_interaction_unique,priority:1" json:"prayer_request_id"`
	UserID          string          `gorm:"not null;uniqueIndex:idx_interaction_unique,priority:2;index" json:"user_id"`
	Type            InteractionType `gorm:"not null;uniqueIndex:idx_interaction_unique,priority:3" json:"type"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

type Report struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	PrayerRequestID string    `gorm:"not null;index" json:"prayer_request_id"`
	UserID          string    `gorm:"not null" json:"user_id"`
	Reason          string    `gorm:"not null" json:"reason"`
	CreatedAt       time.Time `json:"created_at"`
}
