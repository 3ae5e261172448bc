package models

import (
	"time"
)

type RequirementType string

const (
	RequirementCompletions    RequirementType = "completions"
	RequirementInteractions   RequirementType = "interactions"
	RequirementPrayerRequests RequirementType = "prayer_requests"
	RequirementCustom         RequirementType = "custom"
)

// AchievementDefinition is catalog data. Rows with RequirementType custom or
// RequirementValue 0 are only ever granted by an admin.
type AchievementDefinition struct {
	ID               string          `gorm:"primaryKey" json:"id" yaml:"id"`
	Name             string          `gorm:"not null" json:"name" yaml:"name"`
	Description      string          `json:"description" yaml:"description"`
	Icon             string          `json:"icon" yaml:"icon"`
	Category         string          `gorm:"index" json:"category" yaml:"category"`
	RequirementType  RequirementType `gorm:"not null" json:"requirement_type" yaml:"requirement_type"`
	RequirementValue int             `json:"requirement_value" yaml:"requirement_value"`
	CreatedAt        time.Time       `json:"created_at" yaml:"-"`
}

type UserAchievement struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	UserID        string                `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string                `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   AchievementDefinition `gorm:"foreignKey:AchievementID" json:"achievement"`
	GrantedBy     *string               `json:"granted_by,omitempty"`
	EarnedAt      time.Time             `gorm:"not null" json:"earned_at"`
}
