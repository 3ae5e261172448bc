package models

import (
	"time"
)

type MedalKind string

const (
	MedalStandard MedalKind = "standard"
	MedalCustom   MedalKind = "custom"
)

// EarnedMedal is either a standard tier (TierID set) or a custom award
// (CustomName/CustomIcon set, TierID nil). Custom rows never collide on the
// (user_id, tier_id) index because NULLs are distinct.
type EarnedMedal struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_medal_user_tier" json:"user_id"`
	Kind       MedalKind `gorm:"not null" json:"kind"`
	TierID     *string   `gorm:"uniqueIndex:idx_medal_user_tier" json:"tier_id,omitempty"`
	CustomName *string   `json:"custom_name,omitempty"`
	CustomIcon *string   `json:"custom_icon,omitempty"`
	AwardedBy  *string   `json:"awarded_by,omitempty"`
	EarnedAt   time.Time `gorm:"not null" json:"earned_at"`
}

// DisplaySelection references a standard tier id or an EarnedMedal id.
type DisplaySelection struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	MedalRef  *string   `json:"medal_ref"`
	UpdatedAt time.Time `json:"updated_at"`
}
