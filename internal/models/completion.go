package models

import (
	"time"
)

type ItemType string

const (
	ItemDevotional ItemType = "devotional"
	ItemChallenge  ItemType = "challenge"
)

func (t ItemType) Valid() bool {
	return t == ItemDevotional || t == ItemChallenge
}

// CompletionRecord is append-only. The composite unique index is what makes
// concurrent duplicate completions safe.
type CompletionRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_completion_user_item,priority:1" json:"user_id"`
	ItemID    string    `gorm:"not null;uniqueIndex:idx_completion_user_item,priority:2" json:"item_id"`
	ItemType  ItemType  `gorm:"not null;uniqueIndex:idx_completion_user_item,priority:3" json:"item_type"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
