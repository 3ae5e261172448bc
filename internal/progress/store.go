// Package progress records completions and derives the activity counters the
// medal and achievement engines read. Counts always come from the database.
package progress

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counters is a snapshot of one user's activity, read in a single query.
type Counters struct {
	Completions    int `gorm:"column:completions" json:"completions"`
	Interactions   int `gorm:"column:interactions" json:"interactions"`
	PrayerRequests int `gorm:"column:prayer_requests" json:"prayer_requests"`
}

// Get returns the counter matching a requirement type.
func (c Counters) Get(t models.RequirementType) (int, bool) {
	switch t {
	case models.RequirementCompletions:
		return c.Completions, true
	case models.RequirementInteractions:
		return c.Interactions, true
	case models.RequirementPrayerRequests:
		return c.PrayerRequests, true
	default:
		return 0, false
	}
}

type Result struct {
	// Count is the user's total number of completions after the call.
	Count int `json:"count"`
	// Created is false when the completion was already recorded.
	Created bool `json:"created"`
}

// Previous is the count before this call.
func (r Result) Previous() int {
	if r.Created {
		return r.Count - 1
	}
	return r.Count
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// RecordCompletion stores a completion once per (user, item, type). A repeat
// is not an error: it returns the unchanged count with Created=false.
func (s *Store) RecordCompletion(ctx context.Context, userID, itemID string, itemType models.ItemType) (Result, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Result{}, apperr.Validation("item_id", "item id is required")
	}
	if !itemType.Valid() {
		return Result{}, apperr.Validation("item_type", "item type must be devotional or challenge")
	}

	rec := models.CompletionRecord{UserID: userID, ItemID: itemID, ItemType: itemType}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}, {Name: "item_type"}},
		DoNothing: true,
	}).Create(&rec)

	created := res.RowsAffected > 0
	if err := classify(res.Error); err != nil {
		if !errors.Is(err, apperr.ErrDuplicate) {
			return Result{}, apperr.Storage("insert completion", err)
		}
		created = false
	}

	count, err := s.Count(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return Result{Count: count, Created: created}, nil
}

func classify(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrDuplicate
	}
	return err
}

func (s *Store) Count(ctx context.Context, userID string) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CompletionRecord{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, apperr.Storage("count completions", err)
	}
	return int(count), nil
}

// Completed lists the user's completions, newest first.
func (s *Store) Completed(ctx context.Context, userID string) ([]models.CompletionRecord, error) {
	var recs []models.CompletionRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&recs).Error; err != nil {
		return nil, apperr.Storage("list completions", err)
	}
	return recs, nil
}

const countersQuery = `SELECT
	(SELECT COUNT(*) FROM completion_records WHERE user_id = @user) AS completions,
	(SELECT COUNT(*) FROM interactions WHERE user_id = @user) AS interactions,
	(SELECT COUNT(*) FROM prayer_requests WHERE user_id = @user AND deleted_at IS NULL) AS prayer_requests`

// Counters reads all three activity counters in one round trip.
func (s *Store) Counters(ctx context.Context, userID string) (Counters, error) {
	var c Counters
	if err := s.db.WithContext(ctx).Raw(countersQuery, map[string]any{"user": userID}).Scan(&c).Error; err != nil {
		return Counters{}, apperr.Storage("load counters", err)
	}
	return c, nil
}

// ActiveSince returns users with any completion, interaction or prayer
// request created after since.
func (s *Store) ActiveSince(ctx context.Context, since time.Time) ([]string, error) {
	var users []string
	err := s.db.WithContext(ctx).Raw(`SELECT user_id FROM completion_records WHERE created_at > @since
		UNION SELECT user_id FROM interactions WHERE created_at > @since
		UNION SELECT user_id FROM prayer_requests WHERE created_at > @since`,
		map[string]any{"since": since}).Scan(&users).Error
	if err != nil {
		return nil, apperr.Storage("list active users", err)
	}
	return users, nil
}
