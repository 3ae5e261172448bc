// Package community stores the prayer-request feed: posts, reactions and
// reports from other users.
package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/moderation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// Hook runs after a write that changes the author's activity counters.
type Hook func(ctx context.Context, userID string)

type FeedItem struct {
	ID        string                         `json:"id"`
	UserID    string                         `json:"user_id"`
	Content   string                         `json:"content"`
	CreatedAt time.Time                      `json:"created_at"`
	Counts    map[models.InteractionType]int `json:"counts"`
}

type Service struct {
	db      *gorm.DB
	filter  *moderation.Filter
	logger  *zap.Logger
	onEvent Hook
}

// NewService wires the feed store. onEvent may be nil.
func NewService(db *gorm.DB, filter *moderation.Filter, logger *zap.Logger, onEvent Hook) *Service {
	if filter == nil {
		filter = moderation.Default
	}
	return &Service{db: db, filter: filter, logger: logger, onEvent: onEvent}
}

func (s *Service) fire(ctx context.Context, userID string) {
	if s.onEvent != nil {
		s.onEvent(ctx, userID)
	}
}

// Post validates and stores a prayer request.
func (s *Service) Post(ctx context.Context, userID, content string) (models.PrayerRequest, error) {
	if err := s.filter.ValidatePrayerRequest(content); err != nil {
		return models.PrayerRequest{}, err
	}

	req := models.PrayerRequest{ID: uuid.NewString(), UserID: userID, Content: strings.TrimSpace(content)}
	if err := s.db.WithContext(ctx).Create(&req).Error; err != nil {
		return models.PrayerRequest{}, apperr.Storage("create prayer request", err)
	}

	s.logger.Info("prayer request posted", zap.String("user_id", userID), zap.String("prayer_request_id", req.ID))
	s.fire(ctx, userID)
	return req, nil
}

func (s *Service) exists(ctx context.Context, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.PrayerRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Storage("load prayer request", err)
	}
	if count == 0 {
		return fmt.Errorf("prayer request %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Interact records a reaction. Repeating the same reaction is a no-op and
// reports created=false.
func (s *Service) Interact(ctx context.Context, userID, requestID string, typ models.InteractionType) (bool, error) {
	if !typ.Valid() {
		return false, apperr.Validation("type", "interaction must be one of pray, support, peace or strength")
	}
	if err := s.exists(ctx, requestID); err != nil {
		return false, err
	}

	row := models.Interaction{ID: uuid.NewString(), PrayerRequestID: requestID, UserID: userID, Type: typ}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prayer_request_id"}, {Name: "user_id"}, {Name: "type"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, apperr.Storage("create interaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	s.logger.Debug("interaction recorded",
		zap.String("user_id", userID),
		zap.String("prayer_request_id", requestID),
		zap.String("type", string(typ)))
	s.fire(ctx, userID)
	return true, nil
}

// Report flags a prayer request for moderator review.
func (s *Service) Report(ctx context.Context, userID, requestID, reason string) (models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Report{}, apperr.Validation("reason", "tell us why you are reporting this request")
	}
	if err := s.exists(ctx, requestID); err != nil {
		return models.Report{}, err
	}

	rep := models.Report{ID: uuid.NewString(), PrayerRequestID: requestID, UserID: userID, Reason: reason}
	if err := s.db.WithContext(ctx).Create(&rep).Error; err != nil {
		return models.Report{}, apperr.Storage("create report", err)
	}
	s.logger.Warn("prayer request reported", zap.String("prayer_request_id", requestID), zap.String("reported_by", userID))
	return rep, nil
}

type countRow struct {
	PrayerRequestID string
	Type            models.InteractionType
	N               int
}

// Feed lists the newest prayer requests with per-type interaction counts.
func (s *Service) Feed(ctx context.Context, limit int) ([]FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	limit = min(limit, MaxFeedLimit)

	var reqs []models.PrayerRequest
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit).Find(&reqs).Error; err != nil {
		return nil, apperr.Storage("list prayer requests", err)
	}
	if len(reqs) == 0 {
		return []FeedItem{}, nil
	}

	ids := make([]string, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ID
	}
	var counts []countRow
	err := s.db.WithContext(ctx).Model(&models.Interaction{}).
		Select("prayer_request_id, type, COUNT(*) AS n").
		Where("prayer_request_id IN ?", ids).
		Group("prayer_request_id, type").
		Scan(&counts).Error
	if err != nil {
		return nil, apperr.Storage("count interactions", err)
	}

	byReq := make(map[string]map[models.InteractionType]int, len(reqs))
	for _, c := range counts {
		if byReq[c.PrayerRequestID] == nil {
			byReq[c.PrayerRequestID] = map[models.InteractionType]int{}
		}
		byReq[c.PrayerRequestID][c.Type] = c.N
	}

	items := make([]FeedItem, len(reqs))
	for i, r := range reqs {
		m := make(map[models.InteractionType]int, len(models.InteractionTypes))
		for _, t := range models.InteractionTypes {
			m[t] = byReq[r.ID][t]
		}
		items[i] = FeedItem{ID: r.ID, UserID: r.UserID, Content: r.Content, CreatedAt: r.CreatedAt, Counts: m}
	}
	return items, nil
}

// ReportView is an open report joined with the request it targets.
type ReportView struct {
	models.Report
	RequestContent string `json:"request_content"`
	RequestAuthor  string `json:"request_author"`
}

// ListReports returns open reports, oldest first. Reports on requests that
// were already deleted are left out.
func (s *Service) ListReports(ctx context.Context) ([]ReportView, error) {
	var rows []ReportView
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Select("reports.*, prayer_requests.content AS request_content, prayer_requests.user_id AS request_author").
		Joins("JOIN prayer_requests ON prayer_requests.id = reports.prayer_request_id AND prayer_requests.deleted_at IS NULL").
		Order("reports.created_at asc, reports.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("list reports", err)
	}
	return rows, nil
}

// DeleteRequest soft-deletes a prayer request and closes its reports. The
// request leaves the feed and the author's prayer_requests counter.
func (s *Service) DeleteRequest(ctx context.Context, requestID, deletedBy string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", requestID).Delete(&models.PrayerRequest{})
		if res.Error != nil {
			return apperr.Storage("delete prayer request", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("prayer request %q: %w", requestID, apperr.ErrNotFound)
		}
		if err := tx.Where("prayer_request_id = ?", requestID).Delete(&models.Report{}).Error; err != nil {
			return apperr.Storage("close reports", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Warn("prayer request deleted", zap.String("prayer_request_id", requestID), zap.String("deleted_by", deletedBy))
	return nil
}

// DismissReport drops a report and keeps the request.
func (s *Service) DismissReport(ctx context.Context, reportID, dismissedBy string) error {
	res := s.db.WithContext(ctx).Where("id = ?", reportID).Delete(&models.Report{})
	if res.Error != nil {
		return apperr.Storage("dismiss report", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("report %q: %w", reportID, apperr.ErrNotFound)
	}

	s.logger.Info("report dismissed", zap.String("report_id", reportID), zap.String("dismissed_by", dismissedBy))
	return nil
}
