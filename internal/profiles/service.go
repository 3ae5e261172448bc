// Package profiles keeps the app-side profile of externally issued identities.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/moderation"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db     *gorm.DB
	filter *moderation.Filter
	logger *zap.Logger
}

func NewService(db *gorm.DB, filter *moderation.Filter, logger *zap.Logger) *Service {
	if filter == nil {
		filter = moderation.Default
	}
	return &Service{db: db, filter: filter, logger: logger}
}

// UpdateUsername validates and stores a new username, creating the profile on
// first use.
func (s *Service) UpdateUsername(ctx context.Context, userID, username string) (models.Profile, error) {
	if err := s.filter.ValidateUsername(username); err != nil {
		return models.Profile{}, err
	}

	now := time.Now()
	p := models.Profile{UserID: userID, Username: strings.TrimSpace(username), CreatedAt: now, UpdatedAt: now}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return models.Profile{}, apperr.Storage("save username", err)
	}

	s.logger.Info("username updated", zap.String("user_id", userID))
	return s.Get(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, fmt.Errorf("profile %q: %w", userID, apperr.ErrNotFound)
	}
	if err != nil {
		return p, apperr.Storage("load profile", err)
	}
	return p, nil
}
