// Package achievements evaluates rule-based achievements against a user's
// activity counters and records admin-granted ones.
package achievements

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/progress"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed seed.yaml
var seedYAML []byte

var onConflictUserAchievement = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
	DoNothing: true,
}

// ParseSeed decodes an achievement catalog document.
func ParseSeed(data []byte) ([]models.AchievementDefinition, error) {
	var doc struct {
		Achievements []models.AchievementDefinition `yaml:"achievements"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse achievement seed: %w", err)
	}
	for _, d := range doc.Achievements {
		if d.ID == "" || d.Name == "" {
			return nil, fmt.Errorf("achievement seed: id and name are required (%+v)", d)
		}
	}
	return doc.Achievements, nil
}

// Seed inserts the built-in definitions. Existing rows, including ones an
// admin edited, are left alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	defs, err := ParseSeed(seedYAML)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&defs).Error
}

// Satisfied reports whether counters meet def's requirement. Custom and
// zero-valued definitions are never satisfied automatically.
func Satisfied(def models.AchievementDefinition, c progress.Counters) bool {
	if def.RequirementType == models.RequirementCustom || def.RequirementValue <= 0 {
		return false
	}
	v, ok := c.Get(def.RequirementType)
	return ok && v >= def.RequirementValue
}

type Engine struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewEngine(db *gorm.DB, logger *zap.Logger) *Engine {
	return &Engine{db: db, logger: logger}
}

// Evaluate grants every satisfied definition userID does not hold yet and
// returns the ones granted by this call. A failed grant does not stop the
// others; the returned error joins every failure.
func (e *Engine) Evaluate(ctx context.Context, userID string, c progress.Counters) ([]models.AchievementDefinition, error) {
	var defs []models.AchievementDefinition
	err := e.db.WithContext(ctx).
		Where("requirement_type <> ? AND requirement_value > 0", models.RequirementCustom).
		Where("id NOT IN (?)", e.db.Model(&models.UserAchievement{}).Select("achievement_id").Where("user_id = ?", userID)).
		Order("requirement_value asc, id asc").
		Find(&defs).Error
	if err != nil {
		return nil, apperr.Storage("load achievement definitions", err)
	}

	var granted []models.AchievementDefinition
	var errs []error
	for _, def := range defs {
		if !Satisfied(def, c) {
			continue
		}
		ok, err := e.grant(ctx, userID, def.ID, nil)
		if err != nil {
			e.logger.Error("achievement grant failed",
				zap.String("user_id", userID),
				zap.String("achievement_id", def.ID),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if ok {
			e.logger.Info("achievement granted", zap.String("user_id", userID), zap.String("achievement_id", def.ID))
			granted = append(granted, def)
		}
	}
	return granted, errors.Join(errs...)
}

func (e *Engine) grant(ctx context.Context, userID, achievementID string, grantedBy *string) (bool, error) {
	row := models.UserAchievement{UserID: userID, AchievementID: achievementID, GrantedBy: grantedBy, EarnedAt: time.Now()}
	res := e.db.WithContext(ctx).Clauses(onConflictUserAchievement).Omit("Achievement").Create(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, apperr.Storage("grant achievement "+achievementID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Definition loads one definition by id.
func (e *Engine) Definition(ctx context.Context, id string) (models.AchievementDefinition, error) {
	var def models.AchievementDefinition
	err := e.db.WithContext(ctx).Where("id = ?", id).Take(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, fmt.Errorf("achievement %q: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return def, apperr.Storage("load achievement", err)
	}
	return def, nil
}

// GrantManually grants any existing definition regardless of counters. It
// reports false when the user already held it.
func (e *Engine) GrantManually(ctx context.Context, userID, achievementID, grantedBy string) (models.AchievementDefinition, bool, error) {
	def, err := e.Definition(ctx, achievementID)
	if err != nil {
		return def, false, err
	}
	ok, err := e.grant(ctx, userID, def.ID, &grantedBy)
	if err != nil {
		return def, false, err
	}
	if ok {
		e.logger.Info("achievement granted manually",
			zap.String("user_id", userID),
			zap.String("achievement_id", def.ID),
			zap.String("granted_by", grantedBy))
	}
	return def, ok, nil
}

type NewDefinition struct {
	Name        string
	Description string
	Icon        string
	Category    string
}

// CreateDefinition stores an ad-hoc, admin-only definition. Its id is the
// slugged name plus a short random suffix so repeated names never collide.
func (e *Engine) CreateDefinition(ctx context.Context, in NewDefinition) (models.AchievementDefinition, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.AchievementDefinition{}, apperr.Validation("name", "achievement name is required")
	}
	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = "🏆"
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "especial"
	}

	base := slug.Make(name)
	if base == "" {
		base = "conquista"
	}
	def := models.AchievementDefinition{
		ID:               base + "-" + uuid.NewString()[:8],
		Name:             name,
		Description:      strings.TrimSpace(in.Description),
		Icon:             icon,
		Category:         category,
		RequirementType:  models.RequirementCustom,
		RequirementValue: 0,
	}
	if err := e.db.WithContext(ctx).Create(&def).Error; err != nil {
		return def, apperr.Storage("create achievement", err)
	}
	return def, nil
}

// List returns the catalog ordered by requirement value.
func (e *Engine) List(ctx context.Context) ([]models.AchievementDefinition, error) {
	var defs []models.AchievementDefinition
	if err := e.db.WithContext(ctx).Order("requirement_value asc, id asc").Find(&defs).Error; err != nil {
		return nil, apperr.Storage("list achievements", err)
	}
	return defs, nil
}

// ListForUser returns the user's achievements, newest first.
func (e *Engine) ListForUser(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := e.db.WithContext(ctx).Preload("Achievement").Where("user_id = ?", userID).Order("earned_at desc, id desc").Find(&rows).Error
	if err != nil {
		return nil, apperr.Storage("list user achievements", err)
	}
	return rows, nil
}
